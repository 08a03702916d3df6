package game

import (
	"fmt"
	"testing"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
)

// DuelTestHarness provides utilities for setting up and running duel scenarios.
type DuelTestHarness struct {
	t      *testing.T
	Engine *Engine
	State  *GameState
	Events []Event

	nextInstance int
}

const (
	testPlayerA = "alice"
	testPlayerB = "bob"
)

// NewDuelTestHarness starts a fresh duel over the stock catalog with alice
// moving first.
func NewDuelTestHarness(t *testing.T) *DuelTestHarness {
	t.Helper()
	engine := NewEngine(catalog.Default(), catalog.Recipes())
	state := engine.NewDuel([2]DuelPlayer{
		{ID: testPlayerA, Username: "Alice"},
		{ID: testPlayerB, Username: "Bob"},
	}, 42)
	return &DuelTestHarness{t: t, Engine: engine, State: state}
}

// MustApply applies the action and fails the test on any rule error.
func (h *DuelTestHarness) MustApply(action Action) []Event {
	h.t.Helper()
	next, events, err := h.Engine.Apply(h.State, action)
	if err != nil {
		h.t.Fatalf("apply %s: %v", action.Type, err)
	}
	h.State = next
	h.Events = events
	return events
}

// ApplyExpectError applies the action and fails unless it is rejected with
// the given rule error code.
func (h *DuelTestHarness) ApplyExpectError(action Action, code string) *RuleError {
	h.t.Helper()
	before := h.State.Version
	_, _, err := h.Engine.Apply(h.State, action)
	if err == nil {
		h.t.Fatalf("apply %s: expected rule error %s, got none", action.Type, code)
	}
	ruleError, ok := err.(*RuleError)
	if !ok {
		h.t.Fatalf("apply %s: expected *RuleError, got %T", action.Type, err)
	}
	if ruleError.Code != code {
		h.t.Fatalf("apply %s: expected code %s, got %s (%s)", action.Type, code, ruleError.Code, ruleError.Message)
	}
	if h.State.Version != before {
		h.t.Fatalf("rejected action must not advance the version")
	}
	return ruleError
}

func (h *DuelTestHarness) mintInstance(playerID, templateID string) string {
	h.nextInstance++
	instanceID := fmt.Sprintf("test-%s-%d", playerID, h.nextInstance)
	h.State.Instances[instanceID] = &CardInstance{
		InstanceID: instanceID,
		TemplateID: templateID,
		OwnerID:    playerID,
	}
	return instanceID
}

// GiveHandCard mints a fresh instance of the template into the player's hand.
func (h *DuelTestHarness) GiveHandCard(playerID, templateID string) string {
	h.t.Helper()
	if !h.Engine.Catalog().Has(templateID) {
		h.t.Fatalf("unknown template %q", templateID)
	}
	instanceID := h.mintInstance(playerID, templateID)
	player := h.State.PlayerByID(playerID)
	player.Hand = append(player.Hand, instanceID)
	return instanceID
}

// PlaceMonster puts a monster straight onto the board, bypassing summon rules.
func (h *DuelTestHarness) PlaceMonster(playerID string, slot int, templateID string, position Position, face Face) *MonsterOnBoard {
	h.t.Helper()
	instanceID := h.mintInstance(playerID, templateID)
	monster := &MonsterOnBoard{
		InstanceID: instanceID,
		TemplateID: templateID,
		OwnerID:    playerID,
		Slot:       slot,
		Face:       face,
		Position:   position,
	}
	h.State.PlayerByID(playerID).MonsterZone[slot] = monster
	return monster
}

// PlaceSpellTrap puts a spell or trap straight into a back-row slot.
func (h *DuelTestHarness) PlaceSpellTrap(playerID string, slot int, templateID string, face Face) *SpellTrapOnBoard {
	h.t.Helper()
	template := h.Engine.Template(templateID)
	if template == nil {
		h.t.Fatalf("unknown template %q", templateID)
	}
	instanceID := h.mintInstance(playerID, templateID)
	card := &SpellTrapOnBoard{
		InstanceID: instanceID,
		TemplateID: templateID,
		OwnerID:    playerID,
		Slot:       slot,
		Kind:       string(template.Kind),
		Face:       face,
	}
	h.State.PlayerByID(playerID).SpellTrapZone[slot] = card
	return card
}

// SetTurn forces whose turn it is and the turn counter. Phase resets to MAIN.
func (h *DuelTestHarness) SetTurn(playerID string, turnNumber int) {
	h.State.Turn = TurnState{PlayerID: playerID, Phase: PhaseMain, TurnNumber: turnNumber}
}

// AssertLP fails unless the player's life points match.
func (h *DuelTestHarness) AssertLP(playerID string, want int) {
	h.t.Helper()
	player := h.State.PlayerByID(playerID)
	if player.LP != want {
		h.t.Fatalf("player %s LP = %d, want %d", playerID, player.LP, want)
	}
}

// FindEvent returns the first event of the given type from the last apply.
func (h *DuelTestHarness) FindEvent(eventType EventType) *Event {
	for i := range h.Events {
		if h.Events[i].Type == eventType {
			return &h.Events[i]
		}
	}
	return nil
}

// RequireEvent fails unless the last apply emitted the event type.
func (h *DuelTestHarness) RequireEvent(eventType EventType) *Event {
	h.t.Helper()
	event := h.FindEvent(eventType)
	if event == nil {
		h.t.Fatalf("expected event %s, got %v", eventType, eventTypes(h.Events))
	}
	return event
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, event := range events {
		types[i] = event.Type
	}
	return types
}
