package game

import (
	"fmt"
	"sort"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
)

// Engine evaluates actions against duel state. It holds only read-only
// catalog data and is safe to share across every room in the process.
type Engine struct {
	catalog *catalog.Index
	recipes []catalog.FusionRecipe
}

// NewEngine builds an engine over a template index and a recipe book. The
// recipe book is copied and pre-sorted by descending priority.
func NewEngine(index *catalog.Index, recipes []catalog.FusionRecipe) *Engine {
	sorted := append([]catalog.FusionRecipe(nil), recipes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &Engine{catalog: index, recipes: sorted}
}

// Catalog exposes the template index for collaborators (bot, publisher).
func (e *Engine) Catalog() *catalog.Index {
	return e.catalog
}

// Template resolves a template id, or nil when unknown.
func (e *Engine) Template(id string) *catalog.CardTemplate {
	return e.catalog.Template(id)
}

func (e *Engine) templateOfInstance(state *GameState, instanceID string) *catalog.CardTemplate {
	instance := state.Instances[instanceID]
	if instance == nil {
		return nil
	}
	return e.catalog.Template(instance.TemplateID)
}

// DuelPlayer describes one participant at duel start.
type DuelPlayer struct {
	ID       string
	Username string
	// DeckTemplateIDs is the 40-card list to shuffle in. Empty falls back to
	// the stock base deck. Unknown ids are dropped; short lists are cycled.
	DeckTemplateIDs []string
}

// NewDuel mints instances, shuffles both decks from the seed, deals opening
// hands and returns a running state at version 1, MAIN phase of turn 1.
func (e *Engine) NewDuel(players [2]DuelPlayer, seed int64) *GameState {
	state := &GameState{
		Version:       1,
		Status:        StatusRunning,
		Seed:          seed,
		FirstPlayerID: players[0].ID,
		Config:        MatchConfig{FaceDownSurvivorMode: "REVEALED"},
		Turn: TurnState{
			PlayerID:   players[0].ID,
			Phase:      PhaseMain,
			TurnNumber: 1,
		},
		Instances: make(map[string]*CardInstance),
	}

	for i, player := range players {
		deckSeed := deterministicHash(fmt.Sprintf("%d-%s-%d", seed, player.ID, i))
		state.Players[i] = &PlayerState{
			ID:       player.ID,
			Username: player.Username,
			LP:       InitialLP,
			Deck:     e.buildPlayerDeck(state, player.ID, player.DeckTemplateIDs, deckSeed),
			Hand:     []string{},
			Graveyard: []string{},
		}
	}

	for _, player := range state.Players {
		for i := 0; i < InitialHandSize; i++ {
			e.drawCard(state, player.ID)
		}
	}
	return state
}

func (e *Engine) buildDeckTemplateIDs(custom []string) []string {
	source := make([]string, 0, len(custom))
	for _, id := range custom {
		if e.catalog.Has(id) {
			source = append(source, id)
		}
	}
	if len(source) == 0 {
		source = catalog.BaseDeckTemplateIDs
	}
	ids := make([]string, 0, DeckSize)
	for len(ids) < DeckSize {
		for _, id := range source {
			if len(ids) >= DeckSize {
				break
			}
			ids = append(ids, id)
		}
	}
	return ids
}

func (e *Engine) buildPlayerDeck(state *GameState, playerID string, custom []string, seed int64) []string {
	templateIDs := e.buildDeckTemplateIDs(custom)
	raw := make([]string, 0, len(templateIDs))
	for i, templateID := range templateIDs {
		instanceID := fmt.Sprintf("%s-%d", playerID, i+1)
		state.Instances[instanceID] = &CardInstance{
			InstanceID: instanceID,
			TemplateID: templateID,
			OwnerID:    playerID,
		}
		raw = append(raw, instanceID)
	}
	return shuffleWithSeed(raw, seed)
}

// drawCard moves the top deck card to hand, or deals fatigue damage when the
// deck is empty. Mutates state directly; callers operate on a clone.
func (e *Engine) drawCard(state *GameState, playerID string) []Event {
	player := state.PlayerByID(playerID)
	if len(player.Deck) == 0 {
		player.LP -= FatigueDamage
		if player.LP < 0 {
			player.LP = 0
		}
		return []Event{lpChangedEvent(playerID, "FATIGUE", -FatigueDamage, player.LP)}
	}
	next := player.Deck[0]
	player.Deck = player.Deck[1:]
	player.Hand = append(player.Hand, next)
	return []Event{NewEvent(EventCardDrawn, playerID, map[string]any{"instanceId": next})}
}

func checkWinner(state *GameState) string {
	var loser *PlayerState
	for _, player := range state.Players {
		if player.LP <= 0 {
			loser = player
			break
		}
	}
	if loser == nil {
		return ""
	}
	return state.OpponentOf(loser.ID).ID
}

func setWinnerIfAny(state *GameState, events *[]Event) {
	if state.Status == StatusFinished {
		return
	}
	winnerID := checkWinner(state)
	if winnerID == "" {
		return
	}
	state.Status = StatusFinished
	state.WinnerID = winnerID
	*events = append(*events, NewEvent(EventGameFinished, "", map[string]any{"winnerId": winnerID}))
}
