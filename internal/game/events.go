package game

// EventType identifies an engine event.
type EventType string

const (
	EventCardDrawn           EventType = "CARD_DRAWN"
	EventMonsterSummoned     EventType = "MONSTER_SUMMONED"
	EventMonsterFlipSummoned EventType = "MONSTER_FLIP_SUMMONED"
	EventMonsterSet          EventType = "MONSTER_SET"
	EventMonsterRevealed     EventType = "MONSTER_REVEALED"
	EventSpellTrapSet        EventType = "SPELL_TRAP_SET"
	EventSpellActivated      EventType = "SPELL_ACTIVATED"
	EventTrapActivated       EventType = "TRAP_ACTIVATED"
	EventFusionResolved      EventType = "FUSION_RESOLVED"
	EventFusionFailed        EventType = "FUSION_FAILED"
	EventPositionChanged     EventType = "POSITION_CHANGED"
	EventAttackDeclared      EventType = "ATTACK_DECLARED"
	EventAttackWaiting       EventType = "ATTACK_WAITING_RESPONSE"
	EventAttackNegated       EventType = "ATTACK_NEGATED"
	EventBattleResolved      EventType = "BATTLE_RESOLVED"
	EventLPChanged           EventType = "LP_CHANGED"
	EventTurnChanged         EventType = "TURN_CHANGED"
	EventGameFinished        EventType = "GAME_FINISHED"
)

// Event is one entry of the ordered event list an accepted action produces.
// Payload keys are part of the client protocol and mirror the snapshot
// vocabulary (slots, instance ids, LP deltas).
type Event struct {
	Type     EventType      `json:"type"`
	PlayerID string         `json:"playerId,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// NewEvent builds an event. A nil payload stays nil so the JSON stays small.
func NewEvent(eventType EventType, playerID string, payload map[string]any) Event {
	return Event{Type: eventType, PlayerID: playerID, Payload: payload}
}

func lpChangedEvent(playerID, reason string, delta, lp int) Event {
	return NewEvent(EventLPChanged, playerID, map[string]any{
		"reason": reason,
		"delta":  delta,
		"lp":     lp,
	})
}

func effectDestroyEvent(sourcePlayerID, reason, targetPlayerID string, slot int, instanceID string) Event {
	return NewEvent(EventBattleResolved, sourcePlayerID, map[string]any{
		"mode":           "EFFECT_DESTROY",
		"reason":         reason,
		"targetPlayerId": targetPlayerID,
		"slot":           slot,
		"instanceId":     instanceID,
	})
}
