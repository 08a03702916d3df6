package game

import "fmt"

// ActionType enumerates the player actions the engine accepts.
type ActionType string

const (
	ActionSummonMonster         ActionType = "SUMMON_MONSTER"
	ActionSetMonster            ActionType = "SET_MONSTER"
	ActionSetSpellTrap          ActionType = "SET_SPELL_TRAP"
	ActionActivateSpellFromHand ActionType = "ACTIVATE_SPELL_FROM_HAND"
	ActionActivateSetCard       ActionType = "ACTIVATE_SET_CARD"
	ActionFuse                  ActionType = "FUSE"
	ActionChangePosition        ActionType = "CHANGE_POSITION"
	ActionFlipSummon            ActionType = "FLIP_SUMMON"
	ActionAttackDeclare         ActionType = "ATTACK_DECLARE"
	ActionTrapResponse          ActionType = "TRAP_RESPONSE"
	ActionEndTurn               ActionType = "END_TURN"
)

// FuseMaterial references one fusion material in hand or on the field.
type FuseMaterial struct {
	Source     string `json:"source"` // HAND or FIELD
	InstanceID string `json:"instanceId"`
	Slot       int    `json:"slot,omitempty"`
}

// Action is the flattened wire form of every player action. Which fields are
// meaningful depends on Type; the validator rejects anything malformed.
type Action struct {
	ID       string     `json:"actionId"`
	Type     ActionType `json:"type"`
	PlayerID string     `json:"-"`

	// Hand plays.
	HandInstanceID string `json:"handInstanceId,omitempty"`
	Slot           int    `json:"slot"`

	// Optional effect targets.
	TargetMonsterSlot   *int `json:"targetMonsterSlot,omitempty"`
	TargetSpellTrapSlot *int `json:"targetSpellTrapSlot,omitempty"`

	// Position changes.
	Position Position `json:"position,omitempty"`

	// Fusion.
	Materials  []FuseMaterial `json:"materials,omitempty"`
	Order      []string       `json:"order,omitempty"`
	ResultSlot int            `json:"resultSlot"`

	// Combat.
	AttackerSlot int           `json:"attackerSlot"`
	Target       *AttackTarget `json:"target,omitempty"`

	// Trap response.
	Decision string `json:"decision,omitempty"`
	TrapSlot *int   `json:"trapSlot,omitempty"`
}

// Rule error codes.
const (
	ErrNotRunning        = "NOT_RUNNING"
	ErrResponseRequired  = "RESPONSE_REQUIRED"
	ErrNoResponsePending = "NO_RESPONSE_PENDING"
	ErrNotYourTurn       = "NOT_YOUR_TURN"
	ErrWrongPhase        = "WRONG_PHASE"
	ErrInvalidSlot       = "INVALID_SLOT"
	ErrSlotOccupied      = "SLOT_OCCUPIED"
	ErrSlotEmpty         = "SLOT_EMPTY"
	ErrNotInHand         = "NOT_IN_HAND"
	ErrWrongKind         = "WRONG_KIND"
	ErrAlreadyUsed       = "ALREADY_USED"
	ErrInvalidTarget     = "INVALID_TARGET"
	ErrInvalidMaterials  = "INVALID_MATERIALS"
	ErrPositionLocked    = "POSITION_LOCKED"
	ErrAttackBlocked     = "ATTACK_BLOCKED"
	ErrTrapNotEligible   = "TRAP_NOT_ELIGIBLE"
	ErrUnknownAction     = "UNKNOWN_ACTION"
	ErrUnknownPlayer     = "UNKNOWN_PLAYER"
)

// RuleError is a recoverable rejection of a structurally valid action. It
// never mutates state and never advances the version counter.
type RuleError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ActionID string `json:"actionId,omitempty"`
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func ruleErr(code, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}
