package game

// Board geometry and core duel numbers.
const (
	BoardSize         = 5
	InitialLP         = 8000
	InitialHandSize   = 5
	DeckSize          = 40
	MaxCopiesPerCard  = 3
	MinMonstersInDeck = 20
	FatigueDamage     = 500
)

// Phase is the turn phase.
type Phase string

const (
	PhaseDraw   Phase = "DRAW"
	PhaseMain   Phase = "MAIN"
	PhaseBattle Phase = "BATTLE"
	PhaseEnd    Phase = "END"
)

// Status is the duel lifecycle status.
type Status string

const (
	StatusLobby    Status = "LOBBY"
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
)

// Position is a board monster's battle position.
type Position string

const (
	PositionAttack  Position = "ATTACK"
	PositionDefense Position = "DEFENSE"
)

// Face is whether a board card is revealed.
type Face string

const (
	FaceUp   Face = "FACE_UP"
	FaceDown Face = "FACE_DOWN"
)

// WindowTrapResponse is the only response window the combat protocol opens.
const WindowTrapResponse = "TRAP_RESPONSE"

// Material sources for fusion.
const (
	SourceHand  = "HAND"
	SourceField = "FIELD"
)

// Trap response decisions.
const (
	DecisionActivate = "ACTIVATE"
	DecisionPass     = "PASS"
)
