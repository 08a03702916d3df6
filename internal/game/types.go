package game

// CardInstance is one physical card copy minted when it enters the duel.
// Ownership never transfers; actions reference cards only by instance id.
type CardInstance struct {
	InstanceID string `json:"instanceId"`
	TemplateID string `json:"templateId"`
	OwnerID    string `json:"ownerId"`
}

// MonsterOnBoard is a monster occupying one of the five monster slots.
type MonsterOnBoard struct {
	InstanceID string   `json:"instanceId"`
	TemplateID string   `json:"templateId"`
	OwnerID    string   `json:"ownerId"`
	Slot       int      `json:"slot"`
	Face       Face     `json:"face"`
	Position   Position `json:"position"`

	AtkModifier int `json:"atkModifier"`
	DefModifier int `json:"defModifier"`

	HasAttackedThisTurn     bool `json:"hasAttackedThisTurn"`
	PositionChangedThisTurn bool `json:"positionChangedThisTurn"`
	LockedPositionUntilTurn int  `json:"lockedPositionUntilTurn,omitempty"`
	CannotAttackThisTurn    bool `json:"cannotAttackThisTurn,omitempty"`
}

// SpellTrapOnBoard is a spell or trap occupying one of the five back-row slots.
type SpellTrapOnBoard struct {
	InstanceID string `json:"instanceId"`
	TemplateID string `json:"templateId"`
	OwnerID    string `json:"ownerId"`
	Slot       int    `json:"slot"`
	Kind       string `json:"kind"` // SPELL or TRAP
	Face       Face   `json:"face"`
	SetThisTurn bool  `json:"setThisTurn"`

	Continuous            bool   `json:"continuous,omitempty"`
	EquipTargetInstanceID string `json:"equipTargetInstanceId,omitempty"`
	EquipAtkBoost         int    `json:"equipAtkBoost,omitempty"`
	EquipDefBoost         int    `json:"equipDefBoost,omitempty"`
}

// PlayerState is one side of the duel.
type PlayerState struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	LP       int    `json:"lp"`

	Deck      []string `json:"deck"`
	Hand      []string `json:"hand"`
	Graveyard []string `json:"graveyard"`

	MonsterZone   [BoardSize]*MonsterOnBoard   `json:"monsterZone"`
	SpellTrapZone [BoardSize]*SpellTrapOnBoard `json:"spellTrapZone"`

	UsedSummonOrFuseThisTurn bool `json:"usedSummonOrFuseThisTurn"`
	CannotAttackUntilTurn    int  `json:"cannotAttackUntilTurn,omitempty"`
}

// TurnState tracks whose turn it is and where in the turn we are.
type TurnState struct {
	PlayerID   string `json:"playerId"`
	Phase      Phase  `json:"phase"`
	TurnNumber int    `json:"turnNumber"`
}

// AttackTarget is either a specific enemy monster slot or a direct attack.
type AttackTarget struct {
	Direct bool `json:"direct,omitempty"`
	Slot   int  `json:"slot"`
}

// DirectTarget is the direct-attack target value.
func DirectTarget() AttackTarget { return AttackTarget{Direct: true} }

// SlotTarget targets the enemy monster in the given slot.
func SlotTarget(slot int) AttackTarget { return AttackTarget{Slot: slot} }

// PendingAttack exists only between an attack declaration and its resolution.
type PendingAttack struct {
	AttackerPlayerID  string       `json:"attackerPlayerId"`
	DefenderPlayerID  string       `json:"defenderPlayerId"`
	AttackerSlot      int          `json:"attackerSlot"`
	Target            AttackTarget `json:"target"`
	DefenderMayRespond bool        `json:"defenderMayRespond"`
	AvailableTrapSlots []int       `json:"availableTrapSlots,omitempty"`
	// Window is WindowTrapResponse while the defender may still answer,
	// empty once the attack resolves.
	Window string `json:"window,omitempty"`
}

// MatchConfig carries per-match rule switches.
type MatchConfig struct {
	// FaceDownSurvivorMode controls what happens to a face-down defender
	// that survives battle. The only supported mode reveals it.
	FaceDownSurvivorMode string `json:"faceDownSurvivorMode"`
}

// GameState is the authoritative aggregate for one duel. It is only ever
// mutated through Engine.Apply, which works on a deep copy.
type GameState struct {
	Version       int                      `json:"version"`
	Status        Status                   `json:"status"`
	Seed          int64                    `json:"seed"`
	FirstPlayerID string                   `json:"firstPlayerId"`
	Config        MatchConfig              `json:"config"`
	Turn          TurnState                `json:"turn"`
	PendingAttack *PendingAttack           `json:"pendingAttack,omitempty"`
	Players       [2]*PlayerState          `json:"players"`
	Instances     map[string]*CardInstance `json:"instances"`
	WinnerID      string                   `json:"winnerId,omitempty"`
}

// Clone returns a deep copy sharing nothing mutable with the receiver.
func (s *GameState) Clone() *GameState {
	next := *s
	if s.PendingAttack != nil {
		pa := *s.PendingAttack
		pa.AvailableTrapSlots = append([]int(nil), s.PendingAttack.AvailableTrapSlots...)
		next.PendingAttack = &pa
	}
	for i, player := range s.Players {
		p := *player
		p.Deck = append([]string(nil), player.Deck...)
		p.Hand = append([]string(nil), player.Hand...)
		p.Graveyard = append([]string(nil), player.Graveyard...)
		for slot, monster := range player.MonsterZone {
			if monster != nil {
				m := *monster
				p.MonsterZone[slot] = &m
			}
		}
		for slot, card := range player.SpellTrapZone {
			if card != nil {
				c := *card
				p.SpellTrapZone[slot] = &c
			}
		}
		next.Players[i] = &p
	}
	next.Instances = make(map[string]*CardInstance, len(s.Instances))
	for id, instance := range s.Instances {
		inst := *instance
		next.Instances[id] = &inst
	}
	return &next
}

// PlayerByID returns the player with the given id, or nil.
func (s *GameState) PlayerByID(playerID string) *PlayerState {
	for _, player := range s.Players {
		if player.ID == playerID {
			return player
		}
	}
	return nil
}

// OpponentOf returns the other player, or nil when playerID is unknown.
func (s *GameState) OpponentOf(playerID string) *PlayerState {
	switch playerID {
	case s.Players[0].ID:
		return s.Players[1]
	case s.Players[1].ID:
		return s.Players[0]
	}
	return nil
}
