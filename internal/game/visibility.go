package game

// CardView is one card as a specific viewer is allowed to see it. Face-down
// cards the viewer does not own carry no template id.
type CardView struct {
	InstanceID string   `json:"instanceId"`
	TemplateID string   `json:"templateId,omitempty"`
	Slot       int      `json:"slot"`
	Face       Face     `json:"face"`
	Position   Position `json:"position,omitempty"`
	Kind       string   `json:"kind,omitempty"`

	AtkModifier int `json:"atkModifier,omitempty"`
	DefModifier int `json:"defModifier,omitempty"`

	HasAttackedThisTurn bool `json:"hasAttackedThisTurn,omitempty"`
	Continuous          bool `json:"continuous,omitempty"`
}

// PlayerView is one side of the board, redacted for the viewer.
type PlayerView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	LP        int    `json:"lp"`
	DeckCount int    `json:"deckCount"`
	HandCount int    `json:"handCount"`

	// Hand holds instance ids and is only populated for the viewer's own side.
	Hand      []string `json:"hand,omitempty"`
	Graveyard []string `json:"graveyard"`

	MonsterZone   [BoardSize]*CardView `json:"monsterZone"`
	SpellTrapZone [BoardSize]*CardView `json:"spellTrapZone"`

	UsedSummonOrFuseThisTurn bool `json:"usedSummonOrFuseThisTurn"`
	CannotAttackUntilTurn    int  `json:"cannotAttackUntilTurn,omitempty"`
}

// PendingPrompt tells the defender which traps may answer the open attack.
type PendingPrompt struct {
	Window             string `json:"window"`
	AttackerSlot       int    `json:"attackerSlot"`
	Direct             bool   `json:"direct,omitempty"`
	TargetSlot         int    `json:"targetSlot"`
	AvailableTrapSlots []int  `json:"availableTrapSlots"`
}

// Snapshot is the wire form of the duel for one viewer. Version always equals
// the authoritative state version so clients can detect missed updates.
type Snapshot struct {
	Version       int            `json:"version"`
	Status        Status         `json:"status"`
	Turn          TurnState      `json:"turn"`
	FirstPlayerID string         `json:"firstPlayerId"`
	WinnerID      string         `json:"winnerId,omitempty"`
	You           *PlayerView    `json:"you"`
	Opponent      *PlayerView    `json:"opponent"`
	PendingPrompt *PendingPrompt `json:"pendingPrompt,omitempty"`
}

// SnapshotFor redacts the state down to what viewerID may legally know:
// the opponent's hand and deck shrink to counts and their face-down cards
// lose their identity.
func (e *Engine) SnapshotFor(state *GameState, viewerID string) *Snapshot {
	viewer := state.PlayerByID(viewerID)
	opponent := state.OpponentOf(viewerID)
	if viewer == nil || opponent == nil {
		return nil
	}

	snapshot := &Snapshot{
		Version:       state.Version,
		Status:        state.Status,
		Turn:          state.Turn,
		FirstPlayerID: state.FirstPlayerID,
		WinnerID:      state.WinnerID,
		You:           playerView(viewer, true),
		Opponent:      playerView(opponent, false),
	}

	if pending := state.PendingAttack; pending != nil && pending.Window == WindowTrapResponse && pending.DefenderPlayerID == viewerID {
		snapshot.PendingPrompt = &PendingPrompt{
			Window:             pending.Window,
			AttackerSlot:       pending.AttackerSlot,
			Direct:             pending.Target.Direct,
			TargetSlot:         pending.Target.Slot,
			AvailableTrapSlots: append([]int(nil), pending.AvailableTrapSlots...),
		}
	}
	return snapshot
}

func playerView(player *PlayerState, owned bool) *PlayerView {
	view := &PlayerView{
		ID:                       player.ID,
		Username:                 player.Username,
		LP:                       player.LP,
		DeckCount:                len(player.Deck),
		HandCount:                len(player.Hand),
		Graveyard:                append([]string(nil), player.Graveyard...),
		UsedSummonOrFuseThisTurn: player.UsedSummonOrFuseThisTurn,
		CannotAttackUntilTurn:    player.CannotAttackUntilTurn,
	}
	if owned {
		view.Hand = append([]string(nil), player.Hand...)
	}

	for slot, monster := range player.MonsterZone {
		if monster == nil {
			continue
		}
		card := &CardView{
			InstanceID:          monster.InstanceID,
			TemplateID:          monster.TemplateID,
			Slot:                slot,
			Face:                monster.Face,
			Position:            monster.Position,
			AtkModifier:         monster.AtkModifier,
			DefModifier:         monster.DefModifier,
			HasAttackedThisTurn: monster.HasAttackedThisTurn,
		}
		if !owned && monster.Face == FaceDown {
			card.TemplateID = ""
			card.AtkModifier = 0
			card.DefModifier = 0
		}
		view.MonsterZone[slot] = card
	}

	for slot, spellTrap := range player.SpellTrapZone {
		if spellTrap == nil {
			continue
		}
		card := &CardView{
			InstanceID: spellTrap.InstanceID,
			TemplateID: spellTrap.TemplateID,
			Slot:       slot,
			Face:       spellTrap.Face,
			Kind:       spellTrap.Kind,
			Continuous: spellTrap.Continuous,
		}
		if !owned && spellTrap.Face == FaceDown {
			card.TemplateID = ""
			card.Kind = ""
		}
		view.SpellTrapZone[slot] = card
	}
	return view
}
