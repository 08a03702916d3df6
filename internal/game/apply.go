package game

import "github.com/arcanaduel/arcana-server-go/internal/catalog"

// Apply validates the action and, when legal, returns the next state and the
// ordered event list. The input state is never mutated; rejected actions
// return it untouched alongside a *RuleError.
func (e *Engine) Apply(state *GameState, action Action) (*GameState, []Event, error) {
	if err := e.Validate(state, action); err != nil {
		return state, nil, err
	}

	next := state.Clone()
	var events []Event

	switch action.Type {
	case ActionSummonMonster:
		events = e.applySummonMonster(next, action)
	case ActionSetMonster:
		events = e.applySetMonster(next, action)
	case ActionSetSpellTrap:
		events = e.applySetSpellTrap(next, action)
	case ActionActivateSpellFromHand:
		events = e.applyActivateSpellFromHand(next, action)
	case ActionActivateSetCard:
		events = e.applyActivateSetCard(next, action)
	case ActionFuse:
		events = e.applyFusion(next, action)
	case ActionChangePosition:
		events = e.applyChangePosition(next, action)
	case ActionFlipSummon:
		events = e.applyFlipSummon(next, action)
	case ActionAttackDeclare:
		if next.Turn.Phase == PhaseMain {
			next.Turn.Phase = PhaseBattle
		}
		events = e.declareAttack(next, action)
		// No eligible trap means the declaration resolves immediately as a
		// forced PASS; otherwise the room worker waits for TRAP_RESPONSE.
		if pending := next.PendingAttack; pending != nil && !pending.DefenderMayRespond {
			events = append(events, e.resolveTrapResponse(next, pending.DefenderPlayerID, DecisionPass, nil)...)
		}
	case ActionTrapResponse:
		events = e.resolveTrapResponse(next, action.PlayerID, action.Decision, action.TrapSlot)
	case ActionEndTurn:
		next.Turn.Phase = PhaseEnd
		events = e.advanceTurn(next)
	}

	setWinnerIfAny(next, &events)
	next.Version++
	return next, events, nil
}

func (e *Engine) applySummonMonster(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)
	instance := state.Instances[action.HandInstanceID]

	removeFromHand(player, action.HandInstanceID)
	player.MonsterZone[action.Slot] = newBoardMonster(instance, action.Slot, PositionAttack, FaceUp)
	player.UsedSummonOrFuseThisTurn = true

	return []Event{NewEvent(EventMonsterSummoned, action.PlayerID, map[string]any{
		"instanceId": action.HandInstanceID,
		"slot":       action.Slot,
		"position":   PositionAttack,
	})}
}

func (e *Engine) applySetMonster(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)
	instance := state.Instances[action.HandInstanceID]

	removeFromHand(player, action.HandInstanceID)
	monster := newBoardMonster(instance, action.Slot, PositionDefense, FaceDown)
	monster.PositionChangedThisTurn = true
	player.MonsterZone[action.Slot] = monster
	player.UsedSummonOrFuseThisTurn = true

	return []Event{NewEvent(EventMonsterSet, action.PlayerID, map[string]any{
		"instanceId": action.HandInstanceID,
		"slot":       action.Slot,
		"position":   PositionDefense,
		"face":       FaceDown,
	})}
}

func (e *Engine) applySetSpellTrap(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)
	instance := state.Instances[action.HandInstanceID]
	template := e.Template(instance.TemplateID)

	removeFromHand(player, action.HandInstanceID)
	player.SpellTrapZone[action.Slot] = &SpellTrapOnBoard{
		InstanceID:  instance.InstanceID,
		TemplateID:  instance.TemplateID,
		OwnerID:     action.PlayerID,
		Slot:        action.Slot,
		Kind:        string(template.Kind),
		Face:        FaceDown,
		SetThisTurn: true,
	}

	return []Event{NewEvent(EventSpellTrapSet, action.PlayerID, map[string]any{
		"instanceId": action.HandInstanceID,
		"slot":       action.Slot,
		"kind":       template.Kind,
	})}
}

func (e *Engine) applyChangePosition(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)
	monster := player.MonsterZone[action.Slot]
	monster.Position = action.Position
	monster.PositionChangedThisTurn = true

	return []Event{NewEvent(EventPositionChanged, action.PlayerID, map[string]any{
		"slot":     action.Slot,
		"position": action.Position,
	})}
}

func (e *Engine) applyFlipSummon(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)
	monster := player.MonsterZone[action.Slot]
	monster.Face = FaceUp
	monster.Position = PositionAttack
	monster.PositionChangedThisTurn = true

	return []Event{NewEvent(EventMonsterFlipSummoned, action.PlayerID, map[string]any{
		"slot":       action.Slot,
		"instanceId": monster.InstanceID,
		"templateId": monster.TemplateID,
	})}
}

func (e *Engine) advanceTurn(state *GameState) []Event {
	nextPlayer := state.OpponentOf(state.Turn.PlayerID)
	state.PendingAttack = nil

	state.Turn.PlayerID = nextPlayer.ID
	state.Turn.TurnNumber++
	state.Turn.Phase = PhaseMain

	resetTurnFlags(nextPlayer, state.Turn.TurnNumber)

	events := e.drawCard(state, nextPlayer.ID)
	events = append(events, NewEvent(EventTurnChanged, nextPlayer.ID, map[string]any{
		"playerId":   nextPlayer.ID,
		"turnNumber": state.Turn.TurnNumber,
	}))
	setWinnerIfAny(state, &events)
	return events
}

func resetTurnFlags(player *PlayerState, turnNumber int) {
	player.UsedSummonOrFuseThisTurn = false
	for _, monster := range player.MonsterZone {
		if monster == nil {
			continue
		}
		monster.HasAttackedThisTurn = false
		monster.PositionChangedThisTurn = false
		monster.CannotAttackThisTurn = false
		if monster.LockedPositionUntilTurn > 0 && turnNumber >= monster.LockedPositionUntilTurn {
			monster.LockedPositionUntilTurn = 0
		}
	}
	for _, card := range player.SpellTrapZone {
		if card != nil {
			card.SetThisTurn = false
		}
	}
}

func newBoardMonster(instance *CardInstance, slot int, position Position, face Face) *MonsterOnBoard {
	return &MonsterOnBoard{
		InstanceID: instance.InstanceID,
		TemplateID: instance.TemplateID,
		OwnerID:    instance.OwnerID,
		Slot:       slot,
		Face:       face,
		Position:   position,
	}
}

func removeFromHand(player *PlayerState, instanceID string) {
	for i, id := range player.Hand {
		if id == instanceID {
			player.Hand = append(player.Hand[:i], player.Hand[i+1:]...)
			return
		}
	}
}

// battleStats folds equip/effect modifiers into the template's base values.
func (e *Engine) battleStats(monster *MonsterOnBoard) (atk, def int) {
	template := e.Template(monster.TemplateID)
	if template == nil || template.Kind != catalog.KindMonster {
		return 0, 0
	}
	return template.Atk + monster.AtkModifier, template.Def + monster.DefModifier
}

func (e *Engine) highestAtkSlot(player *PlayerState, keep func(*MonsterOnBoard) bool) int {
	bestSlot := -1
	bestAtk := 0
	for slot, monster := range player.MonsterZone {
		if monster == nil {
			continue
		}
		if keep != nil && !keep(monster) {
			continue
		}
		atk, _ := e.battleStats(monster)
		if bestSlot == -1 || atk > bestAtk {
			bestAtk = atk
			bestSlot = slot
		}
	}
	return bestSlot
}

// moveMonsterToGrave vacates the slot, buries the monster and destroys any
// equips attached to it (their boosts are unwound first).
func moveMonsterToGrave(player *PlayerState, slot int) string {
	monster := player.MonsterZone[slot]
	if monster == nil {
		return ""
	}
	player.MonsterZone[slot] = nil
	player.Graveyard = append(player.Graveyard, monster.InstanceID)
	destroyAttachedEquips(player, monster.InstanceID)
	return monster.InstanceID
}

func moveSpellTrapToGrave(player *PlayerState, slot int) string {
	card := player.SpellTrapZone[slot]
	if card == nil {
		return ""
	}
	removeEquipBuff(player, card)
	player.SpellTrapZone[slot] = nil
	player.Graveyard = append(player.Graveyard, card.InstanceID)
	return card.InstanceID
}

func removeEquipBuff(player *PlayerState, card *SpellTrapOnBoard) {
	if !card.Continuous || card.EquipTargetInstanceID == "" {
		return
	}
	for _, monster := range player.MonsterZone {
		if monster != nil && monster.InstanceID == card.EquipTargetInstanceID {
			monster.AtkModifier -= card.EquipAtkBoost
			monster.DefModifier -= card.EquipDefBoost
			return
		}
	}
}

func destroyAttachedEquips(player *PlayerState, monsterInstanceID string) {
	for slot, card := range player.SpellTrapZone {
		if card == nil || !card.Continuous || card.EquipTargetInstanceID != monsterInstanceID {
			continue
		}
		moveSpellTrapToGrave(player, slot)
	}
}

func applyLPDamage(player *PlayerState, amount int, reason string, events *[]Event) {
	if amount <= 0 {
		return
	}
	player.LP -= amount
	if player.LP < 0 {
		player.LP = 0
	}
	*events = append(*events, lpChangedEvent(player.ID, reason, -amount, player.LP))
}
