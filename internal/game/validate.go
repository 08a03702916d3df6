package game

import "github.com/arcanaduel/arcana-server-go/internal/catalog"

func validSlot(slot int) bool {
	return slot >= 0 && slot < BoardSize
}

// Validate checks an action against the current state without mutating it.
// A nil return means the action is legal.
func (e *Engine) Validate(state *GameState, action Action) *RuleError {
	if err := e.validate(state, action); err != nil {
		err.ActionID = action.ID
		return err
	}
	return nil
}

func (e *Engine) validate(state *GameState, action Action) *RuleError {
	if state.Status != StatusRunning {
		return ruleErr(ErrNotRunning, "game is not running")
	}

	player := state.PlayerByID(action.PlayerID)
	if player == nil {
		return ruleErr(ErrUnknownPlayer, "player %q is not part of this duel", action.PlayerID)
	}
	opponent := state.OpponentOf(action.PlayerID)

	isResponse := action.Type == ActionTrapResponse
	if state.PendingAttack != nil && state.PendingAttack.Window == WindowTrapResponse {
		if !isResponse {
			return ruleErr(ErrResponseRequired, "waiting for the defender's trap response")
		}
		if action.PlayerID != state.PendingAttack.DefenderPlayerID {
			return ruleErr(ErrResponseRequired, "only the defender may respond to the attack")
		}
	} else if isResponse {
		return ruleErr(ErrNoResponsePending, "no trap response is pending")
	}

	// ACTIVATE_SET_CARD is the one non-response action allowed off-turn,
	// because traps fire during the opponent's turn.
	if !isResponse && action.Type != ActionActivateSetCard && state.Turn.PlayerID != action.PlayerID {
		return ruleErr(ErrNotYourTurn, "it is not your turn")
	}

	switch action.Type {
	case ActionSummonMonster, ActionSetMonster:
		if state.Turn.Phase != PhaseMain {
			return ruleErr(ErrWrongPhase, "summoning is only allowed in MAIN phase")
		}
		if player.UsedSummonOrFuseThisTurn {
			return ruleErr(ErrAlreadyUsed, "you already summoned or fused this turn")
		}
		if !validSlot(action.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid board slot %d", action.Slot)
		}
		if player.MonsterZone[action.Slot] != nil {
			return ruleErr(ErrSlotOccupied, "monster slot %d is occupied", action.Slot)
		}
		if !contains(player.Hand, action.HandInstanceID) {
			return ruleErr(ErrNotInHand, "card is not in your hand")
		}
		template := e.templateOfInstance(state, action.HandInstanceID)
		if template == nil || template.Kind != catalog.KindMonster {
			return ruleErr(ErrWrongKind, "only a MONSTER can go to the monster zone")
		}
		return nil

	case ActionSetSpellTrap:
		if state.Turn.Phase != PhaseMain {
			return ruleErr(ErrWrongPhase, "setting is only allowed in MAIN phase")
		}
		if !validSlot(action.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid board slot %d", action.Slot)
		}
		if player.SpellTrapZone[action.Slot] != nil {
			return ruleErr(ErrSlotOccupied, "spell/trap slot %d is occupied", action.Slot)
		}
		if !contains(player.Hand, action.HandInstanceID) {
			return ruleErr(ErrNotInHand, "card is not in your hand")
		}
		template := e.templateOfInstance(state, action.HandInstanceID)
		if template == nil || template.Kind == catalog.KindMonster {
			return ruleErr(ErrWrongKind, "only a SPELL or TRAP can be set in this zone")
		}
		return nil

	case ActionActivateSpellFromHand:
		if state.Turn.Phase != PhaseMain {
			return ruleErr(ErrWrongPhase, "spells activate only in MAIN phase")
		}
		if !contains(player.Hand, action.HandInstanceID) {
			return ruleErr(ErrNotInHand, "card is not in your hand")
		}
		template := e.templateOfInstance(state, action.HandInstanceID)
		if template == nil || template.Kind != catalog.KindSpell {
			return ruleErr(ErrWrongKind, "only a SPELL can be activated from hand")
		}
		if isEquipEffectKey(template.EffectKey) {
			if err := validateEquipTarget(player, action.TargetMonsterSlot); err != nil {
				return err
			}
			if action.TargetSpellTrapSlot != nil {
				slot := *action.TargetSpellTrapSlot
				if !validSlot(slot) {
					return ruleErr(ErrInvalidSlot, "invalid spell/trap slot %d", slot)
				}
				if player.SpellTrapZone[slot] != nil {
					return ruleErr(ErrSlotOccupied, "spell/trap slot %d is occupied", slot)
				}
			} else if firstEmptySpellTrapSlot(player) < 0 {
				return ruleErr(ErrSlotOccupied, "no free spell/trap slot for the equip")
			}
		}
		return nil

	case ActionActivateSetCard:
		if !validSlot(action.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid board slot %d", action.Slot)
		}
		setCard := player.SpellTrapZone[action.Slot]
		if setCard == nil {
			return ruleErr(ErrSlotEmpty, "no set card in slot %d", action.Slot)
		}
		if setCard.Face != FaceDown {
			return ruleErr(ErrWrongKind, "only face-down set cards can be activated")
		}
		template := e.Template(setCard.TemplateID)
		if template == nil || template.Kind == catalog.KindMonster {
			return ruleErr(ErrWrongKind, "only SPELL/TRAP set cards can be activated")
		}
		if template.Kind == catalog.KindSpell {
			if state.Turn.PlayerID != action.PlayerID || state.Turn.Phase != PhaseMain {
				return ruleErr(ErrWrongPhase, "a set SPELL activates only in your MAIN phase")
			}
			if isEquipEffectKey(template.EffectKey) {
				if err := validateEquipTarget(player, action.TargetMonsterSlot); err != nil {
					return err
				}
			}
		} else if state.Turn.PlayerID == action.PlayerID {
			return ruleErr(ErrWrongPhase, "a TRAP activates only on the opponent's turn")
		}
		return nil

	case ActionFuse:
		return e.validateFuse(state, action, player)

	case ActionChangePosition:
		if state.Turn.Phase != PhaseMain {
			return ruleErr(ErrWrongPhase, "position changes only in MAIN phase")
		}
		if !validSlot(action.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid slot %d", action.Slot)
		}
		monster := player.MonsterZone[action.Slot]
		if monster == nil {
			return ruleErr(ErrSlotEmpty, "no monster in slot %d", action.Slot)
		}
		if monster.Face == FaceDown {
			return ruleErr(ErrWrongKind, "face-down monsters flip-summon instead")
		}
		if action.Position != PositionAttack && action.Position != PositionDefense {
			return ruleErr(ErrInvalidTarget, "invalid position %q", action.Position)
		}
		if monster.Position == action.Position {
			return ruleErr(ErrInvalidTarget, "monster is already in that position")
		}
		if monster.PositionChangedThisTurn {
			return ruleErr(ErrAlreadyUsed, "monster already changed position this turn")
		}
		if monster.LockedPositionUntilTurn > 0 && state.Turn.TurnNumber < monster.LockedPositionUntilTurn {
			return ruleErr(ErrPositionLocked, "monster position is locked this turn")
		}
		return nil

	case ActionFlipSummon:
		if state.Turn.Phase != PhaseMain {
			return ruleErr(ErrWrongPhase, "flip summons only in MAIN phase")
		}
		if !validSlot(action.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid slot %d", action.Slot)
		}
		monster := player.MonsterZone[action.Slot]
		if monster == nil {
			return ruleErr(ErrSlotEmpty, "no monster in slot %d", action.Slot)
		}
		if monster.Face != FaceDown || monster.Position != PositionDefense {
			return ruleErr(ErrWrongKind, "only set DEFENSE monsters can be flip summoned")
		}
		if monster.PositionChangedThisTurn {
			return ruleErr(ErrAlreadyUsed, "monster already changed position this turn")
		}
		if monster.LockedPositionUntilTurn > 0 && state.Turn.TurnNumber < monster.LockedPositionUntilTurn {
			return ruleErr(ErrPositionLocked, "monster position is locked this turn")
		}
		return nil

	case ActionAttackDeclare:
		if state.Turn.TurnNumber == 1 {
			return ruleErr(ErrAttackBlocked, "attacking is not allowed on the first turn")
		}
		if state.Turn.Phase != PhaseMain && state.Turn.Phase != PhaseBattle {
			return ruleErr(ErrWrongPhase, "attacks only in MAIN or BATTLE phase")
		}
		if !validSlot(action.AttackerSlot) {
			return ruleErr(ErrInvalidSlot, "invalid attacker slot %d", action.AttackerSlot)
		}
		attacker := player.MonsterZone[action.AttackerSlot]
		if attacker == nil {
			return ruleErr(ErrSlotEmpty, "no attacker in slot %d", action.AttackerSlot)
		}
		if player.CannotAttackUntilTurn > 0 && state.Turn.TurnNumber <= player.CannotAttackUntilTurn {
			return ruleErr(ErrAttackBlocked, "your attacks are blocked by a card effect")
		}
		if attacker.Face != FaceUp {
			return ruleErr(ErrAttackBlocked, "a face-down monster cannot attack")
		}
		if attacker.Position != PositionAttack {
			return ruleErr(ErrAttackBlocked, "only ATTACK position monsters can attack")
		}
		if attacker.HasAttackedThisTurn {
			return ruleErr(ErrAlreadyUsed, "monster already attacked this turn")
		}
		if attacker.CannotAttackThisTurn {
			return ruleErr(ErrAttackBlocked, "monster cannot attack this turn")
		}
		opponentHasMonster := false
		for _, monster := range opponent.MonsterZone {
			if monster != nil {
				opponentHasMonster = true
				break
			}
		}
		if action.Target == nil || action.Target.Direct {
			if opponentHasMonster {
				return ruleErr(ErrInvalidTarget, "direct attacks require an empty opposing board")
			}
			return nil
		}
		if !validSlot(action.Target.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid target slot %d", action.Target.Slot)
		}
		if opponent.MonsterZone[action.Target.Slot] == nil {
			return ruleErr(ErrInvalidTarget, "no monster in target slot %d", action.Target.Slot)
		}
		return nil

	case ActionTrapResponse:
		pending := state.PendingAttack
		if pending == nil || pending.Window != WindowTrapResponse {
			return ruleErr(ErrNoResponsePending, "no trap response is pending")
		}
		if action.Decision == DecisionPass {
			return nil
		}
		if action.Decision != DecisionActivate {
			return ruleErr(ErrInvalidTarget, "decision must be ACTIVATE or PASS")
		}
		if action.TrapSlot == nil || !validSlot(*action.TrapSlot) {
			return ruleErr(ErrInvalidSlot, "trap slot is required")
		}
		card := player.SpellTrapZone[*action.TrapSlot]
		if card == nil {
			return ruleErr(ErrSlotEmpty, "no trap in slot %d", *action.TrapSlot)
		}
		if card.Kind != string(catalog.KindTrap) {
			return ruleErr(ErrTrapNotEligible, "only a TRAP can answer an attack")
		}
		if card.Face != FaceDown {
			return ruleErr(ErrTrapNotEligible, "the trap must be set face-down")
		}
		if card.SetThisTurn {
			return ruleErr(ErrTrapNotEligible, "a trap cannot fire on the turn it was set")
		}
		return nil

	case ActionEndTurn:
		return nil
	}

	return ruleErr(ErrUnknownAction, "unsupported action type %q", action.Type)
}

func (e *Engine) validateFuse(state *GameState, action Action, player *PlayerState) *RuleError {
	if state.Turn.Phase != PhaseMain {
		return ruleErr(ErrWrongPhase, "fusion is only allowed in MAIN phase")
	}
	if player.UsedSummonOrFuseThisTurn {
		return ruleErr(ErrAlreadyUsed, "you already summoned or fused this turn")
	}
	if len(action.Materials) < 2 || len(action.Materials) > 3 {
		return ruleErr(ErrInvalidMaterials, "fusion requires 2 or 3 materials")
	}
	if !validSlot(action.ResultSlot) {
		return ruleErr(ErrInvalidSlot, "invalid result slot %d", action.ResultSlot)
	}

	unique := make(map[string]bool, len(action.Materials))
	for _, material := range action.Materials {
		if unique[material.InstanceID] {
			return ruleErr(ErrInvalidMaterials, "duplicate materials are not allowed")
		}
		unique[material.InstanceID] = true
	}

	if len(action.Order) != len(action.Materials) {
		return ruleErr(ErrInvalidMaterials, "fusion order must list every material once")
	}
	seen := make(map[string]bool, len(action.Order))
	for _, instanceID := range action.Order {
		if seen[instanceID] || !unique[instanceID] {
			return ruleErr(ErrInvalidMaterials, "fusion order does not match the materials")
		}
		seen[instanceID] = true
	}

	var fieldSlots []int
	for _, material := range action.Materials {
		instance := state.Instances[material.InstanceID]
		if instance == nil {
			return ruleErr(ErrInvalidMaterials, "material does not exist")
		}
		if instance.OwnerID != player.ID {
			return ruleErr(ErrInvalidMaterials, "material does not belong to you")
		}
		template := e.Template(instance.TemplateID)
		if template == nil || template.Kind != catalog.KindMonster {
			return ruleErr(ErrInvalidMaterials, "only monsters can be fusion materials")
		}
		if material.Source == SourceHand {
			if !contains(player.Hand, material.InstanceID) {
				return ruleErr(ErrInvalidMaterials, "hand material is missing")
			}
			continue
		}
		if !validSlot(material.Slot) {
			return ruleErr(ErrInvalidSlot, "invalid field material slot %d", material.Slot)
		}
		monster := player.MonsterZone[material.Slot]
		if monster == nil || monster.InstanceID != material.InstanceID {
			return ruleErr(ErrInvalidMaterials, "field material does not match the board slot")
		}
		fieldSlots = append(fieldSlots, material.Slot)
	}

	if len(fieldSlots) == 0 {
		if player.MonsterZone[action.ResultSlot] != nil {
			return ruleErr(ErrSlotOccupied, "result slot must be empty when fusing from hand only")
		}
		return nil
	}
	for _, slot := range fieldSlots {
		if slot == action.ResultSlot {
			return nil
		}
	}
	return ruleErr(ErrInvalidSlot, "result slot must be one of the field material slots")
}

func validateEquipTarget(player *PlayerState, targetMonsterSlot *int) *RuleError {
	if targetMonsterSlot == nil {
		return ruleErr(ErrInvalidTarget, "equip spells need a face-up monster target")
	}
	slot := *targetMonsterSlot
	if !validSlot(slot) {
		return ruleErr(ErrInvalidSlot, "invalid monster slot %d", slot)
	}
	monster := player.MonsterZone[slot]
	if monster == nil || monster.Face != FaceUp {
		return ruleErr(ErrInvalidTarget, "equip spells need a face-up monster target")
	}
	return nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func firstEmptySpellTrapSlot(player *PlayerState) int {
	for slot, card := range player.SpellTrapZone {
		if card == nil {
			return slot
		}
	}
	return -1
}

func isEquipEffectKey(effectKey string) bool {
	return effectKey == "EQUIP_CONTINUOUS" || effectKey == "EQUIP_BUFF_500"
}
