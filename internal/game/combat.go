package game

// availableTrapSlots lists the defender's face-down traps that were not set
// this turn. Only those may answer the incoming attack.
func (e *Engine) availableTrapSlots(state *GameState, defender *PlayerState) []int {
	var slots []int
	for slot, card := range defender.SpellTrapZone {
		if card == nil || card.Face != FaceDown || card.SetThisTurn {
			continue
		}
		template := e.Template(card.TemplateID)
		if template == nil || string(template.Kind) != card.Kind {
			continue
		}
		if card.Kind == "TRAP" {
			slots = append(slots, slot)
		}
	}
	return slots
}

// declareAttack suspends the duel in a trap-response window. When the
// defender has no eligible trap the caller resolves the window immediately
// with a forced PASS.
func (e *Engine) declareAttack(state *GameState, action Action) []Event {
	attacker := state.PlayerByID(action.PlayerID)
	defender := state.OpponentOf(action.PlayerID)
	monster := attacker.MonsterZone[action.AttackerSlot]

	// An omitted target means a direct attack.
	target := DirectTarget()
	if action.Target != nil {
		target = *action.Target
	}

	trapSlots := e.availableTrapSlots(state, defender)
	pending := &PendingAttack{
		AttackerPlayerID:   action.PlayerID,
		AttackerSlot:       action.AttackerSlot,
		Target:             target,
		DefenderPlayerID:   defender.ID,
		DefenderMayRespond: len(trapSlots) > 0,
		AvailableTrapSlots: trapSlots,
		Window:             WindowTrapResponse,
	}
	state.PendingAttack = pending

	payload := map[string]any{
		"attackerSlot":       action.AttackerSlot,
		"attackerInstanceId": monster.InstanceID,
		"direct":             target.Direct,
	}
	if !target.Direct {
		payload["targetSlot"] = target.Slot
	}
	events := []Event{NewEvent(EventAttackDeclared, action.PlayerID, payload)}
	if pending.DefenderMayRespond {
		events = append(events, NewEvent(EventAttackWaiting, defender.ID, map[string]any{
			"availableTrapSlots": trapSlots,
			"window":             WindowTrapResponse,
		}))
	}
	return events
}

// resolveTrapResponse closes the trap-response window. An ACTIVATE decision
// fires the chosen trap first; unless the trap negated the attack, battle
// then resolves normally.
func (e *Engine) resolveTrapResponse(state *GameState, playerID, decision string, trapSlot *int) []Event {
	pending := state.PendingAttack
	if pending == nil {
		return nil
	}
	state.PendingAttack = nil

	var events []Event
	attackCancelled := false
	if decision == DecisionActivate && trapSlot != nil {
		events, attackCancelled = e.resolveTrapResponseEffect(state, playerID, *trapSlot, pending)
	}

	attacker := state.PlayerByID(pending.AttackerPlayerID)
	attackerMonster := attacker.MonsterZone[pending.AttackerSlot]
	if attackCancelled || attackerMonster == nil {
		if attackerMonster != nil {
			attackerMonster.HasAttackedThisTurn = true
		}
		events = append(events, NewEvent(EventAttackNegated, pending.AttackerPlayerID, map[string]any{
			"attackerSlot": pending.AttackerSlot,
		}))
		return events
	}
	return append(events, e.resolvePendingBattle(state, pending)...)
}

// resolveTrapResponseEffect fires the defender's trap against the pending
// attacker. The second return reports whether the attack is cancelled.
func (e *Engine) resolveTrapResponseEffect(state *GameState, defenderID string, trapSlot int, pending *PendingAttack) ([]Event, bool) {
	defender := state.PlayerByID(defenderID)
	trap := defender.SpellTrapZone[trapSlot]
	if trap == nil {
		return nil, false
	}
	template := e.Template(trap.TemplateID)
	effectKey := ""
	if template != nil {
		effectKey = template.EffectKey
	}

	attacker := state.PlayerByID(pending.AttackerPlayerID)
	attackerMonster := attacker.MonsterZone[pending.AttackerSlot]
	attackerAtk := 0
	if attackerMonster != nil {
		attackerAtk, _ = e.battleStats(attackerMonster)
	}

	moveSpellTrapToGrave(defender, trapSlot)
	events := []Event{NewEvent(EventTrapActivated, defenderID, map[string]any{
		"slot":       trapSlot,
		"templateId": trap.TemplateID,
		"effectKey":  effectKey,
	})}

	destroyAttacker := func() bool {
		if attackerMonster == nil {
			return false
		}
		destroyed := moveMonsterToGrave(attacker, pending.AttackerSlot)
		if destroyed != "" {
			events = append(events, effectDestroyEvent(defenderID, effectKey, attacker.ID, pending.AttackerSlot, destroyed))
		}
		return true
	}

	switch effectKey {
	case "DESTROY_ATTACKER":
		return events, destroyAttacker()
	case "DESTROY_ATTACKER_UNDER_3000":
		if attackerAtk < 3000 {
			return events, destroyAttacker()
		}
	case "DESTROY_ATTACKER_UNDER_500":
		if attackerAtk <= 500 {
			return events, destroyAttacker()
		}
	case "LOCK_ATTACKER":
		if attackerMonster != nil {
			attackerMonster.CannotAttackThisTurn = true
			lockUntil := state.Turn.TurnNumber + 1
			if lockUntil > attackerMonster.LockedPositionUntilTurn {
				attackerMonster.LockedPositionUntilTurn = lockUntil
			}
			return events, true
		}
	case "NEGATE_ATTACK":
		return events, true
	default:
		// Any other trap resolves as a generic effect; the attack continues.
		events = e.applySpellTrapEffect(state, defenderID, trap.TemplateID, "TRAP_RESPONSE", events)
	}
	return events, false
}

// resolvePendingBattle runs damage calculation for the suspended attack.
func (e *Engine) resolvePendingBattle(state *GameState, pending *PendingAttack) []Event {
	attacker := state.PlayerByID(pending.AttackerPlayerID)
	defender := state.PlayerByID(pending.DefenderPlayerID)
	attackerMonster := attacker.MonsterZone[pending.AttackerSlot]
	if attackerMonster == nil {
		return nil
	}
	attackerMonster.HasAttackedThisTurn = true
	attackerAtk, _ := e.battleStats(attackerMonster)

	var events []Event
	var destroyed []map[string]any

	if pending.Target.Direct {
		applyLPDamage(defender, attackerAtk, "DIRECT_ATTACK", &events)
		return append(events, NewEvent(EventBattleResolved, pending.AttackerPlayerID, map[string]any{
			"attackerSlot": pending.AttackerSlot,
			"direct":       true,
			"damage":       attackerAtk,
			"destroyed":    destroyed,
		}))
	}

	targetSlot := pending.Target.Slot
	targetMonster := defender.MonsterZone[targetSlot]
	if targetMonster == nil {
		// Target left the board while the window was open; the attack whiffs.
		return append(events, NewEvent(EventBattleResolved, pending.AttackerPlayerID, map[string]any{
			"attackerSlot": pending.AttackerSlot,
			"targetSlot":   targetSlot,
			"destroyed":    destroyed,
		}))
	}

	if targetMonster.Face == FaceDown {
		targetMonster.Face = FaceUp
		events = append(events, NewEvent(EventMonsterRevealed, defender.ID, map[string]any{
			"slot":       targetSlot,
			"instanceId": targetMonster.InstanceID,
			"templateId": targetMonster.TemplateID,
		}))
	}

	targetAtk, targetDef := e.battleStats(targetMonster)
	bury := func(owner *PlayerState, slot int) {
		monster := owner.MonsterZone[slot]
		if monster == nil {
			return
		}
		instanceID := moveMonsterToGrave(owner, slot)
		destroyed = append(destroyed, map[string]any{
			"playerId":   owner.ID,
			"slot":       slot,
			"instanceId": instanceID,
		})
	}

	if targetMonster.Position == PositionAttack {
		switch {
		case attackerAtk > targetAtk:
			diff := attackerAtk - targetAtk
			bury(defender, targetSlot)
			applyLPDamage(defender, diff, "BATTLE", &events)
		case attackerAtk < targetAtk:
			diff := targetAtk - attackerAtk
			bury(attacker, pending.AttackerSlot)
			applyLPDamage(attacker, diff, "BATTLE", &events)
		default:
			// Mutual destruction, no damage either way.
			bury(defender, targetSlot)
			bury(attacker, pending.AttackerSlot)
		}
	} else {
		switch {
		case attackerAtk > targetDef:
			bury(defender, targetSlot)
		case attackerAtk < targetDef:
			applyLPDamage(attacker, targetDef-attackerAtk, "BATTLE", &events)
		}
	}

	return append(events, NewEvent(EventBattleResolved, pending.AttackerPlayerID, map[string]any{
		"attackerSlot": pending.AttackerSlot,
		"targetSlot":   targetSlot,
		"destroyed":    destroyed,
	}))
}
