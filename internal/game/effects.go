package game

import "github.com/arcanaduel/arcana-server-go/internal/catalog"

func (e *Engine) applyActivateSpellFromHand(state *GameState, action Action) []Event {
	var events []Event
	player := state.PlayerByID(action.PlayerID)
	instance := state.Instances[action.HandInstanceID]
	template := e.Template(instance.TemplateID)

	if isEquipEffectKey(template.EffectKey) {
		return e.activateEquipFromHand(state, action, nil)
	}

	removeFromHand(player, action.HandInstanceID)
	player.Graveyard = append(player.Graveyard, action.HandInstanceID)
	events = e.applySpellTrapEffect(state, action.PlayerID, instance.TemplateID, "HAND", events)
	return events
}

func (e *Engine) applyActivateSetCard(state *GameState, action Action) []Event {
	var events []Event
	player := state.PlayerByID(action.PlayerID)
	setCard := player.SpellTrapZone[action.Slot]
	template := e.Template(setCard.TemplateID)

	if template.Kind == catalog.KindSpell && isEquipEffectKey(template.EffectKey) {
		return e.activateEquipFromSet(state, action)
	}

	moveSpellTrapToGrave(player, action.Slot)
	events = e.applySpellTrapEffect(state, action.PlayerID, setCard.TemplateID, "SET", events)
	return events
}

// equipTarget picks the requested face-up monster, falling back to the
// owner's strongest face-up monster.
func (e *Engine) equipTarget(player *PlayerState, requested *int) *MonsterOnBoard {
	if requested != nil && validSlot(*requested) {
		if monster := player.MonsterZone[*requested]; monster != nil && monster.Face == FaceUp {
			return monster
		}
	}
	slot := e.highestAtkSlot(player, func(m *MonsterOnBoard) bool { return m.Face == FaceUp })
	if slot < 0 {
		return nil
	}
	return player.MonsterZone[slot]
}

func (e *Engine) equipBuffValue(template *catalog.CardTemplate) int {
	if template.EquipBuff > 0 {
		return template.EquipBuff
	}
	return 300
}

func (e *Engine) activateEquipFromHand(state *GameState, action Action, events []Event) []Event {
	player := state.PlayerByID(action.PlayerID)
	instance := state.Instances[action.HandInstanceID]
	template := e.Template(instance.TemplateID)

	target := e.equipTarget(player, action.TargetMonsterSlot)
	if target == nil {
		return events
	}
	freeSlot := -1
	if action.TargetSpellTrapSlot != nil && validSlot(*action.TargetSpellTrapSlot) && player.SpellTrapZone[*action.TargetSpellTrapSlot] == nil {
		freeSlot = *action.TargetSpellTrapSlot
	} else {
		freeSlot = firstEmptySpellTrapSlot(player)
	}
	if freeSlot < 0 {
		return events
	}

	amount := e.equipBuffValue(template)
	removeFromHand(player, action.HandInstanceID)
	player.SpellTrapZone[freeSlot] = &SpellTrapOnBoard{
		InstanceID:            instance.InstanceID,
		TemplateID:            instance.TemplateID,
		OwnerID:               action.PlayerID,
		Slot:                  freeSlot,
		Kind:                  string(catalog.KindSpell),
		Face:                  FaceUp,
		Continuous:            true,
		EquipTargetInstanceID: target.InstanceID,
		EquipAtkBoost:         amount,
		EquipDefBoost:         amount,
	}
	target.AtkModifier += amount
	target.DefModifier += amount

	return append(events, NewEvent(EventSpellActivated, action.PlayerID, map[string]any{
		"templateId":        instance.TemplateID,
		"effectKey":         template.EffectKey,
		"source":            "HAND",
		"slot":              freeSlot,
		"targetMonsterSlot": target.Slot,
		"continuous":        true,
		"atkBoost":          amount,
		"defBoost":          amount,
	}))
}

func (e *Engine) activateEquipFromSet(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)
	setCard := player.SpellTrapZone[action.Slot]
	template := e.Template(setCard.TemplateID)

	target := e.equipTarget(player, action.TargetMonsterSlot)
	if target == nil {
		return nil
	}
	amount := e.equipBuffValue(template)

	setCard.Face = FaceUp
	setCard.SetThisTurn = false
	setCard.Continuous = true
	setCard.EquipTargetInstanceID = target.InstanceID
	setCard.EquipAtkBoost = amount
	setCard.EquipDefBoost = amount
	target.AtkModifier += amount
	target.DefModifier += amount

	return []Event{NewEvent(EventSpellActivated, action.PlayerID, map[string]any{
		"templateId":        setCard.TemplateID,
		"effectKey":         template.EffectKey,
		"source":            "SET",
		"slot":              action.Slot,
		"targetMonsterSlot": target.Slot,
		"continuous":        true,
		"atkBoost":          amount,
		"defBoost":          amount,
	})}
}

// applySpellTrapEffect interprets a non-equip effect key for the activating
// player. Unknown keys resolve as NO_EFFECT: the card is still spent.
func (e *Engine) applySpellTrapEffect(state *GameState, activatorID, templateID, source string, events []Event) []Event {
	template := e.Template(templateID)
	if template == nil {
		return events
	}
	player := state.PlayerByID(activatorID)
	opponent := state.OpponentOf(activatorID)
	effectKey := template.EffectKey
	if effectKey == "" {
		effectKey = "NO_EFFECT"
	}

	heal := func(amount int) {
		player.LP += amount
		events = append(events, lpChangedEvent(player.ID, effectKey, amount, player.LP))
	}
	damage := func(amount int) {
		opponent.LP -= amount
		if opponent.LP < 0 {
			opponent.LP = 0
		}
		events = append(events, lpChangedEvent(opponent.ID, effectKey, -amount, opponent.LP))
	}
	destroyMonsters := func(targets []*PlayerState, keep func(*MonsterOnBoard) bool) {
		for _, targetPlayer := range targets {
			for slot := 0; slot < BoardSize; slot++ {
				monster := targetPlayer.MonsterZone[slot]
				if monster == nil || (keep != nil && !keep(monster)) {
					continue
				}
				destroyed := moveMonsterToGrave(targetPlayer, slot)
				if destroyed != "" {
					events = append(events, effectDestroyEvent(activatorID, effectKey, targetPlayer.ID, slot, destroyed))
				}
			}
		}
	}
	hasTag := func(monster *MonsterOnBoard, tag catalog.Tag) bool {
		template := e.Template(monster.TemplateID)
		return template != nil && template.HasTag(tag)
	}

	switch effectKey {
	case "HEAL_200":
		heal(200)
	case "HEAL_500":
		heal(500)
	case "HEAL_1000":
		heal(1000)
	case "HEAL_2000":
		heal(2000)
	case "HEAL_5000":
		heal(5000)
	case "DAMAGE_200":
		damage(200)
	case "DAMAGE_500":
		damage(500)
	case "DAMAGE_700":
		damage(700)
	case "DAMAGE_800":
		damage(800)
	case "DAMAGE_1000":
		damage(1000)
	case "DESTROY_OPP_MONSTERS":
		destroyMonsters([]*PlayerState{opponent}, nil)
	case "DESTROY_ALL_MONSTERS":
		destroyMonsters([]*PlayerState{player, opponent}, nil)
	case "DESTROY_OPP_SPELL_TRAPS":
		for slot := 0; slot < BoardSize; slot++ {
			destroyed := moveSpellTrapToGrave(opponent, slot)
			if destroyed != "" {
				events = append(events, NewEvent(EventTrapActivated, activatorID, map[string]any{
					"effectKey":           effectKey,
					"targetPlayerId":      opponent.ID,
					"slot":                slot,
					"destroyedInstanceId": destroyed,
				}))
			}
		}
	case "FORCE_OPP_ATTACK_POSITION":
		for _, monster := range opponent.MonsterZone {
			if monster == nil {
				continue
			}
			if monster.Face == FaceDown {
				monster.Face = FaceUp
			}
			monster.Position = PositionAttack
		}
	case "LOCK_OPP_ATTACKS_3_TURNS":
		lockUntil := state.Turn.TurnNumber + 3
		if lockUntil > opponent.CannotAttackUntilTurn {
			opponent.CannotAttackUntilTurn = lockUntil
		}
	case "REVEAL_OPP_FACE_DOWN_MONSTERS":
		for _, monster := range opponent.MonsterZone {
			if monster != nil && monster.Face == FaceDown {
				monster.Face = FaceUp
			}
		}
	case "DESTROY_OPP_FACE_DOWN_MONSTERS":
		destroyMonsters([]*PlayerState{opponent}, func(m *MonsterOnBoard) bool { return m.Face == FaceDown })
	case "DESTROY_ALL_WARRIOR_MONSTERS":
		destroyMonsters([]*PlayerState{player, opponent}, func(m *MonsterOnBoard) bool { return hasTag(m, catalog.TagWarrior) })
	case "DESTROY_ALL_INSECT_MONSTERS":
		destroyMonsters([]*PlayerState{player, opponent}, func(m *MonsterOnBoard) bool { return hasTag(m, catalog.TagInsect) })
	case "DESTROY_ALL_MACHINE_MONSTERS":
		destroyMonsters([]*PlayerState{player, opponent}, func(m *MonsterOnBoard) bool { return hasTag(m, catalog.TagMechanic) })
	case "DESTROY_ALL_AQUA_MONSTERS":
		destroyMonsters([]*PlayerState{player, opponent}, func(m *MonsterOnBoard) bool {
			return hasTag(m, catalog.TagAquatic) || hasTag(m, catalog.TagWater)
		})
	case "CRUSH_CARD_EFFECT":
		destroyMonsters([]*PlayerState{opponent}, func(m *MonsterOnBoard) bool {
			atk, _ := e.battleStats(m)
			return atk >= 1500
		})
	case "REMOVE_ALL_MONSTER_MODIFIERS":
		for _, boardPlayer := range []*PlayerState{player, opponent} {
			for _, monster := range boardPlayer.MonsterZone {
				if monster != nil {
					monster.AtkModifier = 0
					monster.DefModifier = 0
				}
			}
		}
	case "LOCK_ALL_DRAGONS":
		for _, boardPlayer := range []*PlayerState{player, opponent} {
			for _, monster := range boardPlayer.MonsterZone {
				if monster != nil && hasTag(monster, catalog.TagDragon) {
					monster.CannotAttackThisTurn = true
				}
			}
		}
	case "DESTROY_ATTACKER":
		if slot := e.highestAtkSlot(opponent, nil); slot >= 0 {
			destroyed := moveMonsterToGrave(opponent, slot)
			if destroyed != "" {
				events = append(events, effectDestroyEvent(activatorID, effectKey, opponent.ID, slot, destroyed))
			}
		}
	case "DESTROY_ATTACKER_UNDER_3000":
		slot := e.highestAtkSlot(opponent, func(m *MonsterOnBoard) bool {
			atk, _ := e.battleStats(m)
			return atk < 3000
		})
		if slot >= 0 {
			destroyed := moveMonsterToGrave(opponent, slot)
			if destroyed != "" {
				events = append(events, effectDestroyEvent(activatorID, effectKey, opponent.ID, slot, destroyed))
			}
		}
	case "DESTROY_ATTACKER_UNDER_500":
		slot := e.highestAtkSlot(opponent, func(m *MonsterOnBoard) bool {
			atk, _ := e.battleStats(m)
			return atk <= 500
		})
		if slot >= 0 {
			destroyed := moveMonsterToGrave(opponent, slot)
			if destroyed != "" {
				events = append(events, effectDestroyEvent(activatorID, effectKey, opponent.ID, slot, destroyed))
			}
		}
	case "LOCK_ATTACKER":
		if slot := e.highestAtkSlot(opponent, nil); slot >= 0 {
			target := opponent.MonsterZone[slot]
			target.CannotAttackThisTurn = true
			target.LockedPositionUntilTurn = state.Turn.TurnNumber + 1
		}
	}

	eventType := EventSpellActivated
	if template.Kind == catalog.KindTrap {
		eventType = EventTrapActivated
	}
	return append(events, NewEvent(eventType, activatorID, map[string]any{
		"templateId": templateID,
		"effectKey":  effectKey,
		"source":     source,
	}))
}
