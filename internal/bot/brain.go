package bot

import (
	"sort"

	"github.com/google/uuid"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/game"
)

// slotPriority is the fill order for board slots: center first, edges last.
var slotPriority = [game.BoardSize]int{2, 1, 3, 0, 4}

// Brain proposes actions for a scripted opponent. Every candidate is run
// through the engine's validator before it is scored, so a proposed action
// can never be rejected by the rules.
type Brain struct {
	engine *game.Engine
	// Tier scales aggression and reaction thresholds. Campaign opponents
	// range from 1 (timid) to 8 (ruthless).
	Tier int
}

// New creates a brain of the given tier over the shared engine.
func New(engine *game.Engine, tier int) *Brain {
	if tier < 1 {
		tier = 1
	}
	return &Brain{engine: engine, Tier: tier}
}

type candidate struct {
	action game.Action
	score  float64
}

type boardMetrics struct {
	botLP                    int
	opponentLP               int
	botMonsterCount          int
	opponentMonsterCount     int
	opponentFaceDownMonsters int
	opponentDefenseMonsters  int
	opponentSpellTrapCount   int
	highestOpponentAtk       int
	opponentBigMonsters      int
	modifiedMonsterCount     int
	dragonCount              int
}

// NextTurnAction returns the bot's best move for its own turn, or nil when
// nothing scores above the floor (the caller then ends the turn).
func (b *Brain) NextTurnAction(state *game.GameState, botPlayerID string) *game.Action {
	bot := state.PlayerByID(botPlayerID)
	opponent := state.OpponentOf(botPlayerID)
	if bot == nil || opponent == nil {
		return nil
	}

	var candidates []candidate
	add := func(action game.Action, score float64) {
		action.ID = uuid.NewString()
		action.PlayerID = botPlayerID
		if b.engine.Validate(state, action) == nil {
			candidates = append(candidates, candidate{action: action, score: score})
		}
	}

	b.addAttackCandidates(state, bot, opponent, add)
	if state.Turn.Phase == game.PhaseMain {
		b.addSpellTrapCandidates(state, bot, opponent, add)
		b.addFusionCandidates(state, bot, add)
		b.addSummonAndSetCandidates(state, bot, opponent, add)
		b.addPositionCandidates(state, bot, opponent, add)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) == 0 || candidates[0].score < -500 {
		return nil
	}
	best := candidates[0].action
	return &best
}

// ReactiveAction answers an open trap-response window, or fires a set trap
// on the opponent's turn. Nil means the bot stays quiet.
func (b *Brain) ReactiveAction(state *game.GameState, botPlayerID string) *game.Action {
	bot := state.PlayerByID(botPlayerID)
	opponent := state.OpponentOf(botPlayerID)
	if bot == nil || opponent == nil {
		return nil
	}

	pending := state.PendingAttack
	if pending != nil && pending.Window == game.WindowTrapResponse && pending.DefenderPlayerID == botPlayerID {
		return b.trapResponse(state, bot, opponent, botPlayerID)
	}

	if state.Turn.PlayerID == botPlayerID {
		return nil
	}

	metrics := b.buildMetrics(bot, opponent)
	var candidates []candidate
	for slot, setCard := range bot.SpellTrapZone {
		if setCard == nil || setCard.Kind != string(catalog.KindTrap) {
			continue
		}
		action := game.Action{
			ID: uuid.NewString(), Type: game.ActionActivateSetCard,
			PlayerID: botPlayerID, Slot: slot,
		}
		if b.engine.Validate(state, action) != nil {
			continue
		}
		template := b.engine.Template(setCard.TemplateID)
		candidates = append(candidates, candidate{action: action, score: b.scoreEffectKey(effectKeyOf(template), metrics) + 280})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	threshold := float64(maxInt(140, 280-b.Tier*20))
	if len(candidates) == 0 || candidates[0].score < threshold {
		return nil
	}
	best := candidates[0].action
	return &best
}

func (b *Brain) trapResponse(state *game.GameState, bot, opponent *game.PlayerState, botPlayerID string) *game.Action {
	metrics := b.buildMetrics(bot, opponent)
	var candidates []candidate
	for slot, setCard := range bot.SpellTrapZone {
		if setCard == nil || setCard.Kind != string(catalog.KindTrap) {
			continue
		}
		if setCard.Face != game.FaceDown || setCard.SetThisTurn {
			continue
		}
		trapSlot := slot
		action := game.Action{
			ID: uuid.NewString(), Type: game.ActionTrapResponse, PlayerID: botPlayerID,
			Decision: game.DecisionActivate, TrapSlot: &trapSlot,
		}
		if b.engine.Validate(state, action) != nil {
			continue
		}
		template := b.engine.Template(setCard.TemplateID)
		candidates = append(candidates, candidate{action: action, score: b.scoreEffectKey(effectKeyOf(template), metrics) + 320})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	threshold := float64(maxInt(120, 260-b.Tier*20))
	if len(candidates) > 0 && candidates[0].score >= threshold {
		best := candidates[0].action
		return &best
	}
	return &game.Action{
		ID: uuid.NewString(), Type: game.ActionTrapResponse, PlayerID: botPlayerID,
		Decision: game.DecisionPass,
	}
}

func (b *Brain) addAttackCandidates(state *game.GameState, bot, opponent *game.PlayerState, add func(game.Action, float64)) {
	opponentHasMonsters := false
	for _, monster := range opponent.MonsterZone {
		if monster != nil {
			opponentHasMonsters = true
			break
		}
	}

	for slot, attacker := range bot.MonsterZone {
		if attacker == nil || attacker.Position != game.PositionAttack || attacker.Face != game.FaceUp {
			continue
		}
		if attacker.HasAttackedThisTurn || attacker.CannotAttackThisTurn {
			continue
		}

		if !opponentHasMonsters {
			add(game.Action{
				Type: game.ActionAttackDeclare, AttackerSlot: slot,
				Target: &game.AttackTarget{Direct: true},
			}, b.scoreAttack(attacker, nil, opponent.LP))
			continue
		}
		for defenderSlot, defender := range opponent.MonsterZone {
			if defender == nil {
				continue
			}
			add(game.Action{
				Type: game.ActionAttackDeclare, AttackerSlot: slot,
				Target: &game.AttackTarget{Slot: defenderSlot},
			}, b.scoreAttack(attacker, defender, opponent.LP))
		}
	}
}

func (b *Brain) addSummonAndSetCandidates(state *game.GameState, bot, opponent *game.PlayerState, add func(game.Action, float64)) {
	if bot.UsedSummonOrFuseThisTurn {
		return
	}
	freeSlot, ok := preferredFreeMonsterSlot(bot)
	if !ok {
		return
	}
	opponentStrongest := b.strongestAttack(opponent)

	for _, instanceID := range bot.Hand {
		template := b.templateOfInstance(state, instanceID)
		if template == nil || template.Kind != catalog.KindMonster {
			continue
		}

		summonScore := float64(500 + template.Atk)
		if bot.MonsterZone == [game.BoardSize]*game.MonsterOnBoard{} {
			summonScore += 180
		}
		if template.Atk < opponentStrongest && template.Def > template.Atk {
			summonScore -= 220
		}
		summonScore += float64(b.Tier * 35)
		add(game.Action{
			Type: game.ActionSummonMonster, HandInstanceID: instanceID, Slot: freeSlot,
		}, summonScore)

		setScore := float64(380 + template.Def)
		if opponentStrongest > template.Atk {
			setScore += 220
		}
		if b.Tier >= 4 {
			setScore -= 120
		}
		if state.Turn.TurnNumber == 1 {
			setScore += 120
		}
		add(game.Action{
			Type: game.ActionSetMonster, HandInstanceID: instanceID, Slot: freeSlot,
		}, setScore)
	}
}

func (b *Brain) addSpellTrapCandidates(state *game.GameState, bot, opponent *game.PlayerState, add func(game.Action, float64)) {
	metrics := b.buildMetrics(bot, opponent)
	equipTargetSlot, hasEquipTarget := b.preferredEquipTargetSlot(bot)

	for _, instanceID := range bot.Hand {
		template := b.templateOfInstance(state, instanceID)
		if template == nil || template.Kind == catalog.KindMonster {
			continue
		}

		if template.Kind == catalog.KindSpell {
			action := game.Action{Type: game.ActionActivateSpellFromHand, HandInstanceID: instanceID}
			if isEquipKey(template.EffectKey) && hasEquipTarget {
				target := equipTargetSlot
				action.TargetMonsterSlot = &target
			}
			add(action, b.scoreEffectKey(template.EffectKey, metrics)+220)
		}

		if freeSlot, ok := preferredFreeSpellTrapSlot(bot); ok {
			setBase := 180.0
			if template.Kind == catalog.KindTrap {
				setBase = 340
			}
			add(game.Action{
				Type: game.ActionSetSpellTrap, HandInstanceID: instanceID, Slot: freeSlot,
			}, setBase+b.scoreEffectKey(template.EffectKey, metrics)*0.35)
		}
	}

	for slot, fieldCard := range bot.SpellTrapZone {
		if fieldCard == nil {
			continue
		}
		template := b.engine.Template(fieldCard.TemplateID)
		action := game.Action{Type: game.ActionActivateSetCard, Slot: slot}
		if template != nil && isEquipKey(template.EffectKey) && hasEquipTarget {
			target := equipTargetSlot
			action.TargetMonsterSlot = &target
		}
		add(action, b.scoreEffectKey(effectKeyOf(template), metrics)+260)
	}
}

func (b *Brain) addFusionCandidates(state *game.GameState, bot *game.PlayerState, add func(game.Action, float64)) {
	if b.Tier < 2 || bot.UsedSummonOrFuseThisTurn {
		return
	}
	freeSlot, ok := preferredFreeMonsterSlot(bot)
	if !ok {
		return
	}

	type handMonster struct {
		instanceID string
		template   *catalog.CardTemplate
	}
	var pool []handMonster
	for _, instanceID := range bot.Hand {
		template := b.templateOfInstance(state, instanceID)
		if template != nil && template.Kind == catalog.KindMonster {
			pool = append(pool, handMonster{instanceID, template})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].template.Atk+pool[i].template.Def > pool[j].template.Atk+pool[j].template.Def
	})
	if len(pool) > 6 {
		pool = pool[:6]
	}
	if len(pool) < 2 {
		return
	}

	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			left, right := pool[i], pool[j]
			outcome := b.engine.ResolveFusion([]*catalog.CardTemplate{left.template, right.template})
			result := b.engine.Template(outcome.ResultTemplateID)
			if result == nil || result.Kind != catalog.KindMonster {
				continue
			}
			score := 1100 + float64(result.Atk) + float64(result.Def)*0.35
			if outcome.Failed {
				score -= 1200
			}
			add(game.Action{
				Type: game.ActionFuse,
				Materials: []game.FuseMaterial{
					{Source: game.SourceHand, InstanceID: left.instanceID},
					{Source: game.SourceHand, InstanceID: right.instanceID},
				},
				Order:      []string{left.instanceID, right.instanceID},
				ResultSlot: freeSlot,
			}, score)
		}
	}
}

func (b *Brain) addPositionCandidates(state *game.GameState, bot, opponent *game.PlayerState, add func(game.Action, float64)) {
	strongestOpponent := b.strongestAttack(opponent)
	for slot, monster := range bot.MonsterZone {
		if monster == nil || monster.Face != game.FaceUp {
			continue
		}
		atk, def := b.stats(monster)

		if monster.Position == game.PositionAttack && monster.HasAttackedThisTurn &&
			def > atk+120 && strongestOpponent > atk {
			add(game.Action{
				Type: game.ActionChangePosition, Slot: slot, Position: game.PositionDefense,
			}, 620+float64(def)/3)
		}
		if monster.Position == game.PositionDefense && !monster.HasAttackedThisTurn &&
			atk > strongestOpponent+160 {
			add(game.Action{
				Type: game.ActionChangePosition, Slot: slot, Position: game.PositionAttack,
			}, 560+float64(atk)/3)
		}
	}
}

func (b *Brain) scoreAttack(attacker *game.MonsterOnBoard, defender *game.MonsterOnBoard, opponentLP int) float64 {
	attackerAtk, _ := b.stats(attacker)

	if defender == nil {
		if attackerAtk >= opponentLP {
			return float64(10000 + attackerAtk)
		}
		return float64(1600 + attackerAtk)
	}

	defenderAtk, defenderDef := b.stats(defender)
	if defender.Position == game.PositionAttack {
		diff := attackerAtk - defenderAtk
		switch {
		case diff > 0:
			lethalBonus := 0
			if diff >= opponentLP {
				lethalBonus = 5000
			}
			return float64(1700 + diff + lethalBonus)
		case diff == 0:
			return 360
		default:
			return float64(-1800 + diff)
		}
	}

	assumedDef := defenderDef
	hiddenPenalty := 0.0
	if defender.Face == game.FaceDown {
		assumedDef = minInt(2600, 1200+b.Tier*140)
		hiddenPenalty = 120
		if b.Tier <= 2 {
			hiddenPenalty = 280
		}
	}
	diff := attackerAtk - assumedDef
	if diff > 0 {
		return float64(1200+diff) - hiddenPenalty
	}
	return -520 + float64(diff)*0.65 - hiddenPenalty
}

func (b *Brain) scoreEffectKey(effectKey string, m boardMetrics) float64 {
	if effectKey == "" || effectKey == "NO_EFFECT" {
		return -120
	}

	heal := func(value int) float64 {
		switch {
		case m.botLP <= 2000:
			return 250 + float64(value)/2
		case m.botLP <= 4000:
			return 120 + float64(value)/3
		default:
			return 40 + float64(value)/10
		}
	}
	damage := func(value int) float64 {
		if m.opponentLP <= value {
			return float64(8000 + value)
		}
		return 80 + float64(value)/2
	}

	switch effectKey {
	case "HEAL_200":
		return heal(200)
	case "HEAL_500":
		return heal(500)
	case "HEAL_1000":
		return heal(1000)
	case "HEAL_2000":
		return heal(2000)
	case "HEAL_5000":
		return heal(5000)
	case "DAMAGE_200":
		return damage(200)
	case "DAMAGE_500":
		return damage(500)
	case "DAMAGE_700":
		return damage(700)
	case "DAMAGE_800":
		return damage(800)
	case "DAMAGE_1000":
		return damage(1000)
	case "DESTROY_OPP_MONSTERS":
		return float64(m.opponentMonsterCount * 900)
	case "DESTROY_ALL_MONSTERS":
		return float64((m.opponentMonsterCount - m.botMonsterCount) * 850)
	case "DESTROY_OPP_SPELL_TRAPS":
		return float64(m.opponentSpellTrapCount * 500)
	case "EQUIP_CONTINUOUS", "EQUIP_BUFF_500":
		if m.botMonsterCount > 0 {
			return 600
		}
		return 80
	case "FORCE_OPP_ATTACK_POSITION":
		return float64(m.opponentDefenseMonsters * 300)
	case "LOCK_OPP_ATTACKS_3_TURNS":
		return float64(maxInt(0, m.highestOpponentAtk-800) + m.opponentMonsterCount*160)
	case "REVEAL_OPP_FACE_DOWN_MONSTERS":
		return float64(m.opponentFaceDownMonsters * 220)
	case "DESTROY_OPP_FACE_DOWN_MONSTERS":
		return float64(m.opponentFaceDownMonsters * 780)
	case "DESTROY_ALL_WARRIOR_MONSTERS", "DESTROY_ALL_INSECT_MONSTERS",
		"DESTROY_ALL_MACHINE_MONSTERS", "DESTROY_ALL_AQUA_MONSTERS":
		return float64(m.opponentMonsterCount*320 - m.botMonsterCount*200)
	case "CRUSH_CARD_EFFECT":
		return float64(m.opponentBigMonsters * 700)
	case "REMOVE_ALL_MONSTER_MODIFIERS":
		return float64(m.modifiedMonsterCount * 240)
	case "LOCK_ALL_DRAGONS":
		return float64(m.dragonCount * 350)
	case "DESTROY_ATTACKER":
		if m.opponentMonsterCount > 0 {
			return 560 + float64(m.highestOpponentAtk)/2
		}
		return 100
	case "DESTROY_ATTACKER_UNDER_3000":
		if m.opponentMonsterCount > 0 {
			return 480 + float64(m.highestOpponentAtk)/3
		}
		return 80
	case "DESTROY_ATTACKER_UNDER_500":
		if m.highestOpponentAtk <= 500 {
			return 420
		}
		return 40
	case "LOCK_ATTACKER":
		if m.opponentMonsterCount > 0 {
			return 420 + float64(m.highestOpponentAtk)/4
		}
		return 60
	default:
		return 90
	}
}

func (b *Brain) buildMetrics(bot, opponent *game.PlayerState) boardMetrics {
	m := boardMetrics{botLP: bot.LP, opponentLP: opponent.LP}

	for _, card := range opponent.SpellTrapZone {
		if card != nil {
			m.opponentSpellTrapCount++
		}
	}
	for _, side := range []*game.PlayerState{bot, opponent} {
		for _, monster := range side.MonsterZone {
			if monster == nil {
				continue
			}
			if monster.AtkModifier != 0 || monster.DefModifier != 0 {
				m.modifiedMonsterCount++
			}
			if template := b.engine.Template(monster.TemplateID); template != nil && template.HasTag(catalog.TagDragon) {
				m.dragonCount++
			}
		}
	}
	for _, monster := range bot.MonsterZone {
		if monster != nil {
			m.botMonsterCount++
		}
	}
	for _, monster := range opponent.MonsterZone {
		if monster == nil {
			continue
		}
		m.opponentMonsterCount++
		if monster.Face == game.FaceDown {
			m.opponentFaceDownMonsters++
		}
		if monster.Position == game.PositionDefense {
			m.opponentDefenseMonsters++
		}
		atk, _ := b.stats(monster)
		if atk > m.highestOpponentAtk {
			m.highestOpponentAtk = atk
		}
		if atk >= 1500 {
			m.opponentBigMonsters++
		}
	}
	return m
}

func (b *Brain) stats(monster *game.MonsterOnBoard) (atk, def int) {
	template := b.engine.Template(monster.TemplateID)
	if template == nil || template.Kind != catalog.KindMonster {
		return 0, 0
	}
	return template.Atk + monster.AtkModifier, template.Def + monster.DefModifier
}

func (b *Brain) strongestAttack(player *game.PlayerState) int {
	strongest := 0
	for _, monster := range player.MonsterZone {
		if monster == nil {
			continue
		}
		if atk, _ := b.stats(monster); atk > strongest {
			strongest = atk
		}
	}
	return strongest
}

func (b *Brain) preferredEquipTargetSlot(player *game.PlayerState) (int, bool) {
	bestSlot, bestScore := -1, 0.0
	for slot, monster := range player.MonsterZone {
		if monster == nil || monster.Face != game.FaceUp {
			continue
		}
		atk, def := b.stats(monster)
		score := float64(atk)*1.2 + float64(def)
		if bestSlot == -1 || score > bestScore {
			bestSlot, bestScore = slot, score
		}
	}
	return bestSlot, bestSlot >= 0
}

func (b *Brain) templateOfInstance(state *game.GameState, instanceID string) *catalog.CardTemplate {
	instance := state.Instances[instanceID]
	if instance == nil {
		return nil
	}
	return b.engine.Template(instance.TemplateID)
}

func preferredFreeMonsterSlot(player *game.PlayerState) (int, bool) {
	for _, slot := range slotPriority {
		if player.MonsterZone[slot] == nil {
			return slot, true
		}
	}
	return 0, false
}

func preferredFreeSpellTrapSlot(player *game.PlayerState) (int, bool) {
	for _, slot := range slotPriority {
		if player.SpellTrapZone[slot] == nil {
			return slot, true
		}
	}
	return 0, false
}

func effectKeyOf(template *catalog.CardTemplate) string {
	if template == nil {
		return ""
	}
	return template.EffectKey
}

func isEquipKey(effectKey string) bool {
	return effectKey == "EQUIP_CONTINUOUS" || effectKey == "EQUIP_BUFF_500"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
