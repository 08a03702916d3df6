package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/game"
)

const (
	botID      = "bot"
	opponentID = "human"
)

type brainFixture struct {
	engine *game.Engine
	brain  *Brain
	state  *game.GameState
	nextID int
}

// newBrainFixture starts a duel on the bot's second turn with both hands
// emptied, so each test places exactly the cards it needs.
func newBrainFixture(t *testing.T, tier int) *brainFixture {
	t.Helper()
	engine := game.NewEngine(catalog.Default(), catalog.Recipes())
	state := engine.NewDuel([2]game.DuelPlayer{
		{ID: botID, Username: "Bot"},
		{ID: opponentID, Username: "Human"},
	}, 7)
	for _, player := range state.Players {
		player.Hand = nil
	}
	state.Turn = game.TurnState{PlayerID: botID, Phase: game.PhaseMain, TurnNumber: 2}
	return &brainFixture{engine: engine, brain: New(engine, tier), state: state}
}

func (f *brainFixture) mint(t *testing.T, ownerID, templateID string) string {
	t.Helper()
	require.NotNil(t, f.engine.Template(templateID), "unknown template %s", templateID)
	f.nextID++
	instanceID := fmt.Sprintf("fix-%s-%d", ownerID, f.nextID)
	f.state.Instances[instanceID] = &game.CardInstance{
		InstanceID: instanceID, TemplateID: templateID, OwnerID: ownerID,
	}
	return instanceID
}

func (f *brainFixture) giveHand(t *testing.T, playerID, templateID string) string {
	instanceID := f.mint(t, playerID, templateID)
	player := f.state.PlayerByID(playerID)
	player.Hand = append(player.Hand, instanceID)
	return instanceID
}

func (f *brainFixture) placeMonster(t *testing.T, playerID, templateID string, slot int, face game.Face, position game.Position) *game.MonsterOnBoard {
	instanceID := f.mint(t, playerID, templateID)
	monster := &game.MonsterOnBoard{
		InstanceID: instanceID, TemplateID: templateID, OwnerID: playerID,
		Slot: slot, Face: face, Position: position,
	}
	f.state.PlayerByID(playerID).MonsterZone[slot] = monster
	return monster
}

func (f *brainFixture) placeTrap(t *testing.T, playerID, templateID string, slot int) *game.SpellTrapOnBoard {
	instanceID := f.mint(t, playerID, templateID)
	card := &game.SpellTrapOnBoard{
		InstanceID: instanceID, TemplateID: templateID, OwnerID: playerID,
		Slot: slot, Kind: string(catalog.KindTrap), Face: game.FaceDown,
	}
	f.state.PlayerByID(playerID).SpellTrapZone[slot] = card
	return card
}

func TestBrainTakesLethalDirectAttack(t *testing.T) {
	f := newBrainFixture(t, 3)
	f.placeMonster(t, botID, "mon_pyre_wyvern", 2, game.FaceUp, game.PositionAttack)
	f.giveHand(t, botID, "mon_marsh_slime")
	f.state.PlayerByID(opponentID).LP = 1500

	action := f.brain.NextTurnAction(f.state, botID)
	require.NotNil(t, action)
	assert.Equal(t, game.ActionAttackDeclare, action.Type)
	require.NotNil(t, action.Target)
	assert.True(t, action.Target.Direct)
}

func TestBrainSummonsStrongestMonster(t *testing.T) {
	f := newBrainFixture(t, 1)
	f.giveHand(t, botID, "mon_marsh_slime")
	strong := f.giveHand(t, botID, "mon_dawn_paladin")

	action := f.brain.NextTurnAction(f.state, botID)
	require.NotNil(t, action)
	assert.Equal(t, game.ActionSummonMonster, action.Type)
	assert.Equal(t, strong, action.HandInstanceID)
	assert.Equal(t, 2, action.Slot, "the center slot fills first")
}

func TestBrainPrefersRecipeFusionOverSummon(t *testing.T) {
	f := newBrainFixture(t, 3)
	whelp := f.giveHand(t, botID, "mon_ember_whelp")
	drake := f.giveHand(t, botID, "mon_cinder_drake")

	action := f.brain.NextTurnAction(f.state, botID)
	require.NotNil(t, action)
	require.Equal(t, game.ActionFuse, action.Type)
	assert.ElementsMatch(t, []string{whelp, drake}, action.Order)
	assert.Equal(t, 2, action.ResultSlot)
}

func TestBrainAvoidsLosingAttack(t *testing.T) {
	f := newBrainFixture(t, 3)
	f.placeMonster(t, botID, "mon_marsh_slime", 2, game.FaceUp, game.PositionAttack)
	f.placeMonster(t, opponentID, "mon_seraphic_dragon", 2, game.FaceUp, game.PositionAttack)

	action := f.brain.NextTurnAction(f.state, botID)
	if action != nil {
		assert.NotEqual(t, game.ActionAttackDeclare, action.Type,
			"800 ATK into 3000 ATK is a losing trade")
	}
}

func TestBrainReturnsNilWithNothingToDo(t *testing.T) {
	f := newBrainFixture(t, 3)
	assert.Nil(t, f.brain.NextTurnAction(f.state, botID), "an empty hand and board means END_TURN")
}

func TestBrainActivatesTrapAgainstBigAttacker(t *testing.T) {
	f := newBrainFixture(t, 3)
	f.state.Turn.PlayerID = opponentID
	attacker := f.placeMonster(t, opponentID, "mon_reef_leviathan", 1, game.FaceUp, game.PositionAttack)
	f.placeMonster(t, botID, "mon_marsh_slime", 2, game.FaceUp, game.PositionAttack)
	f.placeTrap(t, botID, "trp_pitfall", 3)
	f.state.PendingAttack = &game.PendingAttack{
		AttackerPlayerID:   opponentID,
		DefenderPlayerID:   botID,
		AttackerSlot:       attacker.Slot,
		Target:             game.SlotTarget(2),
		DefenderMayRespond: true,
		AvailableTrapSlots: []int{3},
		Window:             game.WindowTrapResponse,
	}

	action := f.brain.ReactiveAction(f.state, botID)
	require.NotNil(t, action)
	assert.Equal(t, game.ActionTrapResponse, action.Type)
	assert.Equal(t, game.DecisionActivate, action.Decision)
	require.NotNil(t, action.TrapSlot)
	assert.Equal(t, 3, *action.TrapSlot)
}

func TestBrainPassesWithoutUsableTrap(t *testing.T) {
	f := newBrainFixture(t, 3)
	f.state.Turn.PlayerID = opponentID
	attacker := f.placeMonster(t, opponentID, "mon_feral_warg", 1, game.FaceUp, game.PositionAttack)
	f.placeMonster(t, botID, "mon_temple_guardian", 2, game.FaceUp, game.PositionDefense)
	trap := f.placeTrap(t, botID, "trp_pitfall", 3)
	trap.SetThisTurn = true
	f.state.PendingAttack = &game.PendingAttack{
		AttackerPlayerID:   opponentID,
		DefenderPlayerID:   botID,
		AttackerSlot:       attacker.Slot,
		Target:             game.SlotTarget(2),
		DefenderMayRespond: true,
		Window:             game.WindowTrapResponse,
	}

	action := f.brain.ReactiveAction(f.state, botID)
	require.NotNil(t, action)
	assert.Equal(t, game.ActionTrapResponse, action.Type)
	assert.Equal(t, game.DecisionPass, action.Decision)
}

func TestBrainStaysQuietOffTurnWithoutSetTraps(t *testing.T) {
	f := newBrainFixture(t, 3)
	f.state.Turn.PlayerID = opponentID
	assert.Nil(t, f.brain.ReactiveAction(f.state, botID))
}

func TestBrainEquipsItsOwnMonster(t *testing.T) {
	f := newBrainFixture(t, 3)
	monster := f.placeMonster(t, botID, "mon_dawn_paladin", 2, game.FaceUp, game.PositionAttack)
	monster.HasAttackedThisTurn = true
	f.state.PlayerByID(botID).UsedSummonOrFuseThisTurn = true
	f.giveHand(t, botID, "spl_runed_blade")

	action := f.brain.NextTurnAction(f.state, botID)
	require.NotNil(t, action)
	require.Equal(t, game.ActionActivateSpellFromHand, action.Type)
	require.NotNil(t, action.TargetMonsterSlot)
	assert.Equal(t, monster.Slot, *action.TargetMonsterSlot)
}

func TestBrainProposalsAlwaysValidate(t *testing.T) {
	f := newBrainFixture(t, 5)
	f.giveHand(t, botID, "mon_ember_whelp")
	f.giveHand(t, botID, "mon_cinder_drake")
	f.giveHand(t, botID, "spl_meteor_call")
	f.placeMonster(t, opponentID, "mon_iron_sentinel", 2, game.FaceDown, game.PositionDefense)

	for i := 0; i < 10; i++ {
		action := f.brain.NextTurnAction(f.state, botID)
		if action == nil {
			break
		}
		next, _, err := f.engine.Apply(f.state, *action)
		require.NoError(t, err, "the brain proposed %s which the rules rejected", action.Type)
		f.state = next
	}
}
