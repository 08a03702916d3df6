package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/game"
	"github.com/arcanaduel/arcana-server-go/internal/store"
)

// startDirectSession builds a running duel with a crafted board, bypassing
// the lobby flow, so combat scenarios are deterministic.
func startDirectSession(t *testing.T, sink Sink, trapTimeout time.Duration) (*Session, *game.GameState) {
	t.Helper()
	engine := game.NewEngine(catalog.Default(), catalog.Recipes())
	state := engine.NewDuel([2]game.DuelPlayer{
		{ID: "p1", Username: "Alice"},
		{ID: "p2", Username: "Bob"},
	}, 11)

	// Bob is mid-attack window material: Alice holds a set trap, Bob a monster.
	state.Turn = game.TurnState{PlayerID: "p2", Phase: game.PhaseMain, TurnNumber: 2}
	state.Instances["atk-1"] = &game.CardInstance{InstanceID: "atk-1", TemplateID: "mon_feral_warg", OwnerID: "p2"}
	state.PlayerByID("p2").MonsterZone[2] = &game.MonsterOnBoard{
		InstanceID: "atk-1", TemplateID: "mon_feral_warg", OwnerID: "p2",
		Slot: 2, Face: game.FaceUp, Position: game.PositionAttack,
	}
	state.Instances["trap-1"] = &game.CardInstance{InstanceID: "trap-1", TemplateID: "trp_pitfall", OwnerID: "p1"}
	state.PlayerByID("p1").SpellTrapZone[1] = &game.SpellTrapOnBoard{
		InstanceID: "trap-1", TemplateID: "trp_pitfall", OwnerID: "p1",
		Slot: 1, Kind: string(catalog.KindTrap), Face: game.FaceDown,
	}

	r := newRoom("TEST1", ModePvp)
	r.participants = []*Participant{
		{PlayerID: "p1", Username: "Alice", IsHost: true, Online: true},
		{PlayerID: "p2", Username: "Bob", Online: true},
	}
	r.status = StatusRunning

	cfg := testRoomConfig()
	cfg.TrapResponseTimeout = trapTimeout
	session := newSession(r, engine, nil, "", store.NewMemoryStore(), cfg, sink, zaptest.NewLogger(t), state)
	t.Cleanup(session.Close)
	return session, state
}

func TestSessionPromptsTheDefender(t *testing.T) {
	sink := newRecorderSink()
	session, _ := startDirectSession(t, sink, 0)

	session.Submit(game.Action{
		ID: "atk", Type: game.ActionAttackDeclare, PlayerID: "p2",
		AttackerSlot: 2, Target: &game.AttackTarget{Direct: true},
	})

	waitFor(t, "trap prompt", func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.prompts["p1"]) > 0
	})
	sink.mu.Lock()
	prompt := sink.prompts["p1"][0]
	sink.mu.Unlock()
	assert.Equal(t, game.WindowTrapResponse, prompt.Window)
	assert.Equal(t, []int{1}, prompt.AvailableTrapSlots)
	assert.True(t, prompt.Direct)

	// The attacker never sees a prompt.
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Empty(t, sink.prompts["p2"])
}

func TestSessionForcesPassOnTrapTimeout(t *testing.T) {
	sink := newRecorderSink()
	session, _ := startDirectSession(t, sink, 20*time.Millisecond)

	session.Submit(game.Action{
		ID: "atk", Type: game.ActionAttackDeclare, PlayerID: "p2",
		AttackerSlot: 2, Target: &game.AttackTarget{Direct: true},
	})

	// Without a defender response, the window resolves on its own and the
	// direct attack lands.
	waitFor(t, "forced battle resolution", func() bool {
		snap := sink.latestSnapshot("p2")
		return snap != nil && snap.Opponent.LP == game.InitialLP-1400
	})
	snap := sink.latestSnapshot("p1")
	require.NotNil(t, snap)
	assert.Nil(t, snap.PendingPrompt, "the window is closed after the forced pass")
}

func TestSessionRecordsFinishedMatch(t *testing.T) {
	sink := newRecorderSink()
	memory := store.NewMemoryStore()
	engine := game.NewEngine(catalog.Default(), catalog.Recipes())
	state := engine.NewDuel([2]game.DuelPlayer{
		{ID: "p1", Username: "Alice"},
		{ID: "p2", Username: "Bob"},
	}, 12)
	state.Turn = game.TurnState{PlayerID: "p2", Phase: game.PhaseMain, TurnNumber: 2}
	state.Instances["atk-1"] = &game.CardInstance{InstanceID: "atk-1", TemplateID: "mon_pyre_wyvern", OwnerID: "p2"}
	state.PlayerByID("p2").MonsterZone[2] = &game.MonsterOnBoard{
		InstanceID: "atk-1", TemplateID: "mon_pyre_wyvern", OwnerID: "p2",
		Slot: 2, Face: game.FaceUp, Position: game.PositionAttack,
	}
	state.PlayerByID("p1").LP = 1000

	r := newRoom("TEST2", ModePvp)
	r.participants = []*Participant{
		{PlayerID: "p1", Username: "Alice", IsHost: true, Online: true},
		{PlayerID: "p2", Username: "Bob", Online: true},
	}
	r.status = StatusRunning
	session := newSession(r, engine, nil, "", memory, testRoomConfig(), sink, zaptest.NewLogger(t), state)
	t.Cleanup(session.Close)

	session.Submit(game.Action{
		ID: "atk", Type: game.ActionAttackDeclare, PlayerID: "p2",
		AttackerSlot: 2, Target: &game.AttackTarget{Direct: true},
	})

	waitFor(t, "match record", func() bool {
		return len(memory.Matches()) == 1
	})
	record := memory.Matches()[0]
	assert.Equal(t, "p2", record.WinnerID)
	assert.Equal(t, "p1", record.LoserID)
	assert.Equal(t, StatusFinished, r.Status())
}
