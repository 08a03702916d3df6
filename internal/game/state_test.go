package game

import "testing"

func TestNewDuelOpeningState(t *testing.T) {
	h := NewDuelTestHarness(t)
	state := h.State

	if state.Version != 1 {
		t.Fatalf("version = %d, want 1", state.Version)
	}
	if state.Status != StatusRunning {
		t.Fatalf("status = %s, want RUNNING", state.Status)
	}
	if state.Turn.PlayerID != testPlayerA || state.Turn.TurnNumber != 1 || state.Turn.Phase != PhaseMain {
		t.Fatalf("unexpected opening turn state: %+v", state.Turn)
	}
	for _, player := range state.Players {
		if player.LP != InitialLP {
			t.Fatalf("player %s LP = %d, want %d", player.ID, player.LP, InitialLP)
		}
		if len(player.Hand) != InitialHandSize {
			t.Fatalf("player %s hand = %d cards, want %d", player.ID, len(player.Hand), InitialHandSize)
		}
		if len(player.Deck) != DeckSize-InitialHandSize {
			t.Fatalf("player %s deck = %d cards, want %d", player.ID, len(player.Deck), DeckSize-InitialHandSize)
		}
	}
	if len(state.Instances) != 2*DeckSize {
		t.Fatalf("instances = %d, want %d", len(state.Instances), 2*DeckSize)
	}
}

func TestNewDuelIsDeterministic(t *testing.T) {
	engine := NewDuelTestHarness(t).Engine
	players := [2]DuelPlayer{{ID: testPlayerA}, {ID: testPlayerB}}

	first := engine.NewDuel(players, 1234)
	second := engine.NewDuel(players, 1234)
	if Checksum(first) != Checksum(second) {
		t.Fatal("same seed must produce identical duels")
	}

	other := engine.NewDuel(players, 1235)
	if Checksum(first) == Checksum(other) {
		t.Fatal("different seeds produced identical duels")
	}
}

func TestNewDuelDeckFallbackAndCycling(t *testing.T) {
	engine := NewDuelTestHarness(t).Engine

	// Unknown ids fall back to the stock deck.
	state := engine.NewDuel([2]DuelPlayer{
		{ID: testPlayerA, DeckTemplateIDs: []string{"no_such_card"}},
		{ID: testPlayerB},
	}, 7)
	alice := state.PlayerByID(testPlayerA)
	if got := len(alice.Deck) + len(alice.Hand); got != DeckSize {
		t.Fatalf("fallback deck has %d cards, want %d", got, DeckSize)
	}

	// A short valid list is cycled up to the full deck size.
	state = engine.NewDuel([2]DuelPlayer{
		{ID: testPlayerA, DeckTemplateIDs: []string{"mon_ember_whelp", "mon_tide_lurker"}},
		{ID: testPlayerB},
	}, 7)
	alice = state.PlayerByID(testPlayerA)
	if got := len(alice.Deck) + len(alice.Hand); got != DeckSize {
		t.Fatalf("cycled deck has %d cards, want %d", got, DeckSize)
	}
	for _, instanceID := range alice.Deck {
		templateID := state.Instances[instanceID].TemplateID
		if templateID != "mon_ember_whelp" && templateID != "mon_tide_lurker" {
			t.Fatalf("cycled deck contains unexpected template %s", templateID)
		}
	}
}

func TestCloneSharesNothing(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.PlaceMonster(testPlayerA, 0, "mon_ember_whelp", PositionAttack, FaceUp)

	clone := h.State.Clone()
	clone.Players[0].LP = 1
	clone.Players[0].MonsterZone[0].AtkModifier = 999
	clone.Players[0].Hand = append(clone.Players[0].Hand, "extra")

	if h.State.Players[0].LP == 1 {
		t.Fatal("clone shares player struct with original")
	}
	if h.State.Players[0].MonsterZone[0].AtkModifier == 999 {
		t.Fatal("clone shares board monsters with original")
	}
	if len(h.State.Players[0].Hand) == len(clone.Players[0].Hand) {
		t.Fatal("clone shares hand slice with original")
	}
}
