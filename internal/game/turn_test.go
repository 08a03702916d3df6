package game

import "testing"

func TestEndTurnAdvancesAndDraws(t *testing.T) {
	h := NewDuelTestHarness(t)
	bobHandBefore := len(h.State.PlayerByID(testPlayerB).Hand)

	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerA})

	if h.State.Turn.PlayerID != testPlayerB || h.State.Turn.TurnNumber != 2 {
		t.Fatalf("turn = %+v, want bob on turn 2", h.State.Turn)
	}
	if h.State.Turn.Phase != PhaseMain {
		t.Fatalf("new turn phase = %s, want MAIN", h.State.Turn.Phase)
	}
	if got := len(h.State.PlayerByID(testPlayerB).Hand); got != bobHandBefore+1 {
		t.Fatalf("bob drew %d cards, want 1", got-bobHandBefore)
	}
	h.RequireEvent(EventTurnChanged)
	h.RequireEvent(EventCardDrawn)
}

func TestEndTurnResetsFlags(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerB, 2)
	monster := h.PlaceMonster(testPlayerB, 0, "mon_tide_lurker", PositionAttack, FaceUp)
	monster.HasAttackedThisTurn = true
	monster.PositionChangedThisTurn = true
	monster.CannotAttackThisTurn = true
	monster.LockedPositionUntilTurn = 3
	trap := h.PlaceSpellTrap(testPlayerB, 0, "trp_pitfall", FaceDown)
	trap.SetThisTurn = true
	h.State.PlayerByID(testPlayerB).UsedSummonOrFuseThisTurn = true

	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerB})

	// It is now alice's turn 3; bob's per-turn flags are untouched until his
	// own turn starts.
	if h.State.Turn.PlayerID != testPlayerA || h.State.Turn.TurnNumber != 3 {
		t.Fatalf("turn = %+v", h.State.Turn)
	}

	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerA})
	refreshed := h.State.PlayerByID(testPlayerB)
	board := refreshed.MonsterZone[0]
	if board.HasAttackedThisTurn || board.PositionChangedThisTurn || board.CannotAttackThisTurn {
		t.Fatalf("per-turn monster flags must reset, got %+v", board)
	}
	if board.LockedPositionUntilTurn != 0 {
		t.Fatalf("expired position lock must clear, got %d", board.LockedPositionUntilTurn)
	}
	if refreshed.SpellTrapZone[0].SetThisTurn {
		t.Fatal("SetThisTurn must clear at the owner's next turn")
	}
	if refreshed.UsedSummonOrFuseThisTurn {
		t.Fatal("the summon budget must refresh")
	}
}

func TestFatigueOnEmptyDeck(t *testing.T) {
	h := NewDuelTestHarness(t)
	bob := h.State.PlayerByID(testPlayerB)
	bob.Deck = nil

	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerA})

	h.AssertLP(testPlayerB, InitialLP-FatigueDamage)
	event := h.RequireEvent(EventLPChanged)
	if event.Payload["reason"] != "FATIGUE" {
		t.Fatalf("LP change reason = %v, want FATIGUE", event.Payload["reason"])
	}
}

func TestFatigueCanEndTheDuel(t *testing.T) {
	h := NewDuelTestHarness(t)
	bob := h.State.PlayerByID(testPlayerB)
	bob.Deck = nil
	bob.LP = FatigueDamage

	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerA})

	if h.State.Status != StatusFinished || h.State.WinnerID != testPlayerA {
		t.Fatalf("fatigue at lethal LP must finish the duel, got %s/%s", h.State.Status, h.State.WinnerID)
	}
	h.RequireEvent(EventGameFinished)
}

func TestEndTurnClearsStalePendingAttack(t *testing.T) {
	h := NewDuelTestHarness(t)
	// A resolved window must never leak into the next turn.
	h.State.PendingAttack = &PendingAttack{AttackerPlayerID: testPlayerA, Window: ""}
	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerA})
	if h.State.PendingAttack != nil {
		t.Fatal("advanceTurn must clear any pending attack")
	}
}

func TestVersionAdvancesOnlyOnAcceptedActions(t *testing.T) {
	h := NewDuelTestHarness(t)
	before := h.State.Version

	h.MustApply(Action{Type: ActionEndTurn, PlayerID: testPlayerA})
	if h.State.Version != before+1 {
		t.Fatalf("version = %d, want %d", h.State.Version, before+1)
	}

	h.ApplyExpectError(Action{Type: ActionEndTurn, PlayerID: testPlayerA}, ErrNotYourTurn)
}
