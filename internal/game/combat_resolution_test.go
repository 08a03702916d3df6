package game

import "testing"

// Battle math fixture: attacks are declared with no set traps on the other
// side, so every declaration resolves in the same Apply call.

func attackSlot(playerID string, attackerSlot, targetSlot int) Action {
	return Action{
		Type: ActionAttackDeclare, PlayerID: playerID,
		AttackerSlot: attackerSlot, Target: &AttackTarget{Slot: targetSlot},
	}
}

func TestAttackVsAttackHigherWins(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp) // 1700
	h.PlaceMonster(testPlayerB, 2, "mon_tide_lurker", PositionAttack, FaceUp) // 1400

	h.MustApply(attackSlot(testPlayerA, 0, 2))

	if h.State.PlayerByID(testPlayerB).MonsterZone[2] != nil {
		t.Fatal("the weaker attack-position monster must be destroyed")
	}
	h.AssertLP(testPlayerB, InitialLP-300)
	h.AssertLP(testPlayerA, InitialLP)
	if !h.State.PlayerByID(testPlayerA).MonsterZone[0].HasAttackedThisTurn {
		t.Fatal("attacker must be marked as having attacked")
	}
	h.RequireEvent(EventBattleResolved)
}

func TestAttackVsAttackTieDestroysBoth(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)
	h.PlaceMonster(testPlayerB, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)

	h.MustApply(attackSlot(testPlayerA, 0, 0))

	if h.State.PlayerByID(testPlayerA).MonsterZone[0] != nil ||
		h.State.PlayerByID(testPlayerB).MonsterZone[0] != nil {
		t.Fatal("an exact ATK tie destroys both monsters")
	}
	h.AssertLP(testPlayerA, InitialLP)
	h.AssertLP(testPlayerB, InitialLP)
}

func TestAttackIntoStrongerDefenseReflects(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)       // 1700 ATK
	h.PlaceMonster(testPlayerB, 1, "mon_temple_guardian", PositionDefense, FaceUp) // 2000 DEF

	h.MustApply(attackSlot(testPlayerA, 0, 1))

	if h.State.PlayerByID(testPlayerB).MonsterZone[1] == nil {
		t.Fatal("a defender with higher DEF survives")
	}
	if h.State.PlayerByID(testPlayerA).MonsterZone[0] == nil {
		t.Fatal("the attacker never dies attacking into DEFENSE")
	}
	h.AssertLP(testPlayerA, InitialLP-300)
	h.AssertLP(testPlayerB, InitialLP)
}

func TestAttackBreaksWeakerDefenseWithoutDamage(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)  // 1700 ATK
	h.PlaceMonster(testPlayerB, 1, "mon_marsh_slime", PositionDefense, FaceUp) // 700 DEF

	h.MustApply(attackSlot(testPlayerA, 0, 1))

	if h.State.PlayerByID(testPlayerB).MonsterZone[1] != nil {
		t.Fatal("a defender with lower DEF is destroyed")
	}
	h.AssertLP(testPlayerB, InitialLP)
}

func TestAttackFlipsFaceDownDefender(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)
	h.PlaceMonster(testPlayerB, 3, "mon_temple_guardian", PositionDefense, FaceDown)

	h.MustApply(attackSlot(testPlayerA, 0, 3))

	h.RequireEvent(EventMonsterRevealed)
	survivor := h.State.PlayerByID(testPlayerB).MonsterZone[3]
	if survivor == nil || survivor.Face != FaceUp {
		t.Fatal("a surviving face-down defender stays on the board face-up")
	}
	h.AssertLP(testPlayerA, InitialLP-300)
}

func TestDirectAttackAndVictory(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)

	h.MustApply(Action{
		Type: ActionAttackDeclare, PlayerID: testPlayerA, AttackerSlot: 0,
		Target: &AttackTarget{Direct: true},
	})
	h.AssertLP(testPlayerB, InitialLP-1700)
	if h.State.Status != StatusRunning {
		t.Fatal("duel must keep running above zero LP")
	}

	// Finish the duel from lethal range.
	h.State.PlayerByID(testPlayerB).LP = 1000
	h.State.PlayerByID(testPlayerA).MonsterZone[0].HasAttackedThisTurn = false
	h.MustApply(Action{
		Type: ActionAttackDeclare, PlayerID: testPlayerA, AttackerSlot: 0,
		Target: &AttackTarget{Direct: true},
	})

	if h.State.Status != StatusFinished || h.State.WinnerID != testPlayerA {
		t.Fatalf("duel should be won by %s, got status=%s winner=%s",
			testPlayerA, h.State.Status, h.State.WinnerID)
	}
	h.RequireEvent(EventGameFinished)
}

func TestAttackWithoutTargetResolvesDirect(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)

	// Clients may omit the target entirely; that is a direct attack.
	h.MustApply(Action{Type: ActionAttackDeclare, PlayerID: testPlayerA, AttackerSlot: 0})

	h.AssertLP(testPlayerB, InitialLP-1700)
	resolved := h.RequireEvent(EventBattleResolved)
	if direct, _ := resolved.Payload["direct"].(bool); !direct {
		t.Fatal("an omitted target must resolve as a direct attack")
	}
}

func TestLethalDamageFloorsLPAtZero(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	h.PlaceMonster(testPlayerA, 0, "mon_pyre_wyvern", PositionAttack, FaceUp) // 1700
	h.State.PlayerByID(testPlayerB).LP = 600

	h.MustApply(Action{
		Type: ActionAttackDeclare, PlayerID: testPlayerA, AttackerSlot: 0,
		Target: &AttackTarget{Direct: true},
	})

	h.AssertLP(testPlayerB, 0)
	if h.State.Status != StatusFinished || h.State.WinnerID != testPlayerA {
		t.Fatal("lethal overkill damage still ends the duel")
	}
	lpChanged := h.RequireEvent(EventLPChanged)
	if lp, _ := lpChanged.Payload["lp"].(int); lp != 0 {
		t.Fatalf("reported LP must floor at zero, got %v", lpChanged.Payload["lp"])
	}
}

func TestEquipBoostChangesBattleMath(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.SetTurn(testPlayerA, 2)
	attacker := h.PlaceMonster(testPlayerA, 0, "mon_tide_lurker", PositionAttack, FaceUp) // 1400
	attacker.AtkModifier = 500                                                            // runed blade
	h.PlaceMonster(testPlayerB, 0, "mon_pyre_wyvern", PositionAttack, FaceUp)             // 1700

	h.MustApply(attackSlot(testPlayerA, 0, 0))

	if h.State.PlayerByID(testPlayerB).MonsterZone[0] != nil {
		t.Fatal("the boosted attacker should win the battle")
	}
	h.AssertLP(testPlayerB, InitialLP-200)
}
