package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumIsStableAcrossClones(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.PlaceMonster(testPlayerA, 0, "mon_ember_whelp", PositionAttack, FaceUp)
	h.PlaceSpellTrap(testPlayerB, 1, "trp_pitfall", FaceDown)

	original := Checksum(h.State)
	assert.Equal(t, original, Checksum(h.State.Clone()))
	assert.Len(t, original, 64)
}

func TestChecksumDetectsDrift(t *testing.T) {
	h := NewDuelTestHarness(t)
	before := Checksum(h.State)

	mutated := h.State.Clone()
	mutated.Players[1].LP -= 100
	assert.NotEqual(t, before, Checksum(mutated), "an LP change must alter the checksum")

	reordered := h.State.Clone()
	if len(reordered.Players[0].Deck) > 1 {
		deck := reordered.Players[0].Deck
		deck[0], deck[1] = deck[1], deck[0]
	}
	assert.NotEqual(t, before, Checksum(reordered), "deck order is gameplay-relevant")
}

func TestSerializationRoundtrip(t *testing.T) {
	h := NewDuelTestHarness(t)
	h.PlaceMonster(testPlayerA, 2, "mon_iron_sentinel", PositionDefense, FaceUp)
	h.State.PendingAttack = &PendingAttack{
		AttackerPlayerID:   testPlayerA,
		DefenderPlayerID:   testPlayerB,
		AttackerSlot:       2,
		Target:             DirectTarget(),
		DefenderMayRespond: true,
		AvailableTrapSlots: []int{0, 3},
		Window:             WindowTrapResponse,
	}

	data, err := SerializeState(h.State)
	require.NoError(t, err)

	decoded, err := DeserializeState(data)
	require.NoError(t, err)
	assert.Equal(t, Checksum(h.State), Checksum(decoded))
	assert.Equal(t, h.State.Version, decoded.Version)
	require.NotNil(t, decoded.PendingAttack)
	assert.Equal(t, []int{0, 3}, decoded.PendingAttack.AvailableTrapSlots)

	// Occupied and empty slots both survive the trip.
	require.NotNil(t, decoded.Players[0].MonsterZone[2])
	assert.Equal(t, "mon_iron_sentinel", decoded.Players[0].MonsterZone[2].TemplateID)
	assert.Nil(t, decoded.Players[0].MonsterZone[0])
	assert.Nil(t, decoded.Players[1].SpellTrapZone[4])

	require.NoError(t, ValidateSerializationRoundtrip(h.State))
}

func TestSerializationHandlesFreshDuel(t *testing.T) {
	h := NewDuelTestHarness(t)

	data, err := SerializeState(h.State)
	require.NoError(t, err, "a fresh duel has every board slot empty")

	decoded, err := DeserializeState(data)
	require.NoError(t, err)
	assert.Equal(t, Checksum(h.State), Checksum(decoded))
	assert.Nil(t, decoded.PendingAttack)
	assert.Equal(t, h.State.Players[0].Hand, decoded.Players[0].Hand)
}
