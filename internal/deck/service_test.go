package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
)

func newTestService(t *testing.T) *Service {
	return NewService(catalog.Default(), zaptest.NewLogger(t))
}

func validList() []string {
	return append([]string(nil), catalog.BaseDeckTemplateIDs...)
}

func TestValidateDeckRules(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.Validate(validList()))

	// Wrong size.
	assert.Error(t, s.Validate(validList()[:39]))

	// Unknown card.
	broken := validList()
	broken[0] = "no_such_card"
	assert.Error(t, s.Validate(broken))

	// Too many copies.
	overloaded := validList()
	for i := 0; i < 4; i++ {
		overloaded[i] = "mon_ember_whelp"
	}
	assert.Error(t, s.Validate(overloaded))

	// Not enough monsters.
	spellHeavy := validList()
	for i := range spellHeavy {
		if i%2 == 0 {
			spellHeavy[i] = "spl_flame_lash"
		}
	}
	assert.Error(t, s.Validate(spellHeavy))
}

func TestSaveListDeleteLifecycle(t *testing.T) {
	s := newTestService(t)

	first, err := s.Save("p1", "", "Dragons", validList())
	require.NoError(t, err)
	assert.True(t, first.Active, "the first deck becomes active")

	second, err := s.Save("p1", "", "Control", validList())
	require.NoError(t, err)
	assert.False(t, second.Active)

	assert.Len(t, s.List("p1"), 2)
	assert.Empty(t, s.List("p2"), "decks are per player")

	// Overwrite by id keeps the same deck.
	renamed, err := s.Save("p1", first.ID, "Dragons v2", validList())
	require.NoError(t, err)
	assert.Equal(t, first.ID, renamed.ID)
	assert.Equal(t, "Dragons v2", renamed.Name)
	assert.Len(t, s.List("p1"), 2)

	require.NoError(t, s.Delete("p1", second.ID))
	assert.Len(t, s.List("p1"), 1)
	assert.ErrorIs(t, s.Delete("p1", second.ID), ErrDeckNotFound)
}

func TestSetActiveAndActiveList(t *testing.T) {
	s := newTestService(t)

	// No saved deck: the starter list stands in.
	assert.Equal(t, catalog.BaseDeckTemplateIDs, s.ActiveList("p1"))

	first, err := s.Save("p1", "", "A", validList())
	require.NoError(t, err)
	custom := validList()
	custom[len(custom)-1] = "trp_acid_pit"
	second, err := s.Save("p1", "", "B", custom)
	require.NoError(t, err)

	require.NoError(t, s.SetActive("p1", second.ID))
	assert.Equal(t, custom, s.ActiveList("p1"))

	require.NoError(t, s.SetActive("p1", first.ID))
	assert.NotEqual(t, custom, s.ActiveList("p1"))

	assert.ErrorIs(t, s.SetActive("p1", "missing"), ErrDeckNotFound)
}
