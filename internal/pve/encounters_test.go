package pve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/game"
)

func TestEncounterDecksAreComplete(t *testing.T) {
	index := catalog.Default()
	for _, encounter := range Catalog(index) {
		require.Len(t, encounter.DeckTemplateIDs, game.DeckSize, encounter.ID)
		monsters := 0
		for _, id := range encounter.DeckTemplateIDs {
			template := index.Template(id)
			require.NotNil(t, template, "%s references unknown card %s", encounter.ID, id)
			if template.Kind == catalog.KindMonster {
				monsters++
			}
		}
		assert.GreaterOrEqual(t, monsters, game.MinMonstersInDeck, encounter.ID)
	}
}

func TestLowTierDecksStayBeatable(t *testing.T) {
	index := catalog.Default()
	for _, encounter := range Catalog(index) {
		if encounter.Tier > 1 {
			continue
		}
		for _, id := range encounter.DeckTemplateIDs {
			template := index.Template(id)
			if template.Kind == catalog.KindMonster {
				assert.LessOrEqual(t, template.Atk, 1700,
					"%s carries %s above the tier 1 cap", encounter.ID, id)
			}
		}
	}
}

func TestEncounterCatalogIsDeterministic(t *testing.T) {
	index := catalog.Default()
	first := Catalog(index)
	second := Catalog(index)
	require.Equal(t, first, second)
}

func TestUnlockChainReferencesRealEncounters(t *testing.T) {
	table := NewTable(catalog.Default())
	unlocked := 0
	for _, encounter := range table.List() {
		switch encounter.Unlock.Type {
		case UnlockNone:
			unlocked++
		case UnlockDefeatNpc:
			require.NotNil(t, table.ByID(encounter.Unlock.NpcID),
				"%s unlocks behind unknown npc %s", encounter.ID, encounter.Unlock.NpcID)
		case UnlockWinsPve:
			assert.Positive(t, encounter.Unlock.Wins, encounter.ID)
		}
	}
	assert.Positive(t, unlocked, "at least one encounter must start unlocked")
}

func TestTableLookup(t *testing.T) {
	table := NewTable(catalog.Default())
	require.NotNil(t, table.ByID("npc_cinder_novice"))
	assert.Nil(t, table.ByID("npc_missing"))
	assert.Equal(t, len(table.List()), len(Catalog(catalog.Default())))
}
