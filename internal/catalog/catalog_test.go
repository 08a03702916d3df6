package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockCatalogIsWellFormed(t *testing.T) {
	index := Default()
	require.Greater(t, index.Len(), 50)

	for _, template := range Templates() {
		tpl := index.Template(template.ID)
		require.NotNil(t, tpl, template.ID)
		assert.NotEmpty(t, tpl.Name, template.ID)
		switch tpl.Kind {
		case KindMonster:
			assert.GreaterOrEqual(t, tpl.Atk, 0, template.ID)
			assert.GreaterOrEqual(t, tpl.Def, 0, template.ID)
		case KindSpell, KindTrap:
			assert.NotEmpty(t, tpl.EffectKey, template.ID)
		default:
			t.Fatalf("template %s has unknown kind %q", template.ID, tpl.Kind)
		}
	}
}

func TestBaseDeckRespectsBuildingRules(t *testing.T) {
	index := Default()
	require.Len(t, BaseDeckTemplateIDs, 40)

	copies := map[string]int{}
	monsters := 0
	for _, id := range BaseDeckTemplateIDs {
		tpl := index.Template(id)
		require.NotNil(t, tpl, "base deck references unknown template %s", id)
		copies[id]++
		if tpl.Kind == KindMonster {
			monsters++
		}
	}
	for id, count := range copies {
		assert.LessOrEqual(t, count, 3, "too many copies of %s", id)
	}
	assert.GreaterOrEqual(t, monsters, 20)
}

func TestRecipeBookReferencesRealTemplates(t *testing.T) {
	index := Default()
	seen := map[string]bool{}
	for _, recipe := range Recipes() {
		require.NotEmpty(t, recipe.ID)
		assert.False(t, seen[recipe.ID], "duplicate recipe id %s", recipe.ID)
		seen[recipe.ID] = true

		result := index.Template(recipe.ResultTemplate)
		require.NotNil(t, result, "recipe %s result %s is unknown", recipe.ID, recipe.ResultTemplate)
		assert.Equal(t, KindMonster, result.Kind)
		assert.Positive(t, recipe.Priority)
	}
}

func TestFallbackTemplatesExist(t *testing.T) {
	index := Default()
	require.NotNil(t, index.Template(WeakFallbackTemplateID))
	require.NotNil(t, index.Template(LockedFallbackTemplateID))
}
