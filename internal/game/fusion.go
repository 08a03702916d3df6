package game

import (
	"fmt"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
)

// FusionOutcome is what the recipe book produced for one material set.
type FusionOutcome struct {
	ResultTemplateID string
	RecipeID         string
	// Failed means no recipe matched and a fallback body was produced.
	Failed bool
}

// ResolveFusion runs the material templates through the recipe book in
// descending priority order. The first matching recipe wins; with no match
// the materials collapse into a fallback body that depends on how many
// cards were spent.
func (e *Engine) ResolveFusion(materials []*catalog.CardTemplate) FusionOutcome {
	for _, recipe := range e.recipes {
		if recipeMatches(&recipe, materials) {
			return FusionOutcome{ResultTemplateID: recipe.ResultTemplate, RecipeID: recipe.ID}
		}
	}
	if len(materials) >= 3 {
		return FusionOutcome{ResultTemplateID: catalog.LockedFallbackTemplateID, Failed: true}
	}
	return FusionOutcome{ResultTemplateID: catalog.WeakFallbackTemplateID, Failed: true}
}

func recipeMatches(recipe *catalog.FusionRecipe, materials []*catalog.CardTemplate) bool {
	if recipe.MaterialsCount != 0 && recipe.MaterialsCount != len(materials) {
		return false
	}
	tagTotals := make(map[catalog.Tag]int)
	atkSum, defSum := 0, 0
	for _, material := range materials {
		atkSum += material.Atk
		defSum += material.Def
		for _, tag := range material.Tags {
			tagTotals[tag]++
		}
	}
	for _, tag := range recipe.RequiresAll {
		if tagTotals[tag] == 0 {
			return false
		}
	}
	for _, need := range recipe.RequiresCount {
		if tagTotals[need.Tag] < need.Count {
			return false
		}
	}
	if len(recipe.RequiresAny) > 0 {
		found := false
		for _, tag := range recipe.RequiresAny {
			if tagTotals[tag] > 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if recipe.MinAtkSum > 0 && atkSum < recipe.MinAtkSum {
		return false
	}
	if recipe.MinDefSum > 0 && defSum < recipe.MinDefSum {
		return false
	}
	return true
}

// applyFusion consumes the materials, resolves the recipe book over the
// player-chosen order and places the result. A failed fusion still spends the
// materials and the once-per-turn summon budget.
func (e *Engine) applyFusion(state *GameState, action Action) []Event {
	player := state.PlayerByID(action.PlayerID)

	bySource := make(map[string]FuseMaterial, len(action.Materials))
	for _, material := range action.Materials {
		bySource[material.InstanceID] = material
	}

	materialTemplates := make([]*catalog.CardTemplate, 0, len(action.Order))
	materialTemplateIDs := make([]string, 0, len(action.Order))
	for _, instanceID := range action.Order {
		material := bySource[instanceID]
		instance := state.Instances[instanceID]
		materialTemplates = append(materialTemplates, e.Template(instance.TemplateID))
		materialTemplateIDs = append(materialTemplateIDs, instance.TemplateID)

		if material.Source == SourceHand {
			removeFromHand(player, instanceID)
			player.Graveyard = append(player.Graveyard, instanceID)
		} else {
			moveMonsterToGrave(player, material.Slot)
		}
	}

	outcome := e.ResolveFusion(materialTemplates)
	resultInstanceID := fmt.Sprintf("%s-fusion-%d", player.ID, state.Version)
	state.Instances[resultInstanceID] = &CardInstance{
		InstanceID: resultInstanceID,
		TemplateID: outcome.ResultTemplateID,
		OwnerID:    player.ID,
	}

	result := &MonsterOnBoard{
		InstanceID: resultInstanceID,
		TemplateID: outcome.ResultTemplateID,
		OwnerID:    player.ID,
		Slot:       action.ResultSlot,
		Face:       FaceUp,
		Position:   PositionAttack,
	}
	if outcome.Failed && len(action.Materials) >= 3 {
		result.Position = PositionDefense
		result.CannotAttackThisTurn = true
		result.LockedPositionUntilTurn = state.Turn.TurnNumber + 1
	}
	player.MonsterZone[action.ResultSlot] = result
	player.UsedSummonOrFuseThisTurn = true

	payload := map[string]any{
		"materialTemplateIds": materialTemplateIDs,
		"resultTemplateId":    outcome.ResultTemplateID,
		"resultInstanceId":    resultInstanceID,
		"slot":                action.ResultSlot,
		"discoveryKey":        DiscoveryKey(materialTemplateIDs),
	}
	if outcome.Failed {
		return []Event{NewEvent(EventFusionFailed, player.ID, payload)}
	}
	payload["recipeId"] = outcome.RecipeID
	return []Event{NewEvent(EventFusionResolved, player.ID, payload)}
}
