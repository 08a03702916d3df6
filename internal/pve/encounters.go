package pve

import (
	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/game"
)

// UnlockType gates an encounter behind campaign progress.
type UnlockType string

const (
	UnlockNone      UnlockType = "NONE"
	UnlockDefeatNpc UnlockType = "DEFEAT_NPC"
	UnlockWinsPve   UnlockType = "WINS_PVE"
)

// Unlock is an encounter's unlock requirement.
type Unlock struct {
	Type  UnlockType `json:"type"`
	NpcID string     `json:"npcId,omitempty"`
	Wins  int        `json:"wins,omitempty"`
}

// RewardDrop is one card the progression system may grant after a win. The
// duel engine itself never touches rewards.
type RewardDrop struct {
	TemplateID string  `json:"templateId"`
	Chance     float64 `json:"chance"`
}

// Encounter is one campaign opponent: an identity, a bot tier and a fixed
// 40-card deck list.
type Encounter struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Tier            int          `json:"tier"`
	RewardGold      int          `json:"rewardGold"`
	RewardDrops     []RewardDrop `json:"rewardDrops"`
	DeckTemplateIDs []string     `json:"deckTemplateIds"`
	Unlock          Unlock       `json:"unlock"`
}

type encounterSeed struct {
	id         string
	name       string
	tier       int
	rewardGold int
	drops      []RewardDrop
	// signature cards lead the deck; the rest is filled from the tier pool.
	signature []string
	unlock    Unlock
}

var seeds = []encounterSeed{
	{
		id: "npc_cinder_novice", name: "Cinder Novice", tier: 1, rewardGold: 150,
		signature: []string{
			"mon_ember_whelp", "mon_ember_whelp", "mon_ember_whelp",
			"mon_cinder_drake", "mon_cinder_drake", "spl_flame_lash",
		},
		drops:  []RewardDrop{{TemplateID: "mon_cinder_drake", Chance: 0.4}},
		unlock: Unlock{Type: UnlockNone},
	},
	{
		id: "npc_grave_warden", name: "Grave Warden", tier: 2, rewardGold: 250,
		signature: []string{
			"mon_grave_acolyte", "mon_grave_acolyte", "mon_lich_adept",
			"mon_lich_adept", "mon_bone_colossus", "trp_pitfall", "trp_pitfall",
		},
		drops:  []RewardDrop{{TemplateID: "mon_bone_colossus", Chance: 0.35}, {TemplateID: "trp_pitfall", Chance: 0.25}},
		unlock: Unlock{Type: UnlockDefeatNpc, NpcID: "npc_cinder_novice"},
	},
	{
		id: "npc_tidecaller", name: "Tidecaller", tier: 2, rewardGold: 250,
		signature: []string{
			"mon_tide_lurker", "mon_tide_lurker", "mon_tide_lurker",
			"mon_marsh_slime", "mon_reef_leviathan", "spl_soothing_spring",
		},
		drops:  []RewardDrop{{TemplateID: "mon_reef_leviathan", Chance: 0.3}},
		unlock: Unlock{Type: UnlockDefeatNpc, NpcID: "npc_cinder_novice"},
	},
	{
		id: "npc_iron_architect", name: "Iron Architect", tier: 3, rewardGold: 400,
		signature: []string{
			"mon_iron_sentinel", "mon_iron_sentinel", "mon_rune_golem",
			"mon_rune_golem", "mon_temple_guardian", "mon_temple_guardian",
			"spl_war_banner", "trp_binding_circle",
		},
		drops:  []RewardDrop{{TemplateID: "spl_war_banner", Chance: 0.35}, {TemplateID: "mon_rune_golem", Chance: 0.3}},
		unlock: Unlock{Type: UnlockWinsPve, Wins: 3},
	},
	{
		id: "npc_radiant_arbiter", name: "Radiant Arbiter", tier: 4, rewardGold: 600,
		signature: []string{
			"mon_dawn_paladin", "mon_dawn_paladin", "mon_crystal_seer",
			"spl_blessed_chalice", "spl_binding_radiance", "trp_mirror_ward",
			"trp_mirror_ward",
		},
		drops:  []RewardDrop{{TemplateID: "trp_mirror_ward", Chance: 0.3}, {TemplateID: "spl_binding_radiance", Chance: 0.2}},
		unlock: Unlock{Type: UnlockDefeatNpc, NpcID: "npc_iron_architect"},
	},
	{
		id: "npc_abyssal_emperor", name: "Abyssal Emperor", tier: 5, rewardGold: 1000,
		signature: []string{
			"mon_reef_leviathan", "mon_reef_leviathan", "mon_reef_leviathan",
			"mon_shadow_duelist", "mon_hex_witch", "spl_purging_storm",
			"spl_meteor_call", "trp_acid_pit", "trp_acid_pit",
		},
		drops:  []RewardDrop{{TemplateID: "spl_purging_storm", Chance: 0.25}, {TemplateID: "spl_meteor_call", Chance: 0.2}},
		unlock: Unlock{Type: UnlockDefeatNpc, NpcID: "npc_radiant_arbiter"},
	},
}

// tierPool is the monster pool a tier's deck filler draws from. Low tiers are
// capped by ATK so early opponents stay beatable; high tiers floor it instead.
func tierPool(index *catalog.Index, tier int) []string {
	maxAtk := 5000
	minAtk := 0
	switch {
	case tier <= 1:
		maxAtk = 1700
	case tier == 2:
		maxAtk = 2100
	case tier == 3:
		maxAtk = 2500
	default:
		minAtk = 1500
	}

	var pool []string
	for _, template := range catalog.Templates() {
		if template.Kind != catalog.KindMonster {
			continue
		}
		if template.Atk >= minAtk && template.Atk <= maxAtk {
			pool = append(pool, template.ID)
		}
	}
	if len(pool) == 0 {
		for _, id := range catalog.BaseDeckTemplateIDs {
			if template := index.Template(id); template != nil && template.Kind == catalog.KindMonster {
				pool = append(pool, id)
			}
		}
	}
	return pool
}

func buildDeck(index *catalog.Index, seed encounterSeed) []string {
	deck := make([]string, 0, game.DeckSize)
	for _, id := range seed.signature {
		if index.Has(id) && len(deck) < game.DeckSize {
			deck = append(deck, id)
		}
	}
	pool := tierPool(index, seed.tier)
	for i := 0; len(deck) < game.DeckSize && len(pool) > 0; i++ {
		deck = append(deck, pool[i%len(pool)])
	}
	return deck
}

// Catalog builds the full encounter table over the template index.
func Catalog(index *catalog.Index) []Encounter {
	encounters := make([]Encounter, 0, len(seeds))
	for _, seed := range seeds {
		encounters = append(encounters, Encounter{
			ID:              seed.id,
			Name:            seed.name,
			Tier:            seed.tier,
			RewardGold:      seed.rewardGold,
			RewardDrops:     seed.drops,
			DeckTemplateIDs: buildDeck(index, seed),
			Unlock:          seed.unlock,
		})
	}
	return encounters
}

// Table is an indexed encounter catalog.
type Table struct {
	encounters []Encounter
	byID       map[string]*Encounter
}

// NewTable builds the encounter table once at startup.
func NewTable(index *catalog.Index) *Table {
	encounters := Catalog(index)
	byID := make(map[string]*Encounter, len(encounters))
	for i := range encounters {
		byID[encounters[i].ID] = &encounters[i]
	}
	return &Table{encounters: encounters, byID: byID}
}

// List returns every encounter in campaign order.
func (t *Table) List() []Encounter {
	return t.encounters
}

// ByID resolves an encounter id, or nil.
func (t *Table) ByID(id string) *Encounter {
	return t.byID[id]
}
