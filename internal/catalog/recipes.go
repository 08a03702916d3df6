package catalog

// Recipes returns the stock fusion recipe book. Order here is irrelevant; the
// resolver scans by descending priority.
func Recipes() []FusionRecipe {
	return []FusionRecipe{
		{
			ID:             "fuse_dragon_fire",
			RequiresAll:    []Tag{TagDragon, TagFire},
			Priority:       100,
			ResultTemplate: "mon_infernal_tyrant",
		},
		{
			ID:             "fuse_undead_arcane",
			RequiresAll:    []Tag{TagUndead, TagArcane},
			Priority:       90,
			ResultTemplate: "mon_crypt_regent",
		},
		{
			ID:             "fuse_beast_wind",
			RequiresAll:    []Tag{TagBeast, TagWind},
			RequiresAny:    []Tag{TagStorm, TagArcane},
			Priority:       95,
			ResultTemplate: "mon_tempest_chimera",
		},
		{
			ID:             "fuse_dragon_holy",
			RequiresAll:    []Tag{TagDragon, TagLight, TagHoly},
			Priority:       120,
			ResultTemplate: "mon_seraphic_dragon",
		},
		{
			ID:             "fuse_golem_dark_metal",
			RequiresAll:    []Tag{TagGolem, TagDark, TagCursed},
			RequiresCount:  []TagCount{{Tag: TagMetal, Count: 1}},
			Priority:       110,
			ResultTemplate: "mon_obsidian_colossus",
		},
		{
			ID:             "fuse_triple_fire",
			MaterialsCount: 3,
			RequiresCount:  []TagCount{{Tag: TagFire, Count: 3}},
			Priority:       105,
			ResultTemplate: "mon_conflagrant_hydra",
		},
		{
			ID:             "fuse_aquatic_power",
			RequiresAll:    []Tag{TagAquatic, TagWater},
			MinAtkSum:      2500,
			Priority:       85,
			ResultTemplate: "mon_abyssal_sovereign",
		},
	}
}
