package catalog

// Fallback results used by the fusion resolver when no recipe matches.
const (
	WeakFallbackTemplateID   = "mon_mudling"
	LockedFallbackTemplateID = "mon_sealed_husk"
)

func monster(id, name string, atk, def int, tags ...Tag) CardTemplate {
	return CardTemplate{ID: id, Name: name, Kind: KindMonster, Atk: atk, Def: def, Tags: tags}
}

func spell(id, name, effectKey, description string, tags ...Tag) CardTemplate {
	return CardTemplate{ID: id, Name: name, Kind: KindSpell, EffectKey: effectKey, EffectDescription: description, Tags: tags}
}

func equip(id, name, effectKey string, buff int, tags ...Tag) CardTemplate {
	return CardTemplate{
		ID: id, Name: name, Kind: KindSpell, EffectKey: effectKey, EquipBuff: buff,
		EffectDescription: "Continuous equip: grants ATK/DEF to the chosen monster while it stays on the field.",
		Tags:              tags,
	}
}

func trap(id, name, effectKey, description string, tags ...Tag) CardTemplate {
	return CardTemplate{ID: id, Name: name, Kind: KindTrap, EffectKey: effectKey, EffectDescription: description, Tags: tags}
}

// Templates returns the stock card set.
func Templates() []CardTemplate {
	return []CardTemplate{
		// Base deck monsters.
		monster("mon_ember_whelp", "Ember Whelp", 1200, 900, TagDragon, TagFire),
		monster("mon_cinder_drake", "Cinder Drake", 1500, 1100, TagDragon, TagFire),
		monster("mon_pyre_wyvern", "Pyre Wyvern", 1700, 1200, TagDragon, TagFire),
		monster("mon_grave_acolyte", "Grave Acolyte", 1100, 900, TagUndead, TagDark),
		monster("mon_lich_adept", "Lich Adept", 1400, 1000, TagUndead, TagArcane, TagDark),
		monster("mon_bone_colossus", "Bone Colossus", 1600, 1400, TagUndead, TagGolem, TagEarth),
		monster("mon_storm_gryphon", "Storm Gryphon", 1500, 1000, TagBeast, TagAvian, TagWind, TagStorm),
		monster("mon_gale_stalker", "Gale Stalker", 1300, 1100, TagBeast, TagWind),
		monster("mon_tide_lurker", "Tide Lurker", 1400, 1200, TagAquatic, TagWater),
		monster("mon_reef_leviathan", "Reef Leviathan", 1800, 1500, TagAquatic, TagWater, TagAncient),
		monster("mon_iron_sentinel", "Iron Sentinel", 1300, 1800, TagGolem, TagMetal, TagMechanic),
		monster("mon_rune_golem", "Rune Golem", 1500, 1700, TagGolem, TagEarth, TagArcane),
		monster("mon_shadow_duelist", "Shadow Duelist", 1600, 1200, TagWarrior, TagShadow, TagDark),
		monster("mon_dawn_paladin", "Dawn Paladin", 1700, 1400, TagWarrior, TagHoly, TagLight),
		monster("mon_sylvan_archer", "Sylvan Archer", 1200, 1000, TagWarrior, TagPlant, TagEarth),
		monster("mon_hive_mantis", "Hive Mantis", 1250, 950, TagInsect, TagWild, TagEarth),
		monster("mon_venom_weaver", "Venom Weaver", 1350, 1050, TagInsect, TagCursed, TagDark),
		monster("mon_crystal_seer", "Crystal Seer", 1000, 1500, TagSpellcaster, TagCrystal, TagArcane, TagLight),
		monster("mon_hex_witch", "Hex Witch", 1450, 1100, TagSpellcaster, TagCursed, TagArcane),
		monster("mon_temple_guardian", "Temple Guardian", 900, 2000, TagGolem, TagAncient, TagHoly),
		monster("mon_marsh_slime", "Marsh Slime", 800, 700, TagSlime, TagWater),
		monster("mon_feral_warg", "Feral Warg", 1400, 800, TagBeast, TagWild, TagEarth),

		// Fusion results.
		monster("mon_infernal_tyrant", "Infernal Tyrant", 2400, 2000, TagDragon, TagFire, TagAncient),
		monster("mon_crypt_regent", "Crypt Regent", 2200, 1800, TagUndead, TagArcane, TagCursed),
		monster("mon_tempest_chimera", "Tempest Chimera", 2300, 1900, TagBeast, TagStorm, TagWind),
		monster("mon_seraphic_dragon", "Seraphic Dragon", 3000, 2500, TagDragon, TagLight, TagHoly),
		monster("mon_obsidian_colossus", "Obsidian Colossus", 2600, 2400, TagGolem, TagDark, TagMetal),
		monster("mon_abyssal_sovereign", "Abyssal Sovereign", 2500, 2100, TagAquatic, TagWater, TagAncient),
		monster("mon_conflagrant_hydra", "Conflagrant Hydra", 2450, 1700, TagDragon, TagFire, TagReptile),

		// Fusion fallbacks.
		monster(WeakFallbackTemplateID, "Mudling", 300, 250, TagSlime, TagEarth),
		monster(LockedFallbackTemplateID, "Sealed Husk", 0, 2100, TagGolem, TagCursed),

		// Spells: life swing.
		spell("spl_kindling_salve", "Kindling Salve", "HEAL_200", "Restore 200 LP.", TagArcane),
		spell("spl_soothing_spring", "Soothing Spring", "HEAL_500", "Restore 500 LP.", TagWater),
		spell("spl_blessed_chalice", "Blessed Chalice", "HEAL_1000", "Restore 1000 LP.", TagHoly),
		spell("spl_heartmend_prayer", "Heartmend Prayer", "HEAL_2000", "Restore 2000 LP.", TagHoly, TagLight),
		spell("spl_wellspring_of_dawn", "Wellspring of Dawn", "HEAL_5000", "Restore 5000 LP.", TagHoly, TagAncient),
		spell("spl_spark_jolt", "Spark Jolt", "DAMAGE_200", "Deal 200 damage to the opponent's LP.", TagStorm),
		spell("spl_flame_lash", "Flame Lash", "DAMAGE_500", "Deal 500 damage to the opponent's LP.", TagFire),
		spell("spl_scorching_volley", "Scorching Volley", "DAMAGE_700", "Deal 700 damage to the opponent's LP.", TagFire),
		spell("spl_sundering_bolt", "Sundering Bolt", "DAMAGE_800", "Deal 800 damage to the opponent's LP.", TagStorm),
		spell("spl_meteor_call", "Meteor Call", "DAMAGE_1000", "Deal 1000 damage to the opponent's LP.", TagFire, TagAncient),

		// Spells: board control.
		spell("spl_cataclysm", "Cataclysm", "DESTROY_ALL_MONSTERS", "Destroy every monster on the field.", TagAncient),
		spell("spl_purging_storm", "Purging Storm", "DESTROY_OPP_MONSTERS", "Destroy all opposing monsters.", TagStorm),
		spell("spl_null_field", "Null Field", "DESTROY_OPP_SPELL_TRAPS", "Destroy all opposing spells and traps.", TagArcane),
		spell("spl_rallying_horn", "Rallying Horn", "FORCE_OPP_ATTACK_POSITION", "Force opposing monsters into attack position.", TagWild),
		spell("spl_binding_radiance", "Binding Radiance", "LOCK_OPP_ATTACKS_3_TURNS", "The opponent cannot attack for 3 turns.", TagLight, TagHoly),
		spell("spl_piercing_gaze", "Piercing Gaze", "REVEAL_OPP_FACE_DOWN_MONSTERS", "Reveal the opponent's face-down monsters.", TagLight),
		spell("spl_grave_light", "Grave Light", "DESTROY_OPP_FACE_DOWN_MONSTERS", "Destroy the opponent's face-down monsters.", TagLight, TagCursed),
		spell("spl_warriors_bane", "Warrior's Bane", "DESTROY_ALL_WARRIOR_MONSTERS", "Destroy every WARRIOR monster on the field.", TagCursed),
		spell("spl_choking_smoke", "Choking Smoke", "DESTROY_ALL_INSECT_MONSTERS", "Destroy every INSECT monster on the field.", TagDark),
		spell("spl_rust_plague", "Rust Plague", "DESTROY_ALL_MACHINE_MONSTERS", "Destroy every MECHANIC monster on the field.", TagCursed),
		spell("spl_endless_drought", "Endless Drought", "DESTROY_ALL_AQUA_MONSTERS", "Destroy every aquatic monster on the field.", TagEarth),
		spell("spl_cull_the_strong", "Cull the Strong", "CRUSH_CARD_EFFECT", "Destroy opposing monsters with 1500 or more ATK.", TagCursed, TagDark),
		spell("spl_dispel_wave", "Dispel Wave", "REMOVE_ALL_MONSTER_MODIFIERS", "Remove every ATK/DEF modifier on the field.", TagArcane),
		spell("spl_dragon_snare", "Dragon Snare", "LOCK_ALL_DRAGONS", "DRAGON monsters cannot attack this turn.", TagArcane),

		// Equips.
		equip("spl_war_banner", "War Banner", "EQUIP_CONTINUOUS", 300, TagMetal),
		equip("spl_runed_blade", "Runed Blade", "EQUIP_BUFF_500", 500, TagMetal, TagArcane),

		// Traps.
		trap("trp_pitfall", "Pitfall", "DESTROY_ATTACKER", "Destroy the attacking monster.", TagEarth),
		trap("trp_acid_pit", "Acid Pit", "DESTROY_ATTACKER_UNDER_3000", "Destroy the attacker if its ATK is below 3000.", TagCursed),
		trap("trp_snap_jaw", "Snap Jaw", "DESTROY_ATTACKER_UNDER_500", "Destroy the attacker if its ATK is 500 or less.", TagMetal),
		trap("trp_binding_circle", "Binding Circle", "LOCK_ATTACKER", "Lock the attacking monster for one turn.", TagArcane),
		trap("trp_mirror_ward", "Mirror Ward", "NEGATE_ATTACK", "Negate the attack.", TagCrystal, TagLight),
	}
}

// BaseDeckTemplateIDs is the 40-card starter list used when a player has no
// saved deck. Counts respect the deck-building limits.
var BaseDeckTemplateIDs = []string{
	"mon_ember_whelp", "mon_ember_whelp", "mon_cinder_drake", "mon_cinder_drake",
	"mon_pyre_wyvern", "mon_grave_acolyte", "mon_lich_adept", "mon_lich_adept",
	"mon_bone_colossus", "mon_storm_gryphon", "mon_storm_gryphon", "mon_gale_stalker",
	"mon_tide_lurker", "mon_tide_lurker", "mon_reef_leviathan", "mon_iron_sentinel",
	"mon_rune_golem", "mon_shadow_duelist", "mon_dawn_paladin", "mon_sylvan_archer",
	"mon_hive_mantis", "mon_venom_weaver", "mon_crystal_seer", "mon_hex_witch",
	"mon_temple_guardian", "mon_marsh_slime", "mon_feral_warg", "mon_cinder_drake",
	"spl_soothing_spring", "spl_blessed_chalice", "spl_flame_lash", "spl_meteor_call",
	"spl_purging_storm", "spl_rallying_horn", "spl_piercing_gaze", "spl_war_banner",
	"spl_runed_blade", "trp_pitfall", "trp_binding_circle", "trp_mirror_ward",
}

// Default returns the stock index shared by the whole process.
func Default() *Index {
	return NewIndex(Templates())
}
