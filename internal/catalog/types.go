package catalog

// Tag classifies a card for fusion matching and mass effects.
type Tag string

const (
	TagDragon      Tag = "DRAGON"
	TagBeast       Tag = "BEAST"
	TagWarrior     Tag = "WARRIOR"
	TagSpellcaster Tag = "SPELLCASTER"
	TagUndead      Tag = "UNDEAD"
	TagGolem       Tag = "GOLEM"
	TagAquatic     Tag = "AQUATIC"
	TagAvian       Tag = "AVIAN"
	TagInsect      Tag = "INSECT"
	TagDemon       Tag = "DEMON"
	TagAngel       Tag = "ANGEL"
	TagPlant       Tag = "PLANT"
	TagReptile     Tag = "REPTILE"
	TagFire        Tag = "FIRE"
	TagWater       Tag = "WATER"
	TagEarth       Tag = "EARTH"
	TagWind        Tag = "WIND"
	TagLight       Tag = "LIGHT"
	TagDark        Tag = "DARK"
	TagArcane      Tag = "ARCANE"
	TagMetal       Tag = "METAL"
	TagSlime       Tag = "SLIME"
	TagCursed      Tag = "CURSED"
	TagHoly        Tag = "HOLY"
	TagShadow      Tag = "SHADOW"
	TagStorm       Tag = "STORM"
	TagCrystal     Tag = "CRYSTAL"
	TagAncient     Tag = "ANCIENT"
	TagWild        Tag = "WILD"
	TagMechanic    Tag = "MECHANIC"
)

// CardKind is the top-level card classification.
type CardKind string

const (
	KindMonster CardKind = "MONSTER"
	KindSpell   CardKind = "SPELL"
	KindTrap    CardKind = "TRAP"
)

// CardTemplate is the immutable catalog definition of a card. Instances on
// the board reference templates by ID and never copy them.
type CardTemplate struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Kind              CardKind `json:"kind"`
	Atk               int      `json:"atk,omitempty"`
	Def               int      `json:"def,omitempty"`
	Tags              []Tag    `json:"tags"`
	EffectKey         string   `json:"effectKey,omitempty"`
	EffectDescription string   `json:"effectDescription,omitempty"`
	// EquipBuff is the ATK/DEF bonus granted while an equip spell stays on
	// the field. Only meaningful for equip effect keys.
	EquipBuff int `json:"equipBuff,omitempty"`
}

// HasTag reports whether the template carries the given tag.
func (t *CardTemplate) HasTag(tag Tag) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// TagCount is a fusion requirement counting tag occurrences across materials.
type TagCount struct {
	Tag   Tag `json:"tag"`
	Count int `json:"count"`
}

// FusionRecipe describes one entry of the recipe book. Recipes are matched in
// descending Priority order; the first match wins.
type FusionRecipe struct {
	ID string `json:"id"`
	// MaterialsCount restricts the recipe to fusions with exactly this many
	// materials. Zero means any legal count (2 or 3).
	MaterialsCount int        `json:"materialsCount,omitempty"`
	RequiresAll    []Tag      `json:"requiresAll,omitempty"`
	RequiresCount  []TagCount `json:"requiresCount,omitempty"`
	RequiresAny    []Tag      `json:"requiresAny,omitempty"`
	MinAtkSum      int        `json:"minAtkSum,omitempty"`
	MinDefSum      int        `json:"minDefSum,omitempty"`
	Priority       int        `json:"priority"`
	ResultTemplate string     `json:"resultMonsterTemplateId"`
}

// Index is a read-only template lookup shared by every room.
type Index struct {
	templates map[string]*CardTemplate
}

// NewIndex builds an Index from a template list. Later duplicates win, which
// lets tests overlay variants on top of the stock set.
func NewIndex(templates []CardTemplate) *Index {
	byID := make(map[string]*CardTemplate, len(templates))
	for i := range templates {
		t := templates[i]
		byID[t.ID] = &t
	}
	return &Index{templates: byID}
}

// Template returns the template for an id, or nil when unknown.
func (ix *Index) Template(id string) *CardTemplate {
	return ix.templates[id]
}

// Has reports whether the id is a known template.
func (ix *Index) Has(id string) bool {
	_, ok := ix.templates[id]
	return ok
}

// Len returns the number of templates in the index.
func (ix *Index) Len() int {
	return len(ix.templates)
}
