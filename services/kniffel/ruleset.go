// Package kniffel implements dice scoring, ruleset resolution and the pure
// game state machine for Kniffel rooms.
package kniffel

// Ruleset presets selectable at room creation.
const (
	PresetClassic   = "classic"
	PresetTriple    = "triple"
	PresetDraft     = "draft"
	PresetDuel      = "duel"
	PresetDaily     = "daily"
	PresetLadder    = "ladder"
	PresetRoguelite = "roguelite"
)

type CategoryRandomizer struct {
	Enabled            bool     `json:"enabled"`
	DisabledCategories []string `json:"disabledCategories"`
	SpecialCategories  []string `json:"specialCategories"`
}

type SpeedMode struct {
	Enabled   bool `json:"enabled"`
	AutoScore bool `json:"autoScore"`
}

// Ruleset is the fully resolved rule configuration for one game.
type Ruleset struct {
	Preset             string             `json:"preset"`
	AllowScratch       bool               `json:"allowScratch"`
	StrictStraights    bool               `json:"strictStraights"`
	FullHouseUsesSum   bool               `json:"fullHouseUsesSum"`
	MaxRolls           int                `json:"maxRolls"`
	BonusThreshold     int                `json:"bonusThreshold"`
	CategoryRandomizer CategoryRandomizer `json:"categoryRandomizer"`
	SpeedMode          SpeedMode          `json:"speedMode"`
}

// RulesetOverrides carries partial overrides on top of a preset. Nil fields
// keep the preset value; the nested randomizer and speed-mode blocks merge
// field by field.
type RulesetOverrides struct {
	AllowScratch       *bool                        `json:"allowScratch,omitempty"`
	StrictStraights    *bool                        `json:"strictStraights,omitempty"`
	FullHouseUsesSum   *bool                        `json:"fullHouseUsesSum,omitempty"`
	MaxRolls           *int                         `json:"maxRolls,omitempty"`
	BonusThreshold     *int                         `json:"bonusThreshold,omitempty"`
	CategoryRandomizer *CategoryRandomizerOverrides `json:"categoryRandomizer,omitempty"`
	SpeedMode          *SpeedModeOverrides          `json:"speedMode,omitempty"`
}

type CategoryRandomizerOverrides struct {
	Enabled            *bool    `json:"enabled,omitempty"`
	DisabledCategories []string `json:"disabledCategories,omitempty"`
	SpecialCategories  []string `json:"specialCategories,omitempty"`
}

type SpeedModeOverrides struct {
	Enabled   *bool `json:"enabled,omitempty"`
	AutoScore *bool `json:"autoScore,omitempty"`
}

func classicRuleset() Ruleset {
	return Ruleset{
		Preset:           PresetClassic,
		AllowScratch:     true,
		StrictStraights:  false,
		FullHouseUsesSum: false,
		MaxRolls:         3,
		BonusThreshold:   63,
	}
}

var presetRulesets = map[string]func() Ruleset{
	PresetClassic:   classicRuleset,
	PresetTriple:    func() Ruleset { r := classicRuleset(); r.Preset = PresetTriple; return r },
	PresetDraft:     func() Ruleset { r := classicRuleset(); r.Preset = PresetDraft; return r },
	PresetDuel:      func() Ruleset { r := classicRuleset(); r.Preset = PresetDuel; return r },
	PresetDaily:     func() Ruleset { r := classicRuleset(); r.Preset = PresetDaily; return r },
	PresetLadder:    func() Ruleset { r := classicRuleset(); r.Preset = PresetLadder; return r },
	PresetRoguelite: func() Ruleset { r := classicRuleset(); r.Preset = PresetRoguelite; return r },
}

// ResolveRuleset looks up the preset (falling back to classic for unknown
// names) and deep-merges the overrides on top.
func ResolveRuleset(preset string, overrides *RulesetOverrides) Ruleset {
	build, ok := presetRulesets[preset]
	if !ok {
		build = classicRuleset
	}
	base := build()
	if overrides == nil {
		return base
	}

	if overrides.AllowScratch != nil {
		base.AllowScratch = *overrides.AllowScratch
	}
	if overrides.StrictStraights != nil {
		base.StrictStraights = *overrides.StrictStraights
	}
	if overrides.FullHouseUsesSum != nil {
		base.FullHouseUsesSum = *overrides.FullHouseUsesSum
	}
	if overrides.MaxRolls != nil && *overrides.MaxRolls > 0 {
		base.MaxRolls = *overrides.MaxRolls
	}
	if overrides.BonusThreshold != nil && *overrides.BonusThreshold > 0 {
		base.BonusThreshold = *overrides.BonusThreshold
	}
	if cr := overrides.CategoryRandomizer; cr != nil {
		if cr.Enabled != nil {
			base.CategoryRandomizer.Enabled = *cr.Enabled
		}
		if cr.DisabledCategories != nil {
			base.CategoryRandomizer.DisabledCategories = append([]string(nil), cr.DisabledCategories...)
		}
		if cr.SpecialCategories != nil {
			base.CategoryRandomizer.SpecialCategories = append([]string(nil), cr.SpecialCategories...)
		}
	}
	if sm := overrides.SpeedMode; sm != nil {
		if sm.Enabled != nil {
			base.SpeedMode.Enabled = *sm.Enabled
		}
		if sm.AutoScore != nil {
			base.SpeedMode.AutoScore = *sm.AutoScore
		}
	}
	return base
}

// ActiveCategories returns the scoreable category set for a ruleset: the 13
// standard categories minus disabled ones, plus any enabled special
// categories the randomizer adds.
func (r Ruleset) ActiveCategories() []string {
	disabled := make(map[string]bool)
	if r.CategoryRandomizer.Enabled {
		for _, c := range r.CategoryRandomizer.DisabledCategories {
			disabled[c] = true
		}
	}

	var categories []string
	for _, c := range StandardCategories {
		if !disabled[c] {
			categories = append(categories, c)
		}
	}
	if r.CategoryRandomizer.Enabled {
		for _, c := range r.CategoryRandomizer.SpecialCategories {
			if IsSpecialCategory(c) && !disabled[c] {
				categories = append(categories, c)
			}
		}
	}
	return categories
}
