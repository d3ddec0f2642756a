package sheet

// Skill is a trained or untrained skill owned by a character.
type Skill struct {
	ID          string  `json:"id"`
	CharacterID string  `json:"character_id"`
	Name        string  `json:"name"`
	Ability     Ability `json:"ability"`
	Proficient  bool    `json:"proficient"`
	Expertise   bool    `json:"expertise"`

	// Bonus is the legacy stored bonus column. It is never read for totals;
	// use TotalBonus.
	Bonus int `json:"-"`

	IsCustom    bool    `json:"is_custom"`
	Description *string `json:"description,omitempty"`
}

// ProficiencyState is the three-state proficiency marker shown next to a skill.
type ProficiencyState string

const (
	StateNone       ProficiencyState = "none"
	StateProficient ProficiencyState = "proficient"
	StateExpertise  ProficiencyState = "expertise"
)

// StateOf returns the marker for a (proficient, expertise) pair.
// Expertise wins even when the stored proficient flag lags behind.
func StateOf(proficient, expertise bool) ProficiencyState {
	switch {
	case expertise:
		return StateExpertise
	case proficient:
		return StateProficient
	default:
		return StateNone
	}
}

// Advance moves one step around the proficiency cycle:
// none -> proficient -> expertise -> none.
// The unreachable (false, true) pair is treated as expertise.
func Advance(proficient, expertise bool) (bool, bool) {
	switch StateOf(proficient, expertise) {
	case StateNone:
		return true, false
	case StateProficient:
		return true, true
	default:
		return false, false
	}
}

// TotalBonus computes a skill's bonus from current scores and flags.
// Expertise adds the proficiency bonus on top of proficiency, and implies it.
func TotalBonus(s Skill, abilities Abilities, proficiencyBonus int) int {
	return trainedBonus(abilities.ModifierFor(s.Ability), StateOf(s.Proficient, s.Expertise), proficiencyBonus)
}

// trainedBonus adds zero, one, or two proficiency bonuses to base.
func trainedBonus(base int, state ProficiencyState, proficiencyBonus int) int {
	switch state {
	case StateExpertise:
		return base + 2*proficiencyBonus
	case StateProficient:
		return base + proficiencyBonus
	default:
		return base
	}
}

// SavingThrow is a per-ability saving throw proficiency.
type SavingThrow struct {
	ID          string  `json:"id"`
	CharacterID string  `json:"character_id"`
	Ability     Ability `json:"ability"`
	Proficient  bool    `json:"proficient"`

	// Bonus is legacy; see SaveBonus.
	Bonus int `json:"-"`
}

// SaveBonus computes a saving throw bonus from current scores.
func SaveBonus(st SavingThrow, abilities Abilities, proficiencyBonus int) int {
	return trainedBonus(abilities.ModifierFor(st.Ability), StateOf(st.Proficient, false), proficiencyBonus)
}
