package sheet

import "fmt"

// AbilityView is one formatted ability block.
type AbilityView struct {
	Ability  Ability `json:"ability"`
	Abbrev   string  `json:"abbrev"`
	Score    int     `json:"score"`
	Modifier string  `json:"modifier"`
}

// SkillView is one formatted skill row.
type SkillView struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Ability  Ability          `json:"ability"`
	Abbrev   string           `json:"abbrev"`
	Total    int              `json:"total"`
	Bonus    string           `json:"bonus"`
	State    ProficiencyState `json:"state"`
	IsCustom bool             `json:"is_custom"`
}

// SaveView is one formatted saving throw row.
type SaveView struct {
	ID      string           `json:"id"`
	Ability Ability          `json:"ability"`
	Abbrev  string           `json:"abbrev"`
	Bonus   string           `json:"bonus"`
	State   ProficiencyState `json:"state"`
}

// SheetView holds every display string derived from a character.
// Nothing in it is read back from stored derived columns.
type SheetView struct {
	Abilities        []AbilityView `json:"abilities"`
	Initiative       string        `json:"initiative"`
	ProficiencyBonus string        `json:"proficiency_bonus"`
	HitPoints        string        `json:"hit_points"`
	Skills           []SkillView   `json:"skills"`
	SavingThrows     []SaveView    `json:"saving_throws"`
	CarriedWeight    float64       `json:"carried_weight"`
}

// Present computes the display values for c. Proficiency bonus and initiative
// come from the current level and dexterity, not the stored columns.
func Present(c *Character) SheetView {
	prof := ProficiencyBonus(c.Level)

	v := SheetView{
		Abilities:        make([]AbilityView, 0, len(AllAbilities)),
		Initiative:       FormatModifier(Modifier(c.Abilities.Dexterity)),
		ProficiencyBonus: FormatModifier(prof),
		HitPoints:        fmt.Sprintf("%d / %d", c.HitPoints.Current, c.HitPoints.Max),
		Skills:           make([]SkillView, 0, len(c.Skills)),
		SavingThrows:     make([]SaveView, 0, len(c.SavingThrows)),
		CarriedWeight:    TotalWeight(c.Inventory),
	}

	for _, a := range AllAbilities {
		score, _ := c.Abilities.Score(a)
		v.Abilities = append(v.Abilities, AbilityView{
			Ability:  a,
			Abbrev:   a.Abbrev(),
			Score:    score,
			Modifier: FormatModifier(Modifier(score)),
		})
	}

	for _, s := range c.Skills {
		total := TotalBonus(s, c.Abilities, prof)
		v.Skills = append(v.Skills, SkillView{
			ID:       s.ID,
			Name:     s.Name,
			Ability:  s.Ability,
			Abbrev:   s.Ability.Abbrev(),
			Total:    total,
			Bonus:    FormatModifier(total),
			State:    StateOf(s.Proficient, s.Expertise),
			IsCustom: s.IsCustom,
		})
	}

	for _, st := range c.SavingThrows {
		v.SavingThrows = append(v.SavingThrows, SaveView{
			ID:      st.ID,
			Ability: st.Ability,
			Abbrev:  st.Ability.Abbrev(),
			Bonus:   FormatModifier(SaveBonus(st, c.Abilities, prof)),
			State:   StateOf(st.Proficient, false),
		})
	}

	return v
}
