package sheet

import (
	"strings"

	"github.com/hpungsan/tome/internal/errors"
)

// SkillTemplate is a (name, ability) pair used to seed skills.
type SkillTemplate struct {
	Name    string
	Ability Ability
}

// defaultSkills is the standard 18-skill list.
var defaultSkills = []SkillTemplate{
	{"Acrobatics", Dexterity},
	{"Animal Handling", Wisdom},
	{"Arcana", Intelligence},
	{"Athletics", Strength},
	{"Deception", Charisma},
	{"History", Intelligence},
	{"Insight", Wisdom},
	{"Intimidation", Charisma},
	{"Investigation", Intelligence},
	{"Medicine", Wisdom},
	{"Nature", Intelligence},
	{"Perception", Wisdom},
	{"Performance", Charisma},
	{"Persuasion", Charisma},
	{"Religion", Intelligence},
	{"Sleight of Hand", Dexterity},
	{"Stealth", Dexterity},
	{"Survival", Wisdom},
}

// MaxSkillNameLen bounds custom skill names.
const MaxSkillNameLen = 50

// DefaultSkills returns the standard skill list in alphabetical order.
// The returned slice is a copy.
func DefaultSkills() []SkillTemplate {
	out := make([]SkillTemplate, len(defaultSkills))
	copy(out, defaultSkills)
	return out
}

// SeedSkills builds untrained, non-custom skills for characterID from the
// default list. IDs are left empty for the caller to assign.
func SeedSkills(characterID string) []Skill {
	skills := make([]Skill, 0, len(defaultSkills))
	for _, tmpl := range defaultSkills {
		skills = append(skills, Skill{
			CharacterID: characterID,
			Name:        tmpl.Name,
			Ability:     tmpl.Ability,
		})
	}
	return skills
}

// NewCustomSkill validates user input and builds an untrained custom skill.
func NewCustomSkill(characterID, name, ability string) (Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Skill{}, errors.NewInvalidRequest("skill name is required")
	}
	if len([]rune(name)) > MaxSkillNameLen {
		return Skill{}, errors.NewInvalidRequest("skill name must be 50 characters or less")
	}
	a, ok := ParseAbility(ability)
	if !ok {
		return Skill{}, errors.NewInvalidRequest("ability must be one of: strength, dexterity, constitution, intelligence, wisdom, charisma")
	}
	return Skill{
		CharacterID: characterID,
		Name:        name,
		Ability:     a,
		IsCustom:    true,
	}, nil
}

// SeedSavingThrows builds one untrained saving throw per ability.
func SeedSavingThrows(characterID string) []SavingThrow {
	saves := make([]SavingThrow, 0, len(AllAbilities))
	for _, a := range AllAbilities {
		saves = append(saves, SavingThrow{CharacterID: characterID, Ability: a})
	}
	return saves
}
