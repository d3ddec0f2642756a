package sheet

import "strings"

// Ability names one of the six ability scores. Stored lowercase.
type Ability string

const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// AllAbilities lists the six abilities in sheet order.
var AllAbilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// abilityAbbrev maps the three-letter sheet abbreviations to abilities.
var abilityAbbrev = map[string]Ability{
	"str": Strength,
	"dex": Dexterity,
	"con": Constitution,
	"int": Intelligence,
	"wis": Wisdom,
	"cha": Charisma,
}

// Abbrev returns the upper-case three-letter label ("DEX"), or the raw name
// upper-cased for unrecognized values.
func (a Ability) Abbrev() string {
	for abbrev, ability := range abilityAbbrev {
		if ability == a {
			return strings.ToUpper(abbrev)
		}
	}
	return strings.ToUpper(string(a))
}

// ParseAbility resolves user input to an ability. Matching is case-insensitive
// and accepts either the full name or the three-letter abbreviation.
func ParseAbility(s string) (Ability, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if a, ok := abilityAbbrev[s]; ok {
		return a, true
	}
	for _, a := range AllAbilities {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Abilities holds the six raw ability scores.
type Abilities struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Score returns the score bound to the named ability. The name is matched
// case-insensitively against the six full names; ok is false otherwise.
func (a Abilities) Score(name Ability) (score int, ok bool) {
	switch Ability(strings.ToLower(string(name))) {
	case Strength:
		return a.Strength, true
	case Dexterity:
		return a.Dexterity, true
	case Constitution:
		return a.Constitution, true
	case Intelligence:
		return a.Intelligence, true
	case Wisdom:
		return a.Wisdom, true
	case Charisma:
		return a.Charisma, true
	}
	return 0, false
}

// ModifierFor returns the modifier of the named ability, or 0 when the name
// is not one of the six abilities.
func (a Abilities) ModifierFor(name Ability) int {
	score, ok := a.Score(name)
	if !ok {
		return 0
	}
	return Modifier(score)
}
