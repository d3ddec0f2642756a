package sheet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/tome/internal/errors"
)

// Bounds shared by the creation form and later edits.
const (
	MaxTextLen = 50
	MinLevel   = 1
	MaxLevel   = 20
	MinScore   = 1
	MaxScore   = 20
)

// ValidateDraft checks every field of a new character and returns one entry
// per rejected field, in form order. An empty result means the draft is valid.
func ValidateDraft(d Draft) []errors.FieldError {
	var fe []errors.FieldError

	fe = appendText(fe, "name", "Character name", d.Name)
	fe = appendText(fe, "class", "Class", d.Class)
	fe = appendText(fe, "race", "Race", d.Race)
	fe = appendText(fe, "background", "Background", d.Background)
	fe = appendRange(fe, "level", "Level", d.Level, MinLevel, MaxLevel)

	for _, a := range AllAbilities {
		score, _ := d.Abilities.Score(a)
		fe = appendRange(fe, string(a), abilityLabel(a), score, MinScore, MaxScore)
	}

	fe = appendMin(fe, "hit_points_max", "Max HP", d.MaxHP, 1)
	fe = appendMin(fe, "armor_class", "Armor Class", d.ArmorClass, 1)
	fe = appendMin(fe, "speed", "Speed", d.Speed, 0)

	return fe
}

// ValidatePatch checks the fields a patch sets. Hit points are not range
// checked against each other here; Patch.Apply clamps them.
func ValidatePatch(p Patch) []errors.FieldError {
	var fe []errors.FieldError

	if p.Name != nil {
		fe = appendText(fe, "name", "Character name", *p.Name)
	}
	if p.Class != nil {
		fe = appendText(fe, "class", "Class", *p.Class)
	}
	if p.Race != nil {
		fe = appendText(fe, "race", "Race", *p.Race)
	}
	if p.Background != nil {
		fe = appendText(fe, "background", "Background", *p.Background)
	}
	if p.Level != nil {
		fe = appendRange(fe, "level", "Level", *p.Level, MinLevel, MaxLevel)
	}

	scores := map[Ability]*int{
		Strength: p.Strength, Dexterity: p.Dexterity, Constitution: p.Constitution,
		Intelligence: p.Intelligence, Wisdom: p.Wisdom, Charisma: p.Charisma,
	}
	for _, a := range AllAbilities {
		if v := scores[a]; v != nil {
			fe = appendRange(fe, string(a), abilityLabel(a), *v, MinScore, MaxScore)
		}
	}

	if p.HitPointsMax != nil {
		fe = appendMin(fe, "hit_points_max", "Max HP", *p.HitPointsMax, 1)
	}
	if p.ArmorClass != nil {
		fe = appendMin(fe, "armor_class", "Armor Class", *p.ArmorClass, 1)
	}
	if p.Speed != nil {
		fe = appendMin(fe, "speed", "Speed", *p.Speed, 0)
	}
	if p.ExperiencePoints != nil {
		fe = appendMin(fe, "experience_points", "Experience points", *p.ExperiencePoints, 0)
	}

	return fe
}

func appendText(fe []errors.FieldError, field, label, value string) []errors.FieldError {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return append(fe, errors.FieldError{Field: field, Message: label + " is required"})
	case utf8.RuneCountInString(value) > MaxTextLen:
		return append(fe, errors.FieldError{Field: field, Message: fmt.Sprintf("%s must be %d characters or less", label, MaxTextLen)})
	}
	return fe
}

func appendRange(fe []errors.FieldError, field, label string, v, lo, hi int) []errors.FieldError {
	switch {
	case v < lo:
		return append(fe, errors.FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d", label, lo)})
	case v > hi:
		return append(fe, errors.FieldError{Field: field, Message: fmt.Sprintf("%s cannot exceed %d", label, hi)})
	}
	return fe
}

func appendMin(fe []errors.FieldError, field, label string, v, lo int) []errors.FieldError {
	if v < lo {
		if lo == 0 {
			return append(fe, errors.FieldError{Field: field, Message: label + " cannot be negative"})
		}
		return append(fe, errors.FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d", label, lo)})
	}
	return fe
}

func abilityLabel(a Ability) string {
	s := string(a)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
