package sheet

import "strconv"

// Modifier returns the ability modifier for a score: floor((score-10)/2).
// Division rounds toward negative infinity, so 7 yields -2.
func Modifier(score int) int {
	return floorDiv(score-10, 2)
}

// ProficiencyBonus returns the proficiency bonus for a character level:
// 2 + floor((level-1)/4). Defined for levels 1-20.
func ProficiencyBonus(level int) int {
	return 2 + floorDiv(level-1, 4)
}

// FormatModifier renders a modifier for display: "+3", "+0", "-1".
func FormatModifier(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// floorDiv divides a by a positive b, rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
