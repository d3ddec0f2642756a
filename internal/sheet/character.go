package sheet

import "strings"

// Character is a single character sheet with its owned collections.
// Fields correspond to the characters table in the db package.
type Character struct {
	// ID is a ULID assigned at creation
	ID string `json:"id"`

	Name       string `json:"name"`
	Class      string `json:"class"`
	Race       string `json:"race"`
	Background string `json:"background"`
	Level      int    `json:"level"`

	Abilities Abilities `json:"abilities"`

	// ProficiencyBonus is stored at creation and refreshed when level changes.
	// Display code recomputes it from Level.
	ProficiencyBonus int `json:"proficiency_bonus"`

	HitPoints  HitPoints `json:"hit_points"`
	ArmorClass int       `json:"armor_class"`

	// Initiative is stored at creation and refreshed when dexterity changes.
	Initiative int `json:"initiative"`
	Speed      int `json:"speed"`

	ExperiencePoints int     `json:"experience_points"`
	Notes            *string `json:"notes,omitempty"`

	// CreatedAt is the Unix timestamp when the character was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last mutation
	UpdatedAt int64 `json:"updated_at"`

	Skills       []Skill         `json:"skills"`
	SavingThrows []SavingThrow   `json:"saving_throws"`
	Features     []Feature       `json:"features"`
	Traits       []Trait         `json:"traits"`
	Inventory    []InventoryItem `json:"inventory"`
}

// HitPoints tracks current, maximum, and temporary hit points.
type HitPoints struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	Temporary int `json:"temporary"`
}

// CharacterSummary is the list-view shape of a character.
type CharacterSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	Race      string    `json:"race"`
	Level     int       `json:"level"`
	HitPoints HitPoints `json:"hit_points"`
	CreatedAt int64     `json:"created_at"`
	UpdatedAt int64     `json:"updated_at"`
}

// ToSummary converts a Character to a CharacterSummary.
func (c *Character) ToSummary() CharacterSummary {
	return CharacterSummary{
		ID:        c.ID,
		Name:      c.Name,
		Class:     c.Class,
		Race:      c.Race,
		Level:     c.Level,
		HitPoints: c.HitPoints,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Draft is the user-supplied shape of a new character.
type Draft struct {
	Name       string    `json:"name"`
	Class      string    `json:"class"`
	Race       string    `json:"race"`
	Background string    `json:"background"`
	Level      int       `json:"level"`
	Abilities  Abilities `json:"abilities"`
	MaxHP      int       `json:"hit_points_max"`
	ArmorClass int       `json:"armor_class"`
	Speed      int       `json:"speed"`
	Notes      *string   `json:"notes,omitempty"`
}

// DefaultDraft returns the creation form's starting values.
func DefaultDraft() Draft {
	return Draft{
		Level: 1,
		Abilities: Abilities{
			Strength: 10, Dexterity: 10, Constitution: 10,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
		},
		MaxHP:      10,
		ArmorClass: 10,
		Speed:      30,
	}
}

// Build turns a validated draft into a Character, computing the stored
// derived fields. ID and timestamps are left to the caller.
func (d Draft) Build() *Character {
	return &Character{
		Name:             strings.TrimSpace(d.Name),
		Class:            strings.TrimSpace(d.Class),
		Race:             strings.TrimSpace(d.Race),
		Background:       strings.TrimSpace(d.Background),
		Level:            d.Level,
		Abilities:        d.Abilities,
		ProficiencyBonus: ProficiencyBonus(d.Level),
		HitPoints:        HitPoints{Current: d.MaxHP, Max: d.MaxHP},
		ArmorClass:       d.ArmorClass,
		Initiative:       Modifier(d.Abilities.Dexterity),
		Speed:            d.Speed,
		Notes:            d.Notes,
	}
}

// Patch is a partial update of scalar character fields. Nil means unchanged.
type Patch struct {
	Name       *string `json:"name,omitempty"`
	Class      *string `json:"class,omitempty"`
	Race       *string `json:"race,omitempty"`
	Background *string `json:"background,omitempty"`
	Level      *int    `json:"level,omitempty"`

	Strength     *int `json:"strength,omitempty"`
	Dexterity    *int `json:"dexterity,omitempty"`
	Constitution *int `json:"constitution,omitempty"`
	Intelligence *int `json:"intelligence,omitempty"`
	Wisdom       *int `json:"wisdom,omitempty"`
	Charisma     *int `json:"charisma,omitempty"`

	HitPointsCurrent   *int `json:"hit_points_current,omitempty"`
	HitPointsMax       *int `json:"hit_points_max,omitempty"`
	HitPointsTemporary *int `json:"hit_points_temporary,omitempty"`

	ArmorClass       *int    `json:"armor_class,omitempty"`
	Speed            *int    `json:"speed,omitempty"`
	ExperiencePoints *int    `json:"experience_points,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply writes the patch onto c, then refreshes the stored derived fields and
// clamps hit points. Callers validate the patch first.
func (p Patch) Apply(c *Character) {
	setString(&c.Name, p.Name)
	setString(&c.Class, p.Class)
	setString(&c.Race, p.Race)
	setString(&c.Background, p.Background)
	setInt(&c.Level, p.Level)

	setInt(&c.Abilities.Strength, p.Strength)
	setInt(&c.Abilities.Dexterity, p.Dexterity)
	setInt(&c.Abilities.Constitution, p.Constitution)
	setInt(&c.Abilities.Intelligence, p.Intelligence)
	setInt(&c.Abilities.Wisdom, p.Wisdom)
	setInt(&c.Abilities.Charisma, p.Charisma)

	setInt(&c.HitPoints.Max, p.HitPointsMax)
	setInt(&c.HitPoints.Current, p.HitPointsCurrent)
	setInt(&c.HitPoints.Temporary, p.HitPointsTemporary)

	setInt(&c.ArmorClass, p.ArmorClass)
	setInt(&c.Speed, p.Speed)
	setInt(&c.ExperiencePoints, p.ExperiencePoints)
	if p.Notes != nil {
		notes := *p.Notes
		if notes == "" {
			c.Notes = nil
		} else {
			c.Notes = &notes
		}
	}

	c.ProficiencyBonus = ProficiencyBonus(c.Level)
	c.Initiative = Modifier(c.Abilities.Dexterity)
	c.HitPoints = c.HitPoints.Clamp()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
