package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.TomeError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const characterColumns = `
	id, name, class, level, race, background,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	proficiency_bonus, hit_points_current, hit_points_max, hit_points_temporary,
	armor_class, initiative, speed, experience_points, notes,
	created_at, updated_at`

// ListOrder is the one ordering every character listing uses.
const ListOrder = "updated_at DESC, created_at DESC, id DESC"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// InsertCharacter stores the scalar fields of a new character.
// Owned collections are stored separately.
func InsertCharacter(ctx context.Context, q Querier, c *sheet.Character) error {
	query := `INSERT INTO characters (` + characterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := q.ExecContext(ctx, query,
		c.ID, c.Name, c.Class, c.Level, c.Race, c.Background,
		c.Abilities.Strength, c.Abilities.Dexterity, c.Abilities.Constitution,
		c.Abilities.Intelligence, c.Abilities.Wisdom, c.Abilities.Charisma,
		c.ProficiencyBonus, c.HitPoints.Current, c.HitPoints.Max, c.HitPoints.Temporary,
		c.ArmorClass, c.Initiative, c.Speed, c.ExperiencePoints, toNullString(c.Notes),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetCharacter retrieves the scalar fields of a character by ID.
// Collections are left nil.
func GetCharacter(ctx context.Context, q Querier, id string) (*sheet.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = ?`

	c, err := scanCharacter(q.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("character", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListCharacters returns one page of summaries in ListOrder plus the total count.
func ListCharacters(ctx context.Context, q Querier, limit, offset int) ([]sheet.CharacterSummary, int, error) {
	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, name, class, race, level,
			hit_points_current, hit_points_max, hit_points_temporary,
			created_at, updated_at
		FROM characters
		ORDER BY ` + ListOrder + `
		LIMIT ? OFFSET ?
	`
	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []sheet.CharacterSummary
	for rows.Next() {
		var s sheet.CharacterSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Class, &s.Race, &s.Level,
			&s.HitPoints.Current, &s.HitPoints.Max, &s.HitPoints.Temporary,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// UpdateCharacter writes every scalar field of c, including UpdatedAt.
// ID and CreatedAt are never changed.
func UpdateCharacter(ctx context.Context, q Querier, c *sheet.Character) error {
	query := `
		UPDATE characters
		SET name = ?, class = ?, level = ?, race = ?, background = ?,
			strength = ?, dexterity = ?, constitution = ?,
			intelligence = ?, wisdom = ?, charisma = ?,
			proficiency_bonus = ?, hit_points_current = ?, hit_points_max = ?,
			hit_points_temporary = ?, armor_class = ?, initiative = ?, speed = ?,
			experience_points = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		c.Name, c.Class, c.Level, c.Race, c.Background,
		c.Abilities.Strength, c.Abilities.Dexterity, c.Abilities.Constitution,
		c.Abilities.Intelligence, c.Abilities.Wisdom, c.Abilities.Charisma,
		c.ProficiencyBonus, c.HitPoints.Current, c.HitPoints.Max,
		c.HitPoints.Temporary, c.ArmorClass, c.Initiative, c.Speed,
		c.ExperiencePoints, toNullString(c.Notes), c.UpdatedAt,
		c.ID,
	)
	return requireAffected(result, err, "character", c.ID)
}

// UpdateHitPoints writes only the hit point columns and updated_at.
func UpdateHitPoints(ctx context.Context, q Querier, id string, hp sheet.HitPoints, now int64) error {
	query := `
		UPDATE characters
		SET hit_points_current = ?, hit_points_max = ?, hit_points_temporary = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query, hp.Current, hp.Max, hp.Temporary, now, id)
	return requireAffected(result, err, "character", id)
}

// TouchCharacter sets updated_at after a change to an owned collection.
func TouchCharacter(ctx context.Context, q Querier, id string, now int64) error {
	result, err := q.ExecContext(ctx, `UPDATE characters SET updated_at = ? WHERE id = ?`, now, id)
	return requireAffected(result, err, "character", id)
}

// DeleteCharacter removes a character; owned rows go with it via ON DELETE CASCADE.
// Returns false when no row matched.
func DeleteCharacter(ctx context.Context, q Querier, id string) (bool, error) {
	return deleteByID(ctx, q, "characters", id)
}

// CharacterExists reports whether a character row with id exists.
func CharacterExists(ctx context.Context, q Querier, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM characters WHERE id = ?`, id).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// scanCharacter scans a single row into a Character.
func scanCharacter(row rowScanner) (*sheet.Character, error) {
	var (
		c     sheet.Character
		notes sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Class, &c.Level, &c.Race, &c.Background,
		&c.Abilities.Strength, &c.Abilities.Dexterity, &c.Abilities.Constitution,
		&c.Abilities.Intelligence, &c.Abilities.Wisdom, &c.Abilities.Charisma,
		&c.ProficiencyBonus, &c.HitPoints.Current, &c.HitPoints.Max, &c.HitPoints.Temporary,
		&c.ArmorClass, &c.Initiative, &c.Speed, &c.ExperiencePoints, &notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Notes = fromNullString(notes)
	return &c, nil
}

// deleteByID removes one row from table. table is always a constant from this package.
func deleteByID(ctx context.Context, q Querier, table, id string) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// requireAffected converts an Exec result into NOT_FOUND when no row matched.
func requireAffected(result sql.Result, err error, kind, id string) error {
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(kind, id)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks if the error is a SQLite FOREIGN KEY constraint violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
