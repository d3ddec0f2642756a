package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

const skillColumns = `id, character_id, name, ability, proficient, expertise, bonus, is_custom, description`

// InsertSkill stores a skill. A second skill with the same normalized name on
// one character returns ErrUniqueConstraint.
func InsertSkill(ctx context.Context, q Querier, s *sheet.Skill) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO skills (id, character_id, name, name_norm, ability, proficient, expertise, bonus, is_custom, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CharacterID, s.Name, sheet.Normalize(s.Name), string(s.Ability),
		s.Proficient, s.Expertise, s.Bonus, s.IsCustom, toNullString(s.Description),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		if isForeignKeyError(err) {
			return errors.NewNotFound("character", s.CharacterID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// InsertSkillIfAbsent stores s unless the character already has a skill with
// the same normalized name. Reports whether a row was inserted.
func InsertSkillIfAbsent(ctx context.Context, q Querier, s *sheet.Skill) (bool, error) {
	result, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO skills (id, character_id, name, name_norm, ability, proficient, expertise, bonus, is_custom, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CharacterID, s.Name, sheet.Normalize(s.Name), string(s.Ability),
		s.Proficient, s.Expertise, s.Bonus, s.IsCustom, toNullString(s.Description),
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// GetSkill retrieves a skill by ID.
func GetSkill(ctx context.Context, q Querier, id string) (*sheet.Skill, error) {
	row := q.QueryRowContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = ?`, id)
	s, err := scanSkill(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("skill", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// ListSkills returns a character's skills ordered by name, case-insensitively.
func ListSkills(ctx context.Context, q Querier, characterID string) ([]sheet.Skill, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+skillColumns+`
		FROM skills
		WHERE character_id = ?
		ORDER BY name COLLATE NOCASE ASC, id ASC`, characterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	skills := []sheet.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		skills = append(skills, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return skills, nil
}

// UpdateSkillFlags persists a skill's proficiency pair.
func UpdateSkillFlags(ctx context.Context, q Querier, id string, proficient, expertise bool) error {
	result, err := q.ExecContext(ctx,
		`UPDATE skills SET proficient = ?, expertise = ? WHERE id = ?`,
		proficient, expertise, id)
	return requireAffected(result, err, "skill", id)
}

func scanSkill(row rowScanner) (*sheet.Skill, error) {
	var (
		s           sheet.Skill
		ability     string
		description sql.NullString
	)
	if err := row.Scan(
		&s.ID, &s.CharacterID, &s.Name, &ability,
		&s.Proficient, &s.Expertise, &s.Bonus, &s.IsCustom, &description,
	); err != nil {
		return nil, err
	}
	s.Ability = sheet.Ability(ability)
	s.Description = fromNullString(description)
	return &s, nil
}

// InsertSavingThrowIfAbsent stores st unless the character already has a
// saving throw for that ability. Reports whether a row was inserted.
func InsertSavingThrowIfAbsent(ctx context.Context, q Querier, st *sheet.SavingThrow) (bool, error) {
	result, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO saving_throws (id, character_id, ability, proficient, bonus)
		VALUES (?, ?, ?, ?, ?)`,
		st.ID, st.CharacterID, string(st.Ability), st.Proficient, st.Bonus,
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// GetSavingThrow retrieves a saving throw by ID.
func GetSavingThrow(ctx context.Context, q Querier, id string) (*sheet.SavingThrow, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, character_id, ability, proficient, bonus FROM saving_throws WHERE id = ?`, id)
	st, err := scanSavingThrow(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("saving throw", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return st, nil
}

// ListSavingThrows returns a character's saving throws in ability order.
func ListSavingThrows(ctx context.Context, q Querier, characterID string) ([]sheet.SavingThrow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, character_id, ability, proficient, bonus
		FROM saving_throws
		WHERE character_id = ?
		ORDER BY CASE ability
			WHEN 'strength' THEN 1 WHEN 'dexterity' THEN 2 WHEN 'constitution' THEN 3
			WHEN 'intelligence' THEN 4 WHEN 'wisdom' THEN 5 WHEN 'charisma' THEN 6
			ELSE 7 END`, characterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	saves := []sheet.SavingThrow{}
	for rows.Next() {
		st, err := scanSavingThrow(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		saves = append(saves, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return saves, nil
}

// UpdateSavingThrowProficient persists a saving throw's proficiency flag.
func UpdateSavingThrowProficient(ctx context.Context, q Querier, id string, proficient bool) error {
	result, err := q.ExecContext(ctx,
		`UPDATE saving_throws SET proficient = ? WHERE id = ?`, proficient, id)
	return requireAffected(result, err, "saving throw", id)
}

func scanSavingThrow(row rowScanner) (*sheet.SavingThrow, error) {
	var (
		st      sheet.SavingThrow
		ability string
	)
	if err := row.Scan(&st.ID, &st.CharacterID, &ability, &st.Proficient, &st.Bonus); err != nil {
		return nil, err
	}
	st.Ability = sheet.Ability(ability)
	return &st, nil
}
