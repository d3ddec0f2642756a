package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// SeedOutput contains the result of a seeding operation.
type SeedOutput struct {
	CharacterID string `json:"character_id"`
	Inserted    int    `json:"inserted"`
}

// AddSkillInput contains parameters for the AddCustomSkill operation.
type AddSkillInput struct {
	CharacterID string
	Name        string
	Ability     string // full name or three-letter abbreviation
	Description *string
}

// SeedSkills inserts the standard skill list for a character in one
// transaction. Skills the character already has (by normalized name) are
// skipped, so seeding twice inserts nothing the second time.
func SeedSkills(ctx context.Context, database *sql.DB, characterID string) (*SeedOutput, error) {
	characterID, err := requireID("character_id", characterID)
	if err != nil {
		return nil, err
	}

	inserted := 0
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := requireCharacter(ctx, tx, characterID); err != nil {
			return err
		}
		for _, s := range sheet.SeedSkills(characterID) {
			id, err := generateULID()
			if err != nil {
				return errors.NewInternal(err)
			}
			s.ID = id
			ok, err := db.InsertSkillIfAbsent(ctx, tx, &s)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		if inserted == 0 {
			return nil
		}
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed("seed skills", err)
	}
	return &SeedOutput{CharacterID: characterID, Inserted: inserted}, nil
}

// AddCustomSkill adds an untrained custom skill. A name that matches an
// existing skill on the character after normalization is rejected.
func AddCustomSkill(ctx context.Context, database *sql.DB, input AddSkillInput) (*sheet.Skill, error) {
	characterID, err := requireID("character_id", input.CharacterID)
	if err != nil {
		return nil, err
	}
	s, err := sheet.NewCustomSkill(characterID, input.Name, input.Ability)
	if err != nil {
		return nil, err
	}
	s.Description = input.Description
	if s.ID, err = generateULID(); err != nil {
		return nil, errors.NewInternal(err)
	}

	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.InsertSkill(ctx, tx, &s); err != nil {
			if err == db.ErrUniqueConstraint {
				return errors.NewSkillAlreadyExists(characterID, s.Name)
			}
			return err
		}
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed("add skill", err)
	}
	return &s, nil
}

// ToggleSkill advances a skill one step around
// none -> proficient -> expertise -> none and persists it.
func ToggleSkill(ctx context.Context, database *sql.DB, skillID string) (*sheet.Skill, error) {
	skillID, err := requireID("skill_id", skillID)
	if err != nil {
		return nil, err
	}

	var s *sheet.Skill
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		s, err = db.GetSkill(ctx, tx, skillID)
		if err != nil {
			return err
		}
		s.Proficient, s.Expertise = sheet.Advance(s.Proficient, s.Expertise)
		if err := db.UpdateSkillFlags(ctx, tx, s.ID, s.Proficient, s.Expertise); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, s.CharacterID, nowUnix())
	})
	if err != nil {
		return nil, failed("update skill", err)
	}
	return s, nil
}
