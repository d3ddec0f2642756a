package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// Create validates a draft and stores a new character. Skills are not seeded;
// call SeedSkills afterwards if wanted.
func Create(ctx context.Context, database *sql.DB, draft sheet.Draft) (*sheet.Character, error) {
	if fe := sheet.ValidateDraft(draft); len(fe) > 0 {
		return nil, errors.NewValidationFailed(fe)
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	c := draft.Build()
	c.ID = id
	c.CreatedAt = nowUnix()
	c.UpdatedAt = c.CreatedAt
	c.Skills = []sheet.Skill{}
	c.SavingThrows = []sheet.SavingThrow{}
	c.Features = []sheet.Feature{}
	c.Traits = []sheet.Trait{}
	c.Inventory = []sheet.InventoryItem{}

	if err := db.InsertCharacter(ctx, database, c); err != nil {
		return nil, failed("create character", err)
	}
	return c, nil
}
