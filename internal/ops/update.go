package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// UpdateFields applies a partial update to a character's scalar fields and
// refreshes updated_at. Hit points are re-clamped and the stored proficiency
// bonus and initiative are recomputed. An empty patch only touches updated_at.
// Returns the character without its collections.
func UpdateFields(ctx context.Context, database *sql.DB, id string, patch sheet.Patch) (*sheet.Character, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}
	if fe := sheet.ValidatePatch(patch); len(fe) > 0 {
		return nil, errors.NewValidationFailed(fe)
	}

	var c *sheet.Character
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		c, err = db.GetCharacter(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(c)
		c.UpdatedAt = nowUnix()
		return db.UpdateCharacter(ctx, tx, c)
	})
	if err != nil {
		return nil, failed("update character", err)
	}
	return c, nil
}
