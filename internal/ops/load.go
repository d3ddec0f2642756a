package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// Load retrieves a character with every owned collection.
// Skills come back ordered by name; the rest in insertion order.
func Load(ctx context.Context, database *sql.DB, id string) (*sheet.Character, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}

	// One read-only transaction so the record and its children share a snapshot.
	tx, err := database.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, failed("load character", errors.NewInternal(err))
	}
	defer tx.Rollback() //nolint:errcheck

	c, err := loadTx(ctx, tx, id)
	if err != nil {
		return nil, failed("load character", err)
	}
	return c, nil
}

func loadTx(ctx context.Context, q db.Querier, id string) (*sheet.Character, error) {
	c, err := db.GetCharacter(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if c.Skills, err = db.ListSkills(ctx, q, id); err != nil {
		return nil, err
	}
	if c.SavingThrows, err = db.ListSavingThrows(ctx, q, id); err != nil {
		return nil, err
	}
	if c.Features, err = db.ListFeatures(ctx, q, id); err != nil {
		return nil, err
	}
	if c.Traits, err = db.ListTraits(ctx, q, id); err != nil {
		return nil, err
	}
	if c.Inventory, err = db.ListItems(ctx, q, id); err != nil {
		return nil, err
	}
	return c, nil
}
