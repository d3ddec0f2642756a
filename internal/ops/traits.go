package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// AddTraitInput contains parameters for the AddTrait operation.
type AddTraitInput struct {
	CharacterID string
	Name        string
	Description string
	Source      string
}

// AddTrait adds a custom racial or background trait.
func AddTrait(ctx context.Context, database *sql.DB, input AddTraitInput) (*sheet.Trait, error) {
	characterID, err := requireID("character_id", input.CharacterID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("trait name is required")
	}

	t := sheet.Trait{
		CharacterID: characterID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Source:      strings.TrimSpace(input.Source),
		IsCustom:    true,
	}
	if t.ID, err = generateULID(); err != nil {
		return nil, errors.NewInternal(err)
	}

	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.InsertTrait(ctx, tx, &t); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed("add trait", err)
	}
	return &t, nil
}

// RemoveTrait deletes a trait. Removing an unknown ID is not an error.
func RemoveTrait(ctx context.Context, database *sql.DB, traitID string) (*DeleteOutput, error) {
	return removeChild(ctx, database, "trait_id", traitID, "remove trait",
		func(ctx context.Context, q db.Querier, id string) (string, error) {
			t, err := db.GetTrait(ctx, q, id)
			if err != nil {
				return "", err
			}
			return t.CharacterID, nil
		},
		db.DeleteTrait,
	)
}
