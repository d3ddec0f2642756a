package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// AddFeatureInput contains parameters for the AddFeature operation.
type AddFeatureInput struct {
	CharacterID string
	Name        string
	Description string
	Source      string // e.g. "Fighter 2", "Dwarf"
	Level       int    // level gained; default: 1

	// UsesMax > 0 makes the feature limited-use; it starts full.
	UsesMax  int
	RestType string // "short" or "long"; required when UsesMax > 0
}

// RestOutput contains the result of the Rest operation.
type RestOutput struct {
	CharacterID string         `json:"character_id"`
	Rest        sheet.RestType `json:"rest"`
	Restored    int            `json:"restored"`
}

// AddFeature adds a custom feature to a character.
func AddFeature(ctx context.Context, database *sql.DB, input AddFeatureInput) (*sheet.Feature, error) {
	characterID, err := requireID("character_id", input.CharacterID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("feature name is required")
	}
	level := input.Level
	if level == 0 {
		level = 1
	}
	if level < sheet.MinLevel || level > sheet.MaxLevel {
		return nil, errors.NewInvalidRequest("feature level must be between 1 and 20")
	}
	if input.UsesMax < 0 {
		return nil, errors.NewInvalidRequest("uses cannot be negative")
	}

	f := sheet.Feature{
		CharacterID: characterID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Source:      strings.TrimSpace(input.Source),
		Level:       level,
		IsCustom:    true,
	}
	if input.UsesMax > 0 {
		rt, ok := sheet.ParseRestType(strings.ToLower(strings.TrimSpace(input.RestType)))
		if !ok {
			return nil, errors.NewInvalidRequest("rest_type must be one of: short, long")
		}
		f.Uses = &sheet.Uses{Max: input.UsesMax, Current: input.UsesMax, Rest: rt}
	}
	if f.ID, err = generateULID(); err != nil {
		return nil, errors.NewInternal(err)
	}

	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.InsertFeature(ctx, tx, &f); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed("add feature", err)
	}
	return &f, nil
}

// UseFeature spends one use of a limited-use feature.
// Returns NO_USES_LEFT when the feature is exhausted and INVALID_REQUEST
// when the feature has no usage limit.
func UseFeature(ctx context.Context, database *sql.DB, featureID string) (*sheet.Feature, error) {
	featureID, err := requireID("feature_id", featureID)
	if err != nil {
		return nil, err
	}

	var f *sheet.Feature
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		f, err = db.GetFeature(ctx, tx, featureID)
		if err != nil {
			return err
		}
		if f.Uses == nil {
			return errors.NewInvalidRequest(f.Name + " has no usage limit")
		}
		if f.Uses.Current <= 0 {
			return errors.NewNoUsesLeft(f.Name)
		}
		f.Uses.Current--
		if err := db.UpdateFeatureUses(ctx, tx, f.ID, f.Uses.Current); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, f.CharacterID, nowUnix())
	})
	if err != nil {
		return nil, failed("use feature", err)
	}
	return f, nil
}

// Rest refills limited-use features. A short rest refills short-rest
// features; a long rest refills both kinds.
func Rest(ctx context.Context, database *sql.DB, characterID, restType string) (*RestOutput, error) {
	characterID, err := requireID("character_id", characterID)
	if err != nil {
		return nil, err
	}
	rest, ok := sheet.ParseRestType(strings.ToLower(strings.TrimSpace(restType)))
	if !ok {
		return nil, errors.NewInvalidRequest("rest must be one of: short, long")
	}

	var kinds []sheet.RestType
	for _, k := range []sheet.RestType{sheet.RestShort, sheet.RestLong} {
		if rest.Restores(k) {
			kinds = append(kinds, k)
		}
	}

	restored := 0
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := requireCharacter(ctx, tx, characterID); err != nil {
			return err
		}
		n, err := db.RestoreFeatureUses(ctx, tx, characterID, kinds)
		if err != nil {
			return err
		}
		restored = n
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed("rest", err)
	}
	return &RestOutput{CharacterID: characterID, Rest: rest, Restored: restored}, nil
}

// RemoveFeature deletes a feature. Removing an unknown ID is not an error.
func RemoveFeature(ctx context.Context, database *sql.DB, featureID string) (*DeleteOutput, error) {
	return removeChild(ctx, database, "feature_id", featureID, "remove feature",
		func(ctx context.Context, q db.Querier, id string) (string, error) {
			f, err := db.GetFeature(ctx, q, id)
			if err != nil {
				return "", err
			}
			return f.CharacterID, nil
		},
		db.DeleteFeature,
	)
}

// removeChild deletes one owned row and touches its character.
// owner resolves the owning character; NOT_FOUND from it yields Deleted=false.
func removeChild(
	ctx context.Context,
	database *sql.DB,
	field, id, action string,
	owner func(context.Context, db.Querier, string) (string, error),
	del func(context.Context, db.Querier, string) (bool, error),
) (*DeleteOutput, error) {
	id, err := requireID(field, id)
	if err != nil {
		return nil, err
	}

	deleted := false
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		characterID, err := owner(ctx, tx, id)
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if deleted, err = del(ctx, tx, id); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed(action, err)
	}
	return &DeleteOutput{Deleted: deleted, ID: id}, nil
}
