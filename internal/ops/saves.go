package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// SeedSavingThrows inserts one untrained saving throw per ability.
// Abilities that already have a row are skipped.
func SeedSavingThrows(ctx context.Context, database *sql.DB, characterID string) (*SeedOutput, error) {
	characterID, err := requireID("character_id", characterID)
	if err != nil {
		return nil, err
	}

	inserted := 0
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := requireCharacter(ctx, tx, characterID); err != nil {
			return err
		}
		for _, st := range sheet.SeedSavingThrows(characterID) {
			id, err := generateULID()
			if err != nil {
				return errors.NewInternal(err)
			}
			st.ID = id
			ok, err := db.InsertSavingThrowIfAbsent(ctx, tx, &st)
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
		return nil, failed("seed saving throws", err)
	}
	return &SeedOutput{CharacterID: characterID, Inserted: inserted}, nil
}

// ToggleSavingThrow flips a saving throw's proficiency.
func ToggleSavingThrow(ctx context.Context, database *sql.DB, id string) (*sheet.SavingThrow, error) {
	id, err := requireID("saving_throw_id", id)
	if err != nil {
		return nil, err
	}

	var st *sheet.SavingThrow
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		st, err = db.GetSavingThrow(ctx, tx, id)
		if err != nil {
			return err
		}
		st.Proficient = !st.Proficient
		if err := db.UpdateSavingThrowProficient(ctx, tx, st.ID, st.Proficient); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, st.CharacterID, nowUnix())
	})
	if err != nil {
		return nil, failed("update saving throw", err)
	}
	return st, nil
}
