package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// HitPointsOutput contains the result of a hit point mutation.
type HitPointsOutput struct {
	ID        string          `json:"id"`
	HitPoints sheet.HitPoints `json:"hit_points"`
}

// ApplyDamage lowers current hit points by amount, never below zero.
// Temporary hit points are not consumed.
func ApplyDamage(ctx context.Context, database *sql.DB, id string, amount int) (*HitPointsOutput, error) {
	if amount < 0 {
		return nil, errors.NewInvalidRequest("damage amount cannot be negative")
	}
	return adjustHitPoints(ctx, database, id, "apply damage", func(hp sheet.HitPoints) sheet.HitPoints {
		return hp.Damage(amount)
	})
}

// ApplyHeal raises current hit points by amount, never above max.
func ApplyHeal(ctx context.Context, database *sql.DB, id string, amount int) (*HitPointsOutput, error) {
	if amount < 0 {
		return nil, errors.NewInvalidRequest("heal amount cannot be negative")
	}
	return adjustHitPoints(ctx, database, id, "heal", func(hp sheet.HitPoints) sheet.HitPoints {
		return hp.Heal(amount)
	})
}

// AdjustTempHP adds delta (which may be negative) to temporary hit points,
// never below zero.
func AdjustTempHP(ctx context.Context, database *sql.DB, id string, delta int) (*HitPointsOutput, error) {
	return adjustHitPoints(ctx, database, id, "update temporary hit points", func(hp sheet.HitPoints) sheet.HitPoints {
		return hp.AdjustTemp(delta)
	})
}

// adjustHitPoints reads, transforms, and writes hit points in one transaction.
func adjustHitPoints(ctx context.Context, database *sql.DB, id, action string, fn func(sheet.HitPoints) sheet.HitPoints) (*HitPointsOutput, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}

	var hp sheet.HitPoints
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		c, err := db.GetCharacter(ctx, tx, id)
		if err != nil {
			return err
		}
		hp = fn(c.HitPoints)
		return db.UpdateHitPoints(ctx, tx, id, hp, nowUnix())
	})
	if err != nil {
		return nil, failed(action, err)
	}
	return &HitPointsOutput{ID: id, HitPoints: hp}, nil
}
