package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// DeleteOutput contains the result of any delete operation.
// Deleted is false when nothing matched the ID.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// nowUnix is the clock used for created_at/updated_at. Tests replace it.
var nowUnix = func() int64 {
	return time.Now().Unix()
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// withTx runs fn in a transaction and commits if fn returns nil.
func withTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// failed turns a storage error into a user-facing "failed to <action>" error.
// Coded errors other than INTERNAL pass through unchanged; the storage detail
// stays reachable via Cause for logging.
func failed(action string, err error) error {
	tErr, ok := err.(*errors.TomeError)
	if !ok {
		return errors.NewStorageFailure(action, err)
	}
	if tErr.Code != errors.ErrInternal {
		return err
	}
	return errors.NewStorageFailure(action, tErr.Cause())
}

// requireID trims id and rejects it when empty.
func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	return id, nil
}

// requireCharacter returns NOT_FOUND unless the character row exists.
func requireCharacter(ctx context.Context, q db.Querier, id string) error {
	ok, err := db.CharacterExists(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFound("character", id)
	}
	return nil
}
