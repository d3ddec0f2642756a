package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/db"
)

// Delete removes a character and everything it owns. Deleting an unknown ID
// is not an error; Deleted reports whether anything was removed.
func Delete(ctx context.Context, database *sql.DB, id string) (*DeleteOutput, error) {
	id, err := requireID("id", id)
	if err != nil {
		return nil, err
	}

	deleted, err := db.DeleteCharacter(ctx, database, id)
	if err != nil {
		return nil, failed("delete character", err)
	}
	return &DeleteOutput{Deleted: deleted, ID: id}, nil
}
