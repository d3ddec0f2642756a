package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/sheet"
)

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *sheet.Character `json:"item"` // nil when there are no characters
}

// Latest loads the most recently updated character, with its collections.
func Latest(ctx context.Context, database *sql.DB) (*LatestOutput, error) {
	page, err := List(ctx, database, ListInput{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return &LatestOutput{Item: nil}, nil
	}

	c, err := Load(ctx, database, page.Items[0].ID)
	if err != nil {
		return nil, err
	}
	return &LatestOutput{Item: c}, nil
}
