package ops

import (
	"context"
	"database/sql"

	"github.com/offstack/offstack/internal/db"
)

// ReindexOutput contains the result of the Reindex operation.
type ReindexOutput struct {
	Indexed    int `json:"indexed"`
	StaleFixed int `json:"stale_fixed"`
}

// Reindex rebuilds the full-text index from the snippets table, recreating it
// if it was lost, and clears all stale flags.
func Reindex(ctx context.Context, database *sql.DB) (*ReindexOutput, error) {
	stale, err := db.StaleCount(ctx, database)
	if err != nil {
		return nil, err
	}
	indexed, err := db.ReindexAll(ctx, database)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Indexed: indexed, StaleFixed: stale}, nil
}
