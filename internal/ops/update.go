package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/ident"
	"github.com/offstack/offstack/internal/snippet"
)

// UpdateInput contains parameters for the Update operation. Nil fields are
// left untouched; present fields replace the stored value.
type UpdateInput struct {
	ID    string // required
	Patch snippet.UpdateInput
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	Snippet *snippet.Snippet `json:"snippet"`

	// IndexStale is true when the row was updated but the search index entry
	// could not be rewritten.
	IndexStale bool `json:"index_stale,omitempty"`
}

// Update applies a partial update to a snippet. updated_at is always
// refreshed, even for an empty patch.
func Update(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateInput) (*UpdateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidArgument("id is required")
	}
	if err := snippet.ValidateUpdate(input.Patch, cfg.SnippetMaxChars); err != nil {
		return nil, err
	}

	s, indexed, err := db.UpdateFields(ctx, database, id, input.Patch, ident.Timestamp(ident.Now()))
	if err != nil {
		return nil, err
	}
	return &UpdateOutput{Snippet: s, IndexStale: !indexed}, nil
}
