package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/snippet"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID string // required
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	Snippet *snippet.Snippet `json:"snippet"`
}

// Get retrieves a snippet by id.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*GetOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidArgument("id is required")
	}

	s, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Snippet: s}, nil
}
