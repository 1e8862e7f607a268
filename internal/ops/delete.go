package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes a snippet. Deleting an id that does not exist is not an
// error; Deleted reports whether a row was actually removed.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidArgument("id is required")
	}

	deleted, err := db.Delete(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: deleted, ID: id}, nil
}
