package ops

import (
	"context"
	"database/sql"

	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/snippet"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Page  int // default: 1; must be >= 1 when set
	Limit int // default: 20, max: 100; must be >= 1 when set
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []snippet.Snippet `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List returns one page of snippets, most recently updated first with id as
// the deterministic tie-break. A page past the end yields an empty Items
// list, not an error.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	page := input.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, errors.NewInvalidArgument("page must be >= 1")
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 {
		return nil, errors.NewInvalidArgument("limit must be >= 1")
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := (page - 1) * limit
	items, total, err := db.List(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []snippet.Snippet{}
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Page:    page,
			Limit:   limit,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
