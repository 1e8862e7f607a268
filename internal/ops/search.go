package ops

import (
	"context"
	"database/sql"

	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/snippet"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string // empty or whitespace-only yields an empty result
	Limit int    // default: 20, max: 100; must be >= 1 when set
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items []snippet.Snippet `json:"items"`
	Query string            `json:"query"`
	Total int               `json:"total"`
}

// Search runs a ranked full-text query over titles, code, and descriptions.
// Title matches rank above description matches above code matches; ties break
// by most recent update. A query with no usable tokens returns an empty
// result rather than an error.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	if limit < 1 {
		return nil, errors.NewInvalidArgument("limit must be >= 1")
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	out := &SearchOutput{Items: []snippet.Snippet{}, Query: input.Query}

	matchExpr := db.BuildMatchExpr(input.Query)
	if matchExpr == "" {
		return out, nil
	}

	ids, err := db.SearchIDs(ctx, database, matchExpr, limit)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		s, err := db.GetByID(ctx, database, id)
		if err != nil {
			// The row went away between the index query and the lookup.
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out.Items = append(out.Items, *s)
	}
	out.Total = len(out.Items)
	return out, nil
}
