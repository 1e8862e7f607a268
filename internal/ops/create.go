package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/ident"
	"github.com/offstack/offstack/internal/snippet"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title       string   // required
	Code        string   // required key, may be empty text
	Language    string   // required
	Description *string  // optional
	Tags        []string // optional
	FolderID    *string  // optional
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	Snippet *snippet.Snippet `json:"snippet"`

	// IndexStale is true when the snippet was stored but its search index
	// entry could not be written. The snippet is retrievable by id and list;
	// a reindex pass will make it searchable.
	IndexStale bool `json:"index_stale,omitempty"`
}

// Create stores a new snippet. The id and both timestamps are assigned here,
// never taken from the caller.
func Create(ctx context.Context, database *sql.DB, cfg *config.Config, input CreateInput) (*CreateOutput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Language = strings.TrimSpace(input.Language)

	if err := snippet.ValidateCreate(snippet.CreateInput{
		Title:       input.Title,
		Code:        input.Code,
		Language:    input.Language,
		Description: input.Description,
		Tags:        input.Tags,
		FolderID:    input.FolderID,
	}, cfg.SnippetMaxChars); err != nil {
		return nil, err
	}

	now := ident.Timestamp(ident.Now())
	s := &snippet.Snippet{
		ID:          ident.New(),
		Title:       input.Title,
		Code:        input.Code,
		Language:    input.Language,
		Description: input.Description,
		Tags:        input.Tags,
		FolderID:    input.FolderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	indexed, err := db.Insert(ctx, database, s)
	if err != nil {
		return nil, err
	}

	return &CreateOutput{Snippet: s, IndexStale: !indexed}, nil
}
