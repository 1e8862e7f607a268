package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/snippet"
)

const snippetColumns = `id, title, code, language, description, tags_json,
	folder_id, is_favorite, index_stale, created_at, updated_at`

// Insert stores a new snippet row and its search index entry in one
// transaction. Returns indexed=false (and commits the row with
// index_stale=1) when the index write failed; the row write is never rolled
// back on account of the index.
func Insert(ctx context.Context, db *sql.DB, s *snippet.Snippet) (indexed bool, err error) {
	tagsJSON, err := marshalTags(s.Tags)
	if err != nil {
		return false, errors.NewStorage(err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrapErr(ctx, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snippets (
			id, title, code, language, description, tags_json,
			folder_id, is_favorite, index_stale, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		s.ID, s.Title, s.Code, s.Language, toNullString(s.Description), tagsJSON,
		toNullString(s.FolderID), boolToInt(s.IsFavorite), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return false, wrapErr(ctx, err)
	}

	indexed, err = writeIndexEntry(ctx, tx, s)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, wrapErr(ctx, err)
	}
	return indexed, nil
}

// writeIndexEntry replaces the FTS entry for s inside tx. A failed index
// statement aborts only that statement, not the transaction; in that case the
// row is flagged index_stale and the transaction stays committable.
func writeIndexEntry(ctx context.Context, tx *sql.Tx, s *snippet.Snippet) (bool, error) {
	desc := ""
	if s.Description != nil {
		desc = *s.Description
	}

	_, err := tx.ExecContext(ctx,
		`DELETE FROM snippets_fts WHERE id = ?`, s.ID)
	if err == nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snippets_fts (id, title, code, description) VALUES (?, ?, ?, ?)`,
			s.ID, s.Title, s.Code, desc)
	}
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, errors.NewCancelled()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE snippets SET index_stale = 1 WHERE id = ?`, s.ID); err != nil {
		return false, wrapErr(ctx, err)
	}
	return false, nil
}

// GetByID retrieves a snippet by its ULID.
func GetByID(ctx context.Context, db *sql.DB, id string) (*snippet.Snippet, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id)

	s, err := scanSnippet(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, wrapErr(ctx, err)
	}
	return s, nil
}

// UpdateFields applies a partial update: the SET clause is composed from the
// fields present on the patch only, so absent fields are never overwritten.
// updated_at is always refreshed. The row update, the stale-flag bookkeeping,
// and the FTS rebuild (when a text field changed) share one transaction.
// Returns the updated snippet and indexed=false when the FTS rebuild failed.
func UpdateFields(ctx context.Context, db *sql.DB, id string, patch snippet.UpdateInput, updatedAt string) (*snippet.Snippet, bool, error) {
	assignments := []string{"updated_at = ?"}
	args := []any{updatedAt}

	if patch.Title != nil {
		assignments = append(assignments, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Code != nil {
		assignments = append(assignments, "code = ?")
		args = append(args, *patch.Code)
	}
	if patch.Language != nil {
		assignments = append(assignments, "language = ?")
		args = append(args, *patch.Language)
	}
	if patch.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Tags != nil {
		tagsJSON, err := marshalTags(*patch.Tags)
		if err != nil {
			return nil, false, errors.NewStorage(err)
		}
		assignments = append(assignments, "tags_json = ?")
		args = append(args, tagsJSON)
	}
	if patch.FolderID != nil {
		assignments = append(assignments, "folder_id = ?")
		args = append(args, *patch.FolderID)
	}
	if patch.IsFavorite != nil {
		assignments = append(assignments, "is_favorite = ?")
		args = append(args, boolToInt(*patch.IsFavorite))
	}
	args = append(args, id)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, wrapErr(ctx, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets SET `+strings.Join(assignments, ", ")+` WHERE id = ?`,
		args...)
	if err != nil {
		return nil, false, wrapErr(ctx, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, wrapErr(ctx, err)
	}
	if rowsAffected == 0 {
		return nil, false, errors.NewNotFound(id)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id)
	s, err := scanSnippet(row.Scan)
	if err != nil {
		return nil, false, wrapErr(ctx, err)
	}

	indexed := true
	if patch.TouchesText() {
		indexed, err = writeIndexEntry(ctx, tx, s)
		if err != nil {
			return nil, false, err
		}
		if indexed {
			if _, err := tx.ExecContext(ctx,
				`UPDATE snippets SET index_stale = 0 WHERE id = ?`, id); err != nil {
				return nil, false, wrapErr(ctx, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, wrapErr(ctx, err)
	}
	return s, indexed, nil
}

// Delete removes a snippet row and its index entry in one transaction.
// Returns false without error when the id does not exist.
func Delete(ctx context.Context, db *sql.DB, id string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrapErr(ctx, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr(ctx, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, wrapErr(ctx, err)
	}

	// The index entry goes regardless of whether the row existed. A failure
	// here is tolerable only if the FTS table itself is gone (a reindex pass
	// will recreate it); the row deletion stands either way.
	if _, err := tx.ExecContext(ctx, `DELETE FROM snippets_fts WHERE id = ?`, id); err != nil {
		if ctx.Err() != nil {
			return false, errors.NewCancelled()
		}
	}

	if err := tx.Commit(); err != nil {
		return false, wrapErr(ctx, err)
	}
	return rowsAffected > 0, nil
}

// List returns one page of snippets ordered by updated_at descending with id
// ascending as the deterministic tie-break, plus the total row count.
func List(ctx context.Context, db *sql.DB, limit, offset int) ([]snippet.Snippet, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippets`).Scan(&total); err != nil {
		return nil, 0, wrapErr(ctx, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 ORDER BY updated_at DESC, id ASC
		 LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, wrapErr(ctx, err)
	}
	defer rows.Close()

	snippets := make([]snippet.Snippet, 0, limit)
	for rows.Next() {
		s, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, 0, wrapErr(ctx, err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr(ctx, err)
	}
	return snippets, total, nil
}

// StreamForExport returns a cursor over all snippets in insertion (id) order.
// The caller owns the returned rows and must Close them.
func StreamForExport(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets ORDER BY id ASC`)
	if err != nil {
		return nil, wrapErr(ctx, err)
	}
	return rows, nil
}

// ScanSnippetFromRows scans the current row of a StreamForExport cursor.
func ScanSnippetFromRows(rows *sql.Rows) (*snippet.Snippet, error) {
	return scanSnippet(rows.Scan)
}

// Exists reports whether a snippet row with the given id is present.
func Exists(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, wrapErr(ctx, err)
	}
	return n > 0, nil
}

// scanSnippet reads one snippets row via the given Scan function, which lets
// it serve both *sql.Row and *sql.Rows.
func scanSnippet(scan func(...any) error) (*snippet.Snippet, error) {
	var (
		s          snippet.Snippet
		desc       sql.NullString
		tagsJSON   sql.NullString
		folderID   sql.NullString
		isFavorite int
		indexStale int
	)

	err := scan(
		&s.ID, &s.Title, &s.Code, &s.Language, &desc, &tagsJSON,
		&folderID, &isFavorite, &indexStale, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Description = fromNullString(desc)
	s.FolderID = fromNullString(folderID)
	s.IsFavorite = isFavorite != 0

	// A corrupt tags blob is a storage fault, not a crash.
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &s.Tags); err != nil {
			return nil, errors.NewStorage(err)
		}
	}

	return &s, nil
}

// marshalTags serializes a tag list to its storage blob, NULL when empty.
func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// wrapErr maps a database error to a typed failure, preserving an existing
// typed error and translating context cancellation.
func wrapErr(ctx context.Context, err error) error {
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return typed
	}
	if ctx.Err() != nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewCancelled()
	}
	return errors.NewStorage(err)
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
