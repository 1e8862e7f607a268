package db

import (
	"context"
	"database/sql"
	"strings"
	"unicode"
)

// BuildMatchExpr turns a raw user query into an FTS5 MATCH expression.
// Tokens are split the way the unicode61 tokenizer splits indexed text
// (letter/digit runs), double-quoted to neutralize FTS5 operator syntax, and
// OR-joined so partial matches still surface, ranked below full matches by
// BM25. Returns "" for a query with no tokens.
func BuildMatchExpr(query string) string {
	tokens := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " OR ")
}

// SearchIDs runs a ranked full-text query and returns matching snippet ids,
// best match first. Ranking is BM25 with title weighted above description
// above code; ties break by most recent updated_at, then id. The caller
// resolves ids to rows via GetByID.
func SearchIDs(ctx context.Context, db *sql.DB, matchExpr string, limit int) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.id
		FROM snippets_fts f
		JOIN snippets s ON s.id = f.id
		WHERE snippets_fts MATCH ?
		ORDER BY bm25(snippets_fts, 0.0, 5.0, 1.0, 2.0), s.updated_at DESC, s.id ASC
		LIMIT ?`, matchExpr, limit)
	if err != nil {
		return nil, wrapErr(ctx, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr(ctx, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(ctx, err)
	}
	return ids, nil
}

// StaleCount returns the number of rows whose index entry is pending repair.
func StaleCount(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets WHERE index_stale = 1`).Scan(&n); err != nil {
		return 0, wrapErr(ctx, err)
	}
	return n, nil
}

// ReindexAll rebuilds the whole FTS index from the snippets table and clears
// all stale flags. The FTS table is recreated if missing, so this also
// recovers from a lost or corrupted index. Returns the number of rows
// indexed.
func ReindexAll(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr(ctx, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createFTS); err != nil {
		return 0, wrapErr(ctx, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snippets_fts`); err != nil {
		return 0, wrapErr(ctx, err)
	}
	result, err := tx.ExecContext(ctx, `
		INSERT INTO snippets_fts (id, title, code, description)
		SELECT id, title, code, COALESCE(description, '') FROM snippets`)
	if err != nil {
		return 0, wrapErr(ctx, err)
	}
	indexed, err := result.RowsAffected()
	if err != nil {
		return 0, wrapErr(ctx, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE snippets SET index_stale = 0`); err != nil {
		return 0, wrapErr(ctx, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapErr(ctx, err)
	}
	return int(indexed), nil
}
