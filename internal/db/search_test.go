package db

import (
	"context"
	"testing"

	"github.com/offstack/offstack/internal/ident"
	"github.com/offstack/offstack/internal/snippet"
)

func TestBuildMatchExpr(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"   \t\n ", ""},
		{"...!!!", ""},
		{"binary", `"binary"`},
		{"binary search", `"binary" OR "search"`},
		{"foo-bar.baz", `"foo" OR "bar" OR "baz"`},
		// FTS5 operators are neutralized by quoting.
		{"a AND b", `"a" OR "AND" OR "b"`},
		{`err != nil`, `"err" OR "nil"`},
	}
	for _, tt := range tests {
		if got := BuildMatchExpr(tt.query); got != tt.want {
			t.Errorf("BuildMatchExpr(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSearchIDs_TitleOutranksCode(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	inCode := makeSnippet("unrelated", "uses dijkstra internally", "go")
	inTitle := makeSnippet("dijkstra shortest path", "func sp() {}", "go")
	for _, s := range []*snippet.Snippet{inCode, inTitle} {
		if _, err := Insert(ctx, database, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	ids, err := SearchIDs(ctx, database, BuildMatchExpr("dijkstra"), 10)
	if err != nil {
		t.Fatalf("SearchIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
	if ids[0] != inTitle.ID {
		t.Errorf("first result is the code match, want the title match first")
	}
}

func TestSearchIDs_MoreTermsRankHigher(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	oneTerm := makeSnippet("http client", "net dial", "go")
	bothTerms := makeSnippet("http retry client", "retry with backoff", "go")
	for _, s := range []*snippet.Snippet{oneTerm, bothTerms} {
		if _, err := Insert(ctx, database, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	ids, err := SearchIDs(ctx, database, BuildMatchExpr("http retry"), 10)
	if err != nil {
		t.Fatalf("SearchIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want both snippets matched", len(ids))
	}
	if ids[0] != bothTerms.ID {
		t.Error("snippet matching both terms should rank above single-term match")
	}
}

func TestSearchIDs_Limit(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	for range 5 {
		s := makeSnippet("redis pipeline", "rdb.Pipeline()", "go")
		if _, err := Insert(ctx, database, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	ids, err := SearchIDs(ctx, database, BuildMatchExpr("redis"), 3)
	if err != nil {
		t.Fatalf("SearchIDs failed: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("len(ids) = %d, want limit 3", len(ids))
	}
}

func TestInsert_SurvivesLostIndex(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	if _, err := database.Exec("DROP TABLE snippets_fts"); err != nil {
		t.Fatalf("drop fts table: %v", err)
	}

	s := makeSnippet("still stored", "body", "text")
	indexed, err := Insert(ctx, database, s)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if indexed {
		t.Error("Insert reported indexed with the index table gone")
	}

	got, err := GetByID(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("row lost along with the index: %v", err)
	}
	if got.Title != "still stored" {
		t.Errorf("Title = %q", got.Title)
	}

	n, err := StaleCount(ctx, database)
	if err != nil {
		t.Fatalf("StaleCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("StaleCount = %d, want 1", n)
	}
}

func TestUpdateFields_SurvivesLostIndex(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	s := makeSnippet("before", "body", "text")
	if _, err := Insert(ctx, database, s); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := database.Exec("DROP TABLE snippets_fts"); err != nil {
		t.Fatalf("drop fts table: %v", err)
	}

	updated, indexed, err := UpdateFields(ctx, database, s.ID,
		snippet.UpdateInput{Title: strPtr("after")}, ident.Timestamp(ident.Now()))
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if indexed {
		t.Error("UpdateFields reported indexed with the index table gone")
	}
	if updated.Title != "after" {
		t.Errorf("Title = %q, row update must stand despite index failure", updated.Title)
	}
}

func TestReindexAll_RepairsLostIndex(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	a := makeSnippet("alpha pattern", "first", "text")
	b := makeSnippet("beta pattern", "second", "text")
	for _, s := range []*snippet.Snippet{a, b} {
		if _, err := Insert(ctx, database, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if _, err := database.Exec("DROP TABLE snippets_fts"); err != nil {
		t.Fatalf("drop fts table: %v", err)
	}

	// A write against the missing index marks the row stale.
	if _, _, err := UpdateFields(ctx, database, a.ID,
		snippet.UpdateInput{Title: strPtr("alpha pattern v2")}, ident.Timestamp(ident.Now())); err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}

	indexed, err := ReindexAll(ctx, database)
	if err != nil {
		t.Fatalf("ReindexAll failed: %v", err)
	}
	if indexed != 2 {
		t.Errorf("ReindexAll = %d rows, want 2", indexed)
	}

	n, err := StaleCount(ctx, database)
	if err != nil {
		t.Fatalf("StaleCount failed: %v", err)
	}
	if n != 0 {
		t.Errorf("StaleCount = %d after reindex, want 0", n)
	}

	ids, err := SearchIDs(ctx, database, BuildMatchExpr("pattern"), 10)
	if err != nil {
		t.Fatalf("SearchIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("len(ids) = %d after reindex, want 2", len(ids))
	}
}
