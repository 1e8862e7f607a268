package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/snippet"
)

func TestImport_RoundtripPreservesIdentity(t *testing.T) {
	source := testStore(t)
	ctx := context.Background()

	created, err := Create(ctx, source, testConfig(), CreateInput{
		Title:    "portable",
		Code:     "mv a b",
		Language: "shell",
		Tags:     []string{"fs"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dump.jsonl")
	if _, err := Export(ctx, source, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dest := testStore(t)
	out, err := Import(ctx, dest, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 || out.Skipped != 0 {
		t.Errorf("Import = %+v, want 1 imported", out)
	}

	got, err := Get(ctx, dest, GetInput{ID: created.Snippet.ID})
	if err != nil {
		t.Fatalf("Get after import failed: %v", err)
	}
	if got.Snippet.CreatedAt != created.Snippet.CreatedAt ||
		got.Snippet.UpdatedAt != created.Snippet.UpdatedAt {
		t.Error("import must preserve timestamps")
	}
	if len(got.Snippet.Tags) != 1 || got.Snippet.Tags[0] != "fs" {
		t.Errorf("Tags = %v", got.Snippet.Tags)
	}

	// Imported rows are searchable without a separate reindex.
	found, err := Search(ctx, dest, SearchInput{Query: "portable"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(found.Items) != 1 {
		t.Errorf("imported snippet not searchable: %+v", found.Items)
	}
}

func TestImport_SkipMode(t *testing.T) {
	database := testStore(t)
	ctx := context.Background()

	created, err := Create(ctx, database, testConfig(), CreateInput{
		Title: "original", Code: "x", Language: "text",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dump.jsonl")
	if _, err := Export(ctx, database, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Change the live copy, then import the old dump with the default mode.
	if _, err := Update(ctx, database, testConfig(), UpdateInput{
		ID:    created.Snippet.ID,
		Patch: snippet.UpdateInput{Title: strPtr("changed")},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 0 || out.Skipped != 1 {
		t.Errorf("Import = %+v, want 1 skipped", out)
	}

	got, err := Get(ctx, database, GetInput{ID: created.Snippet.ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Snippet.Title != "changed" {
		t.Error("skip mode must keep the existing snippet")
	}
}

func TestImport_ReplaceMode(t *testing.T) {
	database := testStore(t)
	ctx := context.Background()

	created, err := Create(ctx, database, testConfig(), CreateInput{
		Title: "original", Code: "x", Language: "text",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dump.jsonl")
	if _, err := Export(ctx, database, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := Update(ctx, database, testConfig(), UpdateInput{
		ID:    created.Snippet.ID,
		Patch: snippet.UpdateInput{Title: strPtr("changed")},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	out, err := Import(ctx, database, ImportInput{Path: path, Mode: ImportModeReplace})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 {
		t.Errorf("Import = %+v, want 1 imported", out)
	}

	got, err := Get(ctx, database, GetInput{ID: created.Snippet.ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Snippet.Title != "original" {
		t.Error("replace mode must restore the dumped snippet")
	}
}

func TestImport_MalformedLines(t *testing.T) {
	database := testStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "bad.jsonl")
	content := `{"_offstack_export":true,"schema_version":"1.0"}
not json at all
{"id":"01JG0000000000000000000001","title":"ok","code":"x","language":"text","created_at":"2026-01-01T00:00:00.000000000Z","updated_at":"2026-01-01T00:00:00.000000000Z"}
{"id":"","title":"missing id"}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := Import(ctx, database, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 {
		t.Errorf("Imported = %d, want 1", out.Imported)
	}
	if out.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", out.Skipped)
	}
	if len(out.Errors) != 2 {
		t.Fatalf("Errors = %+v, want parse error and invalid record", out.Errors)
	}
	if out.Errors[0].Code != "PARSE_ERROR" || out.Errors[1].Code != "INVALID_RECORD" {
		t.Errorf("error codes = %s, %s", out.Errors[0].Code, out.Errors[1].Code)
	}
}

func TestImport_MissingFile(t *testing.T) {
	database := testStore(t)

	_, err := Import(context.Background(), database, ImportInput{Path: "/nonexistent/dump.jsonl"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestImport_BadMode(t *testing.T) {
	database := testStore(t)

	_, err := Import(context.Background(), database, ImportInput{Path: "x", Mode: "merge"})
	if !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("err = %v, want INVALID_ARGUMENT", err)
	}
}
