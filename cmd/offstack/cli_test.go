package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/db"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// runApp runs the CLI app with the given args and returns captured stdout.
func runApp(t *testing.T, database *sql.DB, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	app := newCLIApp(database, config.DefaultConfig(), t.TempDir())
	runErr := app.Run(append([]string{"offstack"}, args...))

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read captured output: %v", err)
	}
	return buf.String(), runErr
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single tag", input: "foo", expected: []string{"foo"}},
		{name: "multiple tags", input: "foo,bar,baz", expected: []string{"foo", "bar", "baz"}},
		{name: "tags with spaces", input: " foo , bar , baz ", expected: []string{"foo", "bar", "baz"}},
		{name: "empty segments dropped", input: "foo,,bar,", expected: []string{"foo", "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTags(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("parseTags(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("parseTags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestAddAndGet(t *testing.T) {
	database := setupTestDB(t)

	out, err := runApp(t, database, "add",
		"--title", "hello", "--language", "go", "--code", "fmt.Println(1)")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var created struct {
		Snippet struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"snippet"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("add output not JSON: %v\n%s", err, out)
	}
	if created.Snippet.Title != "hello" || len(created.Snippet.ID) != 26 {
		t.Errorf("created = %+v", created.Snippet)
	}

	out, err = runApp(t, database, "get", created.Snippet.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(out, "fmt.Println(1)") {
		t.Errorf("get output missing code: %s", out)
	}
}

func TestAdd_MissingTitle(t *testing.T) {
	database := setupTestDB(t)

	_, err := runApp(t, database, "add", "--language", "go", "--code", "x")
	if err == nil {
		t.Error("add without --title should fail")
	}
}

func TestUpdateAndList(t *testing.T) {
	database := setupTestDB(t)

	out, err := runApp(t, database, "add",
		"--title", "draft", "--language", "text", "--code", "x")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	var created struct {
		Snippet struct {
			ID string `json:"id"`
		} `json:"snippet"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("add output not JSON: %v", err)
	}

	out, err = runApp(t, database, "update", created.Snippet.ID,
		"--title", "final", "--favorite")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out, `"title": "final"`) || !strings.Contains(out, `"is_favorite": true`) {
		t.Errorf("update output = %s", out)
	}

	out, err = runApp(t, database, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "final") {
		t.Errorf("list output missing snippet: %s", out)
	}
}

func TestSearchCommand(t *testing.T) {
	database := setupTestDB(t)

	if _, err := runApp(t, database, "add",
		"--title", "binary heap", "--language", "go", "--code", "container/heap"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := runApp(t, database, "search", "heap")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "binary heap") {
		t.Errorf("search output missing match: %s", out)
	}

	out, err = runApp(t, database, "search", "nomatchXYZ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, `"total": 0`) {
		t.Errorf("search for absent term = %s", out)
	}
}

func TestDeleteCommand(t *testing.T) {
	database := setupTestDB(t)

	out, err := runApp(t, database, "add",
		"--title", "temp", "--language", "text", "--code", "x")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	var created struct {
		Snippet struct {
			ID string `json:"id"`
		} `json:"snippet"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("add output not JSON: %v", err)
	}

	out, err = runApp(t, database, "delete", created.Snippet.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, `"deleted": true`) {
		t.Errorf("delete output = %s", out)
	}

	_, err = runApp(t, database, "get", created.Snippet.ID)
	if err == nil {
		t.Error("get after delete should fail")
	}
}

func TestCaptureCommand(t *testing.T) {
	database := setupTestDB(t)

	out, err := runApp(t, database, "capture", "--text", "SELECT 1;", "--code")
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !strings.Contains(out, `"title": "SELECT 1;"`) {
		t.Errorf("capture output = %s", out)
	}
}

func TestReindexCommand(t *testing.T) {
	database := setupTestDB(t)

	if _, err := runApp(t, database, "add",
		"--title", "indexed", "--language", "text", "--code", "x"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := runApp(t, database, "reindex")
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if !strings.Contains(out, `"indexed": 1`) {
		t.Errorf("reindex output = %s", out)
	}
}

func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"offstack", "list"}
	if !isCLIMode() {
		t.Error("list should be CLI mode")
	}

	os.Args = []string{"offstack"}
	if isCLIMode() {
		t.Error("no args should be MCP mode")
	}

	os.Args = []string{"offstack", "--help"}
	if !isCLIMode() {
		t.Error("--help should be CLI mode")
	}
}
