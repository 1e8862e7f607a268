package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/ops"
)

// testServer builds the full handler stack over a temp store.
func testServer(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	srv := NewServer(database, config.DefaultConfig(), "test", "127.0.0.1", 0)
	return srv.Handler, database
}

func seedSnippet(t *testing.T, database *sql.DB, title string) string {
	t.Helper()
	out, err := ops.Create(context.Background(), database, config.DefaultConfig(), ops.CreateInput{
		Title:    title,
		Code:     "console.log(1)",
		Language: "javascript",
	})
	if err != nil {
		t.Fatalf("seed Create failed: %v", err)
	}
	return out.Snippet.ID
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleList_RendersSnippets(t *testing.T) {
	handler, database := testServer(t)
	seedSnippet(t, database, "debounce helper")

	rec := get(t, handler, "/snippets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "debounce helper") {
		t.Error("list page missing snippet title")
	}
}

func TestRootRedirects(t *testing.T) {
	handler, _ := testServer(t)

	rec := get(t, handler, "/")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/snippets" {
		t.Errorf("Location = %q, want /snippets", loc)
	}
}

func TestHandleDetail(t *testing.T) {
	handler, database := testServer(t)
	id := seedSnippet(t, database, "throttle helper")

	rec := get(t, handler, "/snippets/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "throttle helper") || !strings.Contains(body, "console.log(1)") {
		t.Error("detail page missing snippet fields")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	handler, _ := testServer(t)

	rec := get(t, handler, "/snippets/01JG0000000000000000000000")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDetail_EscapesCode(t *testing.T) {
	handler, database := testServer(t)

	out, err := ops.Create(context.Background(), database, config.DefaultConfig(), ops.CreateInput{
		Title:    "xss probe",
		Code:     `<script>alert(1)</script>`,
		Language: "html",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec := get(t, handler, "/snippets/"+out.Snippet.ID)
	if strings.Contains(rec.Body.String(), "<script>alert(1)</script>") {
		t.Error("snippet code rendered unescaped")
	}
}

func TestHandleSearch(t *testing.T) {
	handler, database := testServer(t)
	seedSnippet(t, database, "debounce helper")
	seedSnippet(t, database, "other thing")

	rec := get(t, handler, "/snippets/search?q=debounce")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "debounce helper") {
		t.Error("search result missing matching snippet")
	}
	if strings.Contains(body, "other thing") {
		t.Error("search result contains non-matching snippet")
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	handler, database := testServer(t)
	seedSnippet(t, database, "anything")

	rec := get(t, handler, "/snippets/search")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "anything") {
		t.Error("empty query must not list snippets")
	}
}

func TestHandleDelete_JSON(t *testing.T) {
	handler, database := testServer(t)
	id := seedSnippet(t, database, "deletable")

	req := httptest.NewRequest(http.MethodDelete, "/snippets/"+id, nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if payload["deleted"] != true {
		t.Errorf("payload = %v", payload)
	}
}

func TestHandleDelete_FormRedirects(t *testing.T) {
	handler, database := testServer(t)
	id := seedSnippet(t, database, "form deletable")

	req := httptest.NewRequest(http.MethodPost, "/snippets/"+id+"/delete", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
}

func TestHandleReindex_JSON(t *testing.T) {
	handler, database := testServer(t)
	seedSnippet(t, database, "reindexed")

	req := httptest.NewRequest(http.MethodPost, "/snippets/reindex", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if payload["indexed"] != float64(1) {
		t.Errorf("payload = %v", payload)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler, _ := testServer(t)

	rec := get(t, handler, "/snippets")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}
