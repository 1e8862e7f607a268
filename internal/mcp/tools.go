package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var createToolDef = mcp.NewTool("snippet_create",
	mcp.WithDescription("Store a new code snippet. Returns the snippet with its assigned id."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable label for the snippet")),
	mcp.WithString("code", mcp.Description("Snippet body; may be empty")),
	mcp.WithString("language", mcp.Required(), mcp.Description("Language tag, e.g. 'go' or 'python'")),
	mcp.WithString("description", mcp.Description("Optional markdown note")),
	mcp.WithArray("tags", mcp.Description("Optional list of tags"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("folder_id", mcp.Description("Optional folder reference")),
)

var getToolDef = mcp.NewTool("snippet_get",
	mcp.WithDescription("Retrieve a snippet by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id (ULID)")),
)

var updateToolDef = mcp.NewTool("snippet_update",
	mcp.WithDescription("Partially update a snippet. Omitted fields are left untouched."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id (ULID)")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("code", mcp.Description("New body")),
	mcp.WithString("language", mcp.Description("New language tag")),
	mcp.WithString("description", mcp.Description("New markdown note")),
	mcp.WithArray("tags", mcp.Description("New tag list (replaces the old one)"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("folder_id", mcp.Description("New folder reference")),
	mcp.WithBoolean("is_favorite", mcp.Description("Favorite flag")),
)

var deleteToolDef = mcp.NewTool("snippet_delete",
	mcp.WithDescription("Delete a snippet. Deleting an unknown id is not an error."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id (ULID)")),
)

var listToolDef = mcp.NewTool("snippet_list",
	mcp.WithDescription("List snippets, most recently updated first."),
	mcp.WithNumber("page", mcp.Description("Page number, starting at 1 (default 1)")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
)

var searchToolDef = mcp.NewTool("snippet_search",
	mcp.WithDescription("Full-text search over titles, code, and descriptions, best match first."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search terms; an empty query returns no results")),
	mcp.WithNumber("limit", mcp.Description("Maximum results (default 20, max 100)")),
)

var captureToolDef = mcp.NewTool("snippet_capture",
	mcp.WithDescription("Ingest a raw capture payload (e.g. clipboard text) as a snippet. Title and language are derived."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Captured text")),
	mcp.WithBoolean("is_code", mcp.Description("Whether the capturer classified the text as code")),
	mcp.WithString("source_app", mcp.Description("Application the text was captured from")),
	mcp.WithString("platform", mcp.Description("Capture platform, e.g. 'darwin'")),
)

var reindexToolDef = mcp.NewTool("snippet_reindex",
	mcp.WithDescription("Rebuild the full-text index from stored snippets and clear stale flags."),
)

var exportToolDef = mcp.NewTool("snippet_export",
	mcp.WithDescription("Export all snippets to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination path (default: exports directory in the store)")),
)

var importToolDef = mcp.NewTool("snippet_import",
	mcp.WithDescription("Import snippets from a JSONL export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to the export file")),
	mcp.WithString("mode", mcp.Description("Collision mode: 'skip' (default) or 'replace'"), mcp.Enum("skip", "replace")),
)
