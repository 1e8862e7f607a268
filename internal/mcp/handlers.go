package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/offstack/offstack/internal/capture"
	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/ops"
	"github.com/offstack/offstack/internal/snippet"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, baseDir: baseDir}
}

// Request types for each tool

// CreateRequest represents the arguments for snippet_create.
type CreateRequest struct {
	Title       string   `json:"title"`
	Code        string   `json:"code,omitempty"`
	Language    string   `json:"language"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	FolderID    *string  `json:"folder_id,omitempty"`
}

// GetRequest represents the arguments for snippet_get.
type GetRequest struct {
	ID string `json:"id"`
}

// UpdateRequest represents the arguments for snippet_update.
type UpdateRequest struct {
	ID          string    `json:"id"`
	Title       *string   `json:"title,omitempty"`
	Code        *string   `json:"code,omitempty"`
	Language    *string   `json:"language,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	FolderID    *string   `json:"folder_id,omitempty"`
	IsFavorite  *bool     `json:"is_favorite,omitempty"`
}

// DeleteRequest represents the arguments for snippet_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for snippet_list.
type ListRequest struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// SearchRequest represents the arguments for snippet_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// CaptureRequest represents the arguments for snippet_capture.
type CaptureRequest struct {
	Text      string  `json:"text"`
	IsCode    bool    `json:"is_code,omitempty"`
	SourceApp *string `json:"source_app,omitempty"`
	Platform  string  `json:"platform,omitempty"`
}

// ExportRequest represents the arguments for snippet_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for snippet_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleCreate handles the snippet_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.db, h.cfg, ops.CreateInput{
		Title:       input.Title,
		Code:        input.Code,
		Language:    input.Language,
		Description: input.Description,
		Tags:        input.Tags,
		FolderID:    input.FolderID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the snippet_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.db, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the snippet_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.db, h.cfg, ops.UpdateInput{
		ID: input.ID,
		Patch: snippet.UpdateInput{
			Title:       input.Title,
			Code:        input.Code,
			Language:    input.Language,
			Description: input.Description,
			Tags:        input.Tags,
			FolderID:    input.FolderID,
			IsFavorite:  input.IsFavorite,
		},
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the snippet_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the snippet_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Page:  input.Page,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the snippet_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCapture handles the snippet_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	var stored *snippet.Snippet
	var reason string
	in := &capture.Ingestor{
		DB:        h.db,
		Cfg:       h.cfg,
		OnSnippet: func(s *snippet.Snippet) { stored = s },
		OnError:   func(r string) { reason = r },
	}
	in.Ingest(ctx, capture.Payload{
		Text:      input.Text,
		IsCode:    input.IsCode,
		SourceApp: input.SourceApp,
		Platform:  input.Platform,
	})

	if stored == nil {
		return errorResult(errors.NewValidation(reason)), nil
	}
	return successResult(ops.CreateOutput{Snippet: stored})
}

// HandleReindex handles the snippet_reindex tool call.
func (h *Handlers) HandleReindex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Reindex(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the snippet_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, ops.ExportInput{
		Path:    input.Path,
		BaseDir: h.baseDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the snippet_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidArgument(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if typed, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    typed.Code,
			"message": typed.Message,
			"status":  typed.Status,
		}
		// Only include details for non-storage errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if typed.Code != errors.ErrStorage && typed.Details != nil {
			errorObj["details"] = typed.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "STORAGE",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
