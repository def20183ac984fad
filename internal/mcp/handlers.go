package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/ops"
	"github.com/chatstash/chatstash/internal/turn"
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

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// Request types for each tool

// CaptureRequest represents the arguments for turn_capture.
type CaptureRequest struct {
	HTML      string `json:"html,omitempty"`
	HTMLPath  string `json:"html_path,omitempty"`
	URL       string `json:"url,omitempty"`
	Selection string `json:"selection,omitempty"`
	Input     string `json:"input,omitempty"`
}

// SaveRequest represents the arguments for turn_save.
type SaveRequest struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	URL      string `json:"url,omitempty"`
	Platform string `json:"platform,omitempty"`
	Folder   string `json:"folder,omitempty"`
}

// DeleteTurnRequest represents the arguments for turn_delete.
type DeleteTurnRequest struct {
	Folder string `json:"folder"`
	ID     string `json:"id"`
}

// DeleteFolderRequest represents the arguments for folder_delete.
type DeleteFolderRequest struct {
	Folder string `json:"folder"`
}

// ExportRequest represents the arguments for turn_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for turn_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// CleanCopyRequest represents the arguments for clean_copy.
type CleanCopyRequest struct {
	Selection string `json:"selection"`
	SkipCopy  bool   `json:"skip_copy,omitempty"`
}

// Handler implementations

// HandleCapture handles the turn_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Capture(h.cfg, ops.CaptureInput{
		HTML:      input.HTML,
		HTMLPath:  input.HTMLPath,
		URL:       input.URL,
		Selection: input.Selection,
		Input:     input.Input,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSave handles the turn_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveTurn(h.db, h.cfg, ops.SaveTurnInput{
		Prompt:   input.Prompt,
		Response: input.Response,
		URL:      input.URL,
		Platform: turn.Platform(input.Platform),
		Folder:   input.Folder,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the turn_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListFolders(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteTurn handles the turn_delete tool call.
func (h *Handlers) HandleDeleteTurn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteTurnRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteTurn(h.db, ops.DeleteTurnInput{
		Folder: input.Folder,
		ID:     input.ID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteFolder handles the folder_delete tool call.
func (h *Handlers) HandleDeleteFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteFolderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteFolder(h.db, ops.DeleteFolderInput{Folder: input.Folder})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClear handles the turn_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ClearEmpty(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the turn_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(h.db, h.cfg, h.baseDir, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the turn_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(h.db, h.cfg, h.baseDir, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCleanCopy handles the clean_copy tool call.
func (h *Handlers) HandleCleanCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CleanCopyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CleanCopy(ops.CleanCopyInput{
		Selection: input.Selection,
		SkipCopy:  input.SkipCopy,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if stashErr, ok := err.(*errors.StashError); ok {
		errorObj := map[string]any{
			"code":    stashErr.Code,
			"message": stashErr.Message,
			"status":  stashErr.Status,
		}
		if stashErr.Code != errors.ErrInternal && stashErr.Details != nil {
			errorObj["details"] = stashErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
