package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/db"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	return database, cfg, tmpDir
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

const samplePage = `<html><body>
<main>
  <div data-testid="conversation-turn-1">
    <div data-message-author-role="user">Explain goroutines</div>
    <div data-message-author-role="assistant">Goroutines are lightweight threads.</div>
  </div>
</main>
</body></html>`

func TestHandleSave(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	tests := []struct {
		name       string
		args       map[string]any
		wantFolder string
	}{
		{
			name:       "explicit folder",
			args:       map[string]any{"prompt": "p", "response": "r", "folder": "Go notes", "platform": "chatgpt"},
			wantFolder: "Go notes",
		},
		{
			name:       "default folder",
			args:       map[string]any{"prompt": "p2", "response": "r2"},
			wantFolder: "Unsorted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleSave(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			output := parseOutput(t, result)
			if output["folder"] != tt.wantFolder {
				t.Errorf("folder = %v, want %q", output["folder"], tt.wantFolder)
			}
			id, _ := output["id"].(string)
			if len(id) != 26 {
				t.Errorf("id %q is not a ULID", id)
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	for _, folder := range []string{"Zeta", "Alpha"} {
		if _, err := h.HandleSave(ctx, makeRequest(map[string]any{
			"prompt": "p", "response": "r", "folder": folder,
		})); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	result, err := h.HandleList(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	output := parseOutput(t, result)

	names, ok := output["folder_names"].([]any)
	if !ok || len(names) != 2 {
		t.Fatalf("folder_names = %v", output["folder_names"])
	}
	if names[0] != "Alpha" || names[1] != "Zeta" {
		t.Errorf("folder names not sorted: %v", names)
	}
}

func TestHandleDeleteTurn(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	saved, err := h.HandleSave(ctx, makeRequest(map[string]any{
		"prompt": "p", "response": "r", "folder": "Work",
	}))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	id := parseOutput(t, saved)["id"].(string)

	result, err := h.HandleDeleteTurn(ctx, makeRequest(map[string]any{
		"folder": "Work", "id": id,
	}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	output := parseOutput(t, result)
	if output["deleted"] != true {
		t.Errorf("deleted = %v", output["deleted"])
	}
	if output["folder_removed"] != true {
		t.Errorf("expected emptied folder to be removed")
	}

	result, err = h.HandleDeleteTurn(ctx, makeRequest(map[string]any{
		"folder": "Work", "id": id,
	}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleDeleteTurnMissingArgs(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)

	result, err := h.HandleDeleteTurn(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleDeleteFolder(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := h.HandleSave(ctx, makeRequest(map[string]any{
			"prompt": "p", "response": "r", "folder": "Scratch",
		})); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	result, err := h.HandleDeleteFolder(ctx, makeRequest(map[string]any{"folder": "Scratch"}))
	if err != nil {
		t.Fatalf("delete folder: %v", err)
	}
	output := parseOutput(t, result)
	if output["removed"] != float64(3) {
		t.Errorf("removed = %v, want 3", output["removed"])
	}

	result, err = h.HandleDeleteFolder(ctx, makeRequest(map[string]any{"folder": "Scratch"}))
	if err != nil {
		t.Fatalf("delete folder: %v", err)
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleClear(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	if _, err := h.HandleSave(ctx, makeRequest(map[string]any{
		"prompt": "N/A", "response": "", "folder": "Junk",
	})); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := h.HandleSave(ctx, makeRequest(map[string]any{
		"prompt": "keep", "response": "me", "folder": "Junk",
	})); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := h.HandleClear(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	output := parseOutput(t, result)
	if output["removed"] != float64(1) {
		t.Errorf("removed = %v, want 1", output["removed"])
	}
}

func TestHandleCapture(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	t.Run("supported page html", func(t *testing.T) {
		result, err := h.HandleCapture(ctx, makeRequest(map[string]any{
			"html": samplePage,
			"url":  "https://chatgpt.com/c/abc",
		}))
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		output := parseOutput(t, result)
		if output["response"] != "Goroutines are lightweight threads." {
			t.Errorf("response = %v", output["response"])
		}
		if output["platform"] != "chatgpt" {
			t.Errorf("platform = %v", output["platform"])
		}
	})

	t.Run("snapshot file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.html")
		if err := os.WriteFile(path, []byte(samplePage), 0o644); err != nil {
			t.Fatal(err)
		}
		result, err := h.HandleCapture(ctx, makeRequest(map[string]any{
			"html_path": path,
			"url":       "https://chatgpt.com/c/abc",
		}))
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		output := parseOutput(t, result)
		if output["prompt"] != "Explain goroutines" {
			t.Errorf("prompt = %v", output["prompt"])
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		result, err := h.HandleCapture(ctx, makeRequest(map[string]any{
			"html_path": filepath.Join(t.TempDir(), "absent.html"),
		}))
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		assertErrorCode(t, result, "UNREACHABLE")
	})

	t.Run("nothing to capture", func(t *testing.T) {
		result, err := h.HandleCapture(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		assertErrorCode(t, result, "EMPTY_CAPTURE")
	})
}

func TestHandleCleanCopy(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	result, err := h.HandleCleanCopy(ctx, makeRequest(map[string]any{
		"selection": "Hello \U0001F44D world ✓",
		"skip_copy": true,
	}))
	if err != nil {
		t.Fatalf("clean copy: %v", err)
	}
	output := parseOutput(t, result)
	if output["text"] != "Hello world" {
		t.Errorf("text = %q", output["text"])
	}

	result, err = h.HandleCleanCopy(ctx, makeRequest(map[string]any{
		"selection": "   ", "skip_copy": true,
	}))
	if err != nil {
		t.Fatalf("clean copy: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleExportImport(t *testing.T) {
	database, cfg, dir := testSetup(t)
	h := NewHandlers(database, cfg, dir)
	ctx := context.Background()

	if _, err := h.HandleSave(ctx, makeRequest(map[string]any{
		"prompt": "p", "response": "r", "folder": "Keep",
	})); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(dir, "out.json")
	result, err := h.HandleExport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	output := parseOutput(t, result)
	if output["turns"] != float64(1) {
		t.Errorf("turns = %v", output["turns"])
	}

	// A second database imports the file cleanly.
	database2, cfg2, dir2 := testSetup(t)
	h2 := NewHandlers(database2, cfg2, dir2)

	result, err = h2.HandleImport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	output = parseOutput(t, result)
	if output["imported"] != float64(1) {
		t.Errorf("imported = %v", output["imported"])
	}

	result, err = h2.HandleImport(ctx, makeRequest(map[string]any{"path": path, "mode": "bogus"}))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestToolRegistry(t *testing.T) {
	names := AllToolNames()
	sort.Strings(names)
	want := []string{
		"clean_copy", "folder_delete", "turn_capture", "turn_clear",
		"turn_delete", "turn_export", "turn_import", "turn_list", "turn_save",
	}
	if len(names) != len(want) {
		t.Fatalf("got %d tools: %v", len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tool[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestValidateDisabled(t *testing.T) {
	if unknown := ValidateDisabledTools([]string{"turn_save", "nope"}); len(unknown) != 1 || unknown[0] != "nope" {
		t.Errorf("unknown tools = %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"turn", "capsule"}); len(unknown) != 1 || unknown[0] != "capsule" {
		t.Errorf("unknown types = %v", unknown)
	}
}

func TestExpandTypesToTools(t *testing.T) {
	tools := ExpandTypesToTools([]string{"folder", "clean"})
	sort.Strings(tools)
	want := []string{"clean_copy", "folder_delete"}
	if len(tools) != len(want) {
		t.Fatalf("got %v", tools)
	}
	for i := range want {
		if tools[i] != want[i] {
			t.Errorf("tools[%d] = %q, want %q", i, tools[i], want[i])
		}
	}

	if got := GetTypeForTool("turn_clear"); got != "turn" {
		t.Errorf("GetTypeForTool = %q", got)
	}
}

func TestNewServerHonorsDisabled(t *testing.T) {
	database, cfg, dir := testSetup(t)
	cfg.DisabledTools = []string{"clean_copy"}
	cfg.DisabledTypes = []string{"folder"}

	s := NewServer(database, cfg, dir, "test")
	if s == nil {
		t.Fatal("nil server")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
