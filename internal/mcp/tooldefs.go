package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Names follow the "type_action" pattern so whole
// families can be disabled via config (disabled_types).

var captureToolDef = mcp.NewTool("turn_capture",
	mcp.WithDescription("Extract the latest prompt/response pair from a chat page snapshot. Falls back to the provided selection and input on unsupported pages."),
	mcp.WithString("html", mcp.Description("Raw page HTML. When omitted, html_path (or the configured snapshot path) is read instead.")),
	mcp.WithString("html_path", mcp.Description("Path to a page snapshot file.")),
	mcp.WithString("url", mcp.Description("Page address, used for platform detection.")),
	mcp.WithString("selection", mcp.Description("Selected text, used as the response on unsupported pages.")),
	mcp.WithString("input", mcp.Description("Focused input value, used as the prompt on unsupported pages.")),
)

var saveToolDef = mcp.NewTool("turn_save",
	mcp.WithDescription("Save a prompt/response pair into a folder. The folder is created if it does not exist."),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("User prompt text.")),
	mcp.WithString("response", mcp.Required(), mcp.Description("Assistant response text.")),
	mcp.WithString("url", mcp.Description("Page address the pair came from.")),
	mcp.WithString("platform", mcp.Description("Source platform label (chatgpt, gemini, claude, unknown).")),
	mcp.WithString("folder", mcp.Description("Destination folder. Defaults to the configured default folder.")),
)

var listToolDef = mcp.NewTool("turn_list",
	mcp.WithDescription("List every folder with its saved turns, folders sorted by name, turns in save order."),
)

var deleteTurnToolDef = mcp.NewTool("turn_delete",
	mcp.WithDescription("Delete one saved turn by folder and id. An emptied folder is removed with it."),
	mcp.WithString("folder", mcp.Required(), mcp.Description("Folder holding the turn.")),
	mcp.WithString("id", mcp.Required(), mcp.Description("Turn id.")),
)

var clearToolDef = mcp.NewTool("turn_clear",
	mcp.WithDescription("Remove every saved turn whose prompt and response are both empty or placeholders."),
)

var exportToolDef = mcp.NewTool("turn_export",
	mcp.WithDescription("Write the full folder index to a JSON export file."),
	mcp.WithString("path", mcp.Description("Destination file. Defaults to a timestamped file in the exports directory.")),
)

var importToolDef = mcp.NewTool("turn_import",
	mcp.WithDescription("Read a previously exported folder index file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Export file to read.")),
	mcp.WithString("mode", mcp.Description("merge (default) appends and skips colliding ids; replace discards the current index.")),
)

var deleteFolderToolDef = mcp.NewTool("folder_delete",
	mcp.WithDescription("Delete a folder and every turn in it."),
	mcp.WithString("folder", mcp.Required(), mcp.Description("Folder to delete.")),
)

var cleanCopyToolDef = mcp.NewTool("clean_copy",
	mcp.WithDescription("Strip emoji and decorative glyphs from the selected text and place the result on the clipboard."),
	mcp.WithString("selection", mcp.Required(), mcp.Description("Text to clean.")),
	mcp.WithBoolean("skip_copy", mcp.Description("Return the cleaned text without touching the clipboard.")),
)
