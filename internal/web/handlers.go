package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strings"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/ops"
)

// Handlers contains HTTP route handlers for the panel.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleFolders handles GET /folders, listing every folder with its turns.
func (h *Handlers) HandleFolders(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListFolders(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	folders := make([]FolderView, 0, len(result.FolderNames))
	for _, name := range result.FolderNames {
		folders = append(folders, FolderView{
			Name:  name,
			Turns: result.Folders[name],
		})
	}

	h.renderer.renderPage(w, r, "folders", FoldersPageData{
		PageData: PageData{
			Title:   "Folders",
			Version: h.renderer.version,
		},
		Folders:   folders,
		TurnCount: result.TurnCount,
	})
}

// HandleDetail handles GET /folders/{folder}/turns/{id}, showing one turn.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	folder := r.PathValue("folder")
	id := r.PathValue("id")
	if folder == "" || id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("folder and turn id are required"))
		return
	}

	result, err := ops.ListFolders(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	saved := result.Folders.Find(folder, id)
	if saved == nil {
		h.renderer.renderError(w, r, errors.NewTurnNotFound(folder, id))
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   folder,
			Version: h.renderer.version,
		},
		Folder:       folder,
		Turn:         *saved,
		RenderedHTML: renderMarkdown(saved.Response),
	})
}

// HandleDeleteTurn handles DELETE /folders/{folder}/turns/{id}.
func (h *Handlers) HandleDeleteTurn(w http.ResponseWriter, r *http.Request) {
	folder := r.PathValue("folder")
	id := r.PathValue("id")
	if folder == "" || id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("folder and turn id are required"))
		return
	}

	result, err := ops.DeleteTurn(h.db, ops.DeleteTurnInput{Folder: folder, ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/folders")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted":        result.Deleted,
			"id":             result.ID,
			"folder_removed": result.FolderRemoved,
		})
		return
	}

	http.Redirect(w, r, "/folders", http.StatusFound)
}

// HandleDeleteFolder handles POST /folders/{folder}/delete.
func (h *Handlers) HandleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	folder := r.PathValue("folder")
	if folder == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("folder is required"))
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.DeleteFolder(h.db, ops.DeleteFolderInput{Folder: folder})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/folders")
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"folder":  result.Folder,
			"removed": result.Removed,
		})
		return
	}

	http.Redirect(w, r, "/folders", http.StatusFound)
}

// HandleClearEmpty handles POST /turns/clear-empty.
func (h *Handlers) HandleClearEmpty(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ClearEmpty(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="clear-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"removed": result.Removed,
			"message": result.Message,
		})
		return
	}

	http.Redirect(w, r, "/folders", http.StatusFound)
}
