package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/REGINA562/new-project/internal/storage"
	"github.com/REGINA562/new-project/internal/uploads"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FilesHandler serves stored uploads. Files are addressed only by their
// generated storage name; anything else is a 404.
type FilesHandler struct {
	site  *Site
	store storage.ObjectStorage
}

func NewFilesHandler(site *Site, store storage.ObjectStorage) *FilesHandler {
	return &FilesHandler{site: site, store: store}
}

// FilesRouter registers the upload-serving route.
func FilesRouter(r chi.Router, site *Site, store storage.ObjectStorage) {
	handler := NewFilesHandler(site, store)
	r.Get("/{name}", handler.ServeFile)
}

func (h *FilesHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !isStorageName(name) {
		h.site.renderError(w, r, http.StatusNotFound, "file not found")
		return
	}

	f, err := h.store.Get(r.Context(), name)
	if err != nil {
		h.site.renderError(w, r, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", uploads.ContentType(name))
	if _, err := io.Copy(w, f); err != nil {
		// Headers are gone by now; just record it.
		h.site.Logger.Warn("serve upload interrupted")
	}
}

// isStorageName reports whether the name has the shape our namer
// produces: a UUID followed by an allow-listed extension.
func isStorageName(name string) bool {
	if !uploads.Allowed(name) {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	_, err := uuid.Parse(stem)
	return err == nil
}
