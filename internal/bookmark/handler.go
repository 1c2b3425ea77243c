//go:build !js

package bookmark

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Draichi/canvas-ui/internal/auth"
	"github.com/Draichi/canvas-ui/internal/document"
	"github.com/Draichi/canvas-ui/internal/storage"
)

// Handler serves the signed-in user's bookmarks over REST. Each user owns
// the canvas named by their user id.
type Handler struct {
	store storage.Store
}

func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) service(r *http.Request) *Service {
	return ForCanvas(h.store, auth.UserIDFromContext(r.Context()))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.service(r).ListBookmarks(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarks)
}

// Create bookmarks the snapshot in the request body, or the working state
// when the body is empty.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	svc := h.service(r)

	var snap *document.Snapshot
	if r.ContentLength != 0 {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		decoded, err := document.DecodeSnapshot(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid snapshot"})
			return
		}
		snap = decoded
	} else {
		snap = svc.LoadWorkingState(r.Context())
	}

	id, err := svc.CreateBookmark(r.Context(), snap)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Bookmark{ID: id, State: snap})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["bookmarkId"]

	snap, err := h.service(r).LoadBookmark(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Bookmark{ID: id, State: snap})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["bookmarkId"]

	if err := h.service(r).DeleteBookmark(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetWorkingState returns the last saved working state.
func (h *Handler) GetWorkingState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service(r).LoadWorkingState(r.Context()))
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookmarkNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
