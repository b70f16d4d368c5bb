package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/voicecanvas/internal/apperr"
)

// ListFolders handles GET /api/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"folders": h.store.Folders()})
}

// CreateFolder handles POST /api/folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	folder, err := h.store.CreateFolder(req.Name)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody("folder name is required"))
			return
		}
		slog.Error("create folder failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// UpdateFolder handles PUT /api/folders/{id}: rename.
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")
	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.UpdateFolder(id, req.Name); err != nil {
		status := statusForStoreErr(err)
		if status == http.StatusInternalServerError {
			slog.Error("update folder failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, status, errorBody("persist failed"))
			return
		}
		writeJSON(w, status, errorBody("folder name is required"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFolder handles DELETE /api/folders/{id}. Notes in the folder are
// unfiled, never deleted.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteFolder(id); err != nil {
		slog.Error("delete folder failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderFolders handles POST /api/folders/reorder.
func (h *Handler) ReorderFolders(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.ReorderFolders(req.SourceIndex, req.DestIndex); err != nil {
		slog.Error("reorder folders failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
