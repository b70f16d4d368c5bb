package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/voicecanvas/internal/apperr"
	"github.com/starford/voicecanvas/internal/export"
	"github.com/starford/voicecanvas/internal/models"
	"github.com/starford/voicecanvas/internal/notestore"
)

const maxBodyBytes = 10 << 20 // 10 MB

// Handler holds API route handlers over the model store.
type Handler struct {
	store *notestore.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *notestore.Store) *Handler {
	return &Handler{store: store}
}

// ListNotes handles GET /api/notes. With ?q= it runs a substring search;
// with ?folder= it filters by folder id.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	folder := r.URL.Query().Get("folder")

	var notes []models.Note
	if q != "" {
		notes = h.store.SearchNotes(q)
	} else {
		notes = h.store.Notes()
	}
	if folder != "" {
		filtered := notes[:0]
		for _, n := range notes {
			if n.FolderID == folder {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.store.CreateNote(req.FolderID)
	if err != nil {
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, ok := h.store.Note(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/notes/{id}: full-record replace.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	existing, ok := h.store.Note(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	n := existing
	n.Title = req.Title
	n.Content = req.Content
	n.FolderID = req.FolderID
	if req.Recordings != nil {
		n.Recordings = req.Recordings
	}

	if err := h.store.UpdateNote(n); err != nil {
		slog.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	updated, _ := h.store.Note(id)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteNote handles DELETE /api/notes/{id}. Deleting an unknown id is
// idempotent and still reports success.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteNote(id); err != nil {
		slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteNotes handles POST /api/notes/bulk-delete.
func (h *Handler) BulkDeleteNotes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.DeleteNotes(req.IDs); err != nil {
		slog.Error("bulk delete failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderNotes handles POST /api/notes/reorder.
func (h *Handler) ReorderNotes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.ReorderNotes(req.SourceIndex, req.DestIndex, req.FolderID); err != nil {
		slog.Error("reorder notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentNote handles GET /api/notes/current.
func (h *Handler) GetCurrentNote(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"note": h.store.CurrentNote()})
}

// SetCurrentNote handles PUT /api/notes/current.
func (h *Handler) SetCurrentNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ToggleSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.SetCurrentNote(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ExportNoteText handles GET /api/notes/{id}/export: the note as a plain
// text download.
func (h *Handler) ExportNoteText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, ok := h.store.Note(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	filename := export.TimestampedFilename(note.Title, note.UpdatedAt, ".txt")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteNoteText(w, note); err != nil {
		slog.Error("export note failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// statusForStoreErr maps store error taxonomy to HTTP status codes.
func statusForStoreErr(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrDecode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
