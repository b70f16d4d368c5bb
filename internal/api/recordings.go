package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/voicecanvas/internal/export"
	"github.com/starford/voicecanvas/internal/models"
	"github.com/starford/voicecanvas/internal/notestore"
)

const maxImportBytes = 50 << 20 // 50 MB

// SaveRecording handles POST /api/notes/{id}/recordings. The capture
// collaborator must have stored the payload in the blob registry before
// calling this.
func (h *Handler) SaveRecording(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	noteID := chi.URLParam(r, "id")
	if _, ok := h.store.Note(noteID); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	var req SaveRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.AudioURL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("audioUrl is required"))
		return
	}

	err := h.store.SaveRecording(noteID, notestore.RecordingData{
		AudioURL:  req.AudioURL,
		Duration:  req.Duration,
		Timestamp: req.Timestamp,
		CreatedAt: req.CreatedAt,
	}, req.Name)
	if err != nil {
		status := statusForStoreErr(err)
		if status == http.StatusInternalServerError {
			slog.Error("save recording failed", slog.String("note", noteID), slog.String("error", err.Error()))
			writeJSON(w, status, errorBody("persist failed"))
			return
		}
		writeJSON(w, status, errorBody("invalid recording"))
		return
	}
	note, _ := h.store.Note(noteID)
	writeJSON(w, http.StatusCreated, note)
}

// RenameRecording handles PATCH /api/notes/{id}/recordings/{rid}.
func (h *Handler) RenameRecording(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	noteID := chi.URLParam(r, "id")
	recID := chi.URLParam(r, "rid")

	var req RenameRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	patch := models.RecordingPatch{Name: &req.Name}
	if err := h.store.UpdateRecording(noteID, recID, patch); err != nil {
		slog.Error("rename recording failed", slog.String("note", noteID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRecording handles DELETE /api/notes/{id}/recordings/{rid}.
func (h *Handler) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")
	recID := chi.URLParam(r, "rid")
	if err := h.store.DeleteRecording(noteID, recID); err != nil {
		slog.Error("delete recording failed", slog.String("note", noteID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportRecording handles POST /api/notes/{id}/recordings/import
// (multipart/form-data, field "file").
func (h *Handler) ImportRecording(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	noteID := chi.URLParam(r, "id")
	if _, ok := h.store.Note(noteID); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	if err := h.store.ImportRecording(r.Context(), noteID, data, mimeType, header.Filename); err != nil {
		status := statusForStoreErr(err)
		if status == http.StatusInternalServerError {
			slog.Error("import recording failed", slog.String("note", noteID), slog.String("error", err.Error()))
			writeJSON(w, status, errorBody("import failed"))
			return
		}
		writeJSON(w, status, errorBody(err.Error()))
		return
	}
	note, _ := h.store.Note(noteID)
	writeJSON(w, http.StatusCreated, note)
}

// ExportRecording handles GET /api/notes/{id}/recordings/{rid}/export:
// the raw audio payload as a download.
func (h *Handler) ExportRecording(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")
	recID := chi.URLParam(r, "rid")

	note, ok := h.store.Note(noteID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	var rec *models.Recording
	for i := range note.Recordings {
		if note.Recordings[i].ID == recID {
			rec = &note.Recordings[i]
			break
		}
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	// Buffer the body so headers can carry the decoded media type.
	var buf bytes.Buffer
	mimeType, err := export.WriteRecording(&buf, h.store.Blobs(), *rec)
	if err != nil {
		status := statusForStoreErr(err)
		if status == http.StatusInternalServerError {
			slog.Error("export recording failed", slog.String("note", noteID), slog.String("error", err.Error()))
			writeJSON(w, status, errorBody("export failed"))
			return
		}
		writeJSON(w, status, errorBody("recording data not available"))
		return
	}

	name := rec.Name
	if name == "" {
		name = "recording"
	}
	ext := ".webm"
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		ext = exts[0]
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+ext+`"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("export recording failed", slog.String("note", noteID), slog.String("error", err.Error()))
	}
}
