package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// GetSelection handles GET /api/selection.
func (h *Handler) GetSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SelectionResponse{Selected: h.store.Selected()})
}

// ToggleSelect handles POST /api/selection/toggle.
func (h *Handler) ToggleSelect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ToggleSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.ToggleSelect(req.ID)
	writeJSON(w, http.StatusOK, SelectionResponse{Selected: h.store.Selected()})
}

// SelectAll handles POST /api/selection/all.
func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SelectAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.SelectAll(req.FolderID)
	writeJSON(w, http.StatusOK, SelectionResponse{Selected: h.store.Selected()})
}

// SelectRange handles POST /api/selection/range.
func (h *Handler) SelectRange(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SelectRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.SelectRange(req.AnchorID, req.TargetID, req.Ordered)
	writeJSON(w, http.StatusOK, SelectionResponse{Selected: h.store.Selected()})
}

// ClearSelection handles DELETE /api/selection.
func (h *Handler) ClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// MoveSelection handles POST /api/selection/move: files every selected note
// into the target folder and clears the selection.
func (h *Handler) MoveSelection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req MoveSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.MoveSelectedToFolder(req.FolderID); err != nil {
		slog.Error("move selection failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSelection handles POST /api/selection/delete: deletes every selected
// note and clears the selection.
func (h *Handler) DeleteSelection(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.DeleteSelected(); err != nil {
		slog.Error("delete selection failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("persist failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
