package api

import "github.com/starford/voicecanvas/internal/models"

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	FolderID string `json:"folderId"`
}

// UpdateNoteRequest is the full-record replacement body for a note. Absent
// recordings means "keep the stored recordings".
type UpdateNoteRequest struct {
	Title      string             `json:"title"`
	Content    string             `json:"content"`
	FolderID   string             `json:"folderId"`
	Recordings []models.Recording `json:"recordings"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// SaveRecordingRequest is what the capture collaborator posts after a
// completed recording. The payload must already be in the blob registry
// under AudioURL.
type SaveRecordingRequest struct {
	AudioURL  string  `json:"audioUrl"`
	Duration  float64 `json:"duration"`
	Timestamp int     `json:"timestamp"`
	CreatedAt int64   `json:"createdAt"`
	Name      string  `json:"name"`
}

// RenameRecordingRequest carries the one mutable recording field.
type RenameRecordingRequest struct {
	Name string `json:"name"`
}

// FolderRequest is the body for creating or renaming a folder.
type FolderRequest struct {
	Name string `json:"name"`
}

// ReorderRequest moves an item from SourceIndex to DestIndex within one
// display scope. FolderID scopes note reorders; folders ignore it.
type ReorderRequest struct {
	SourceIndex int    `json:"sourceIndex"`
	DestIndex   int    `json:"destIndex"`
	FolderID    string `json:"folderId"`
}

// SelectionResponse lists the selected note ids.
type SelectionResponse struct {
	Selected []string `json:"selected"`
}

// ToggleSelectRequest toggles one note id in the selection.
type ToggleSelectRequest struct {
	ID string `json:"id"`
}

// SelectAllRequest scopes select-all to a folder (empty = all notes).
type SelectAllRequest struct {
	FolderID string `json:"folderId"`
}

// SelectRangeRequest selects the inclusive range between anchor and target
// within the caller-supplied display order.
type SelectRangeRequest struct {
	AnchorID string   `json:"anchorId"`
	TargetID string   `json:"targetId"`
	Ordered  []string `json:"ordered"`
}

// MoveSelectionRequest files every selected note into FolderID.
type MoveSelectionRequest struct {
	FolderID string `json:"folderId"`
}

// BulkDeleteRequest deletes the listed notes in one operation.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}
