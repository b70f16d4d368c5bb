package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/voicecanvas/internal/notestore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *notestore.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/current", h.GetCurrentNote)
	r.Put("/notes/current", h.SetCurrentNote)
	r.Post("/notes/bulk-delete", h.BulkDeleteNotes)
	r.Post("/notes/reorder", h.ReorderNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Get("/notes/{id}/export", h.ExportNoteText)

	// Recordings (note-scoped: recordings have no independent lifecycle).
	r.Post("/notes/{id}/recordings", h.SaveRecording)
	r.Post("/notes/{id}/recordings/import", h.ImportRecording)
	r.Patch("/notes/{id}/recordings/{rid}", h.RenameRecording)
	r.Delete("/notes/{id}/recordings/{rid}", h.DeleteRecording)
	r.Get("/notes/{id}/recordings/{rid}/export", h.ExportRecording)

	// Folders.
	r.Get("/folders", h.ListFolders)
	r.Post("/folders", h.CreateFolder)
	r.Post("/folders/reorder", h.ReorderFolders)
	r.Put("/folders/{id}", h.UpdateFolder)
	r.Delete("/folders/{id}", h.DeleteFolder)

	// Selection and bulk intents.
	r.Get("/selection", h.GetSelection)
	r.Delete("/selection", h.ClearSelection)
	r.Post("/selection/toggle", h.ToggleSelect)
	r.Post("/selection/all", h.SelectAll)
	r.Post("/selection/range", h.SelectRange)
	r.Post("/selection/move", h.MoveSelection)
	r.Post("/selection/delete", h.DeleteSelection)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
