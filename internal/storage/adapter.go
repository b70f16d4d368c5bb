package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starford/voicecanvas/internal/models"
)

// Persisted key layout. Collections are JSON arrays under fixed keys; audio
// payloads live in their own keyspace so note metadata writes never rewrite
// large binary payloads.
const (
	notesKey       = "voice-canvas-notes"
	foldersKey     = "voice-canvas-folders"
	audioKeyPrefix = "audio-"
)

// Adapter is the persistent store adapter: whole-collection JSON reads and
// writes over a KV, plus the audio keyspace. It holds no business logic.
//
// Reads fail soft: malformed or unreadable data is logged and an empty
// collection is returned, never a parse error.
type Adapter struct {
	kv     KV
	logger *slog.Logger
}

// NewAdapter creates an adapter over kv.
func NewAdapter(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// LoadNotes returns all persisted notes, or an empty slice when the key is
// absent or the stored JSON is corrupt.
func (a *Adapter) LoadNotes() []models.Note {
	notes := loadCollection[models.Note](a, notesKey)
	for i := range notes {
		if notes[i].Recordings == nil {
			notes[i].Recordings = []models.Recording{}
		}
	}
	return notes
}

// SaveNotes replaces the whole persisted notes collection.
func (a *Adapter) SaveNotes(notes []models.Note) error {
	return a.saveCollection(notesKey, notes)
}

// LoadFolders returns all persisted folders, or an empty slice when the key
// is absent or the stored JSON is corrupt.
func (a *Adapter) LoadFolders() []models.Folder {
	return loadCollection[models.Folder](a, foldersKey)
}

// SaveFolders replaces the whole persisted folders collection.
func (a *Adapter) SaveFolders(folders []models.Folder) error {
	return a.saveCollection(foldersKey, folders)
}

// LoadAudio returns the payload stored under the audio id, and whether it
// exists. Read failures are logged and reported as absent.
func (a *Adapter) LoadAudio(id string) (string, bool) {
	v, ok, err := a.kv.Get(audioKeyPrefix + id)
	if err != nil {
		a.logger.Warn("load audio failed", slog.String("id", id), slog.String("error", err.Error()))
		return "", false
	}
	return v, ok
}

// SaveAudio stores the payload under the audio id.
func (a *Adapter) SaveAudio(id, payload string) error {
	if err := a.kv.Put(audioKeyPrefix+id, payload); err != nil {
		return fmt.Errorf("save audio %s: %w", id, err)
	}
	return nil
}

// DeleteAudio removes the payload stored under the audio id.
func (a *Adapter) DeleteAudio(id string) error {
	if err := a.kv.Delete(audioKeyPrefix + id); err != nil {
		return fmt.Errorf("delete audio %s: %w", id, err)
	}
	return nil
}

func loadCollection[T any](a *Adapter, key string) []T {
	raw, ok, err := a.kv.Get(key)
	if err != nil {
		a.logger.Warn("load collection failed", slog.String("key", key), slog.String("error", err.Error()))
		return []T{}
	}
	if !ok {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		a.logger.Warn("corrupt collection, starting empty", slog.String("key", key), slog.String("error", err.Error()))
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func (a *Adapter) saveCollection(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.kv.Put(key, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
