// Package notestore owns the canonical in-memory model of notes, folders,
// and recordings. Every mutation goes through the Store: it updates the
// in-memory collections, writes the affected collection through to the
// persistent store before returning, and notifies subscribers.
//
// Operations are total over well-formed input: mutating an unknown id is a
// no-op, not an error. Persistence write failures propagate to the caller;
// in-memory state is not rolled back, so memory and disk can diverge until
// the next successful write.
package notestore

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/voicecanvas/internal/apperr"
	"github.com/starford/voicecanvas/internal/audioprobe"
	"github.com/starford/voicecanvas/internal/ident"
	"github.com/starford/voicecanvas/internal/models"
)

// UntitledNote is the default title for freshly created notes.
const UntitledNote = "Untitled Note"

// Persister is the write-through persistence boundary for the two metadata
// collections.
type Persister interface {
	LoadNotes() []models.Note
	SaveNotes([]models.Note) error
	LoadFolders() []models.Folder
	SaveFolders([]models.Folder) error
}

// BlobRegistry is the audio payload keyspace.
type BlobRegistry interface {
	Put(id, payload string) error
	Get(id string) (string, bool)
	Delete(id string) error
}

// ChangeKind identifies which part of observable state changed.
type ChangeKind string

const (
	ChangeNotes     ChangeKind = "notes.changed"
	ChangeFolders   ChangeKind = "folders.changed"
	ChangeCurrent   ChangeKind = "current.changed"
	ChangeSelection ChangeKind = "selection.changed"
)

// Snapshot is a deep copy of the observable state at one point in time.
type Snapshot struct {
	Notes    []models.Note
	Folders  []models.Folder
	Current  *models.Note
	Selected []string
}

// Observer receives a snapshot after every state change, synchronously,
// before the triggering operation returns. Observers must not call back
// into the store.
type Observer func(kind ChangeKind, snap Snapshot)

// Store is the note/folder/recording model store.
type Store struct {
	mu        sync.Mutex
	persister Persister
	blobs     BlobRegistry
	prober    audioprobe.Prober
	logger    *slog.Logger

	now   func() time.Time
	newID func() string

	notes     []models.Note
	folders   []models.Folder
	currentID string
	selected  map[string]struct{}
	observers []Observer
}

// New creates a store over the given persistence boundary, blob registry,
// and duration prober.
func New(p Persister, blobs BlobRegistry, prober audioprobe.Prober, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		persister: p,
		blobs:     blobs,
		prober:    prober,
		logger:    logger,
		now:       time.Now,
		newID:     ident.New,
		notes:     []models.Note{},
		folders:   []models.Folder{},
		selected:  make(map[string]struct{}),
	}
}

// Load hydrates in-memory state from persistence. The first loaded note, if
// any, becomes the current note.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = s.persister.LoadNotes()
	s.folders = s.persister.LoadFolders()
	if len(s.notes) > 0 {
		s.currentID = s.notes[0].ID
	} else {
		s.currentID = ""
	}
	s.selected = make(map[string]struct{})
}

// Subscribe registers an observer for state changes.
func (s *Store) Subscribe(ob Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, ob)
}

// Blobs returns the audio blob registry backing this store.
func (s *Store) Blobs() BlobRegistry {
	return s.blobs
}

// --- read accessors (all return clones; store state never aliases out) ---

// Notes returns the notes collection in collection order.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneNotes(s.notes)
}

// Folders returns the folders collection.
func (s *Store) Folders() []models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneFolders(s.folders)
}

// Note returns the note with the given id.
func (s *Store) Note(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.noteIndexLocked(id); i >= 0 {
		return s.notes[i].Clone(), true
	}
	return models.Note{}, false
}

// CurrentNote returns the current note, or nil when none is set.
func (s *Store) CurrentNote() *models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentNoteLocked()
}

// SearchNotes returns notes whose title or content contains the query,
// case-insensitively, in collection order. An empty query matches nothing.
func (s *Store) SearchNotes(query string) []models.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Note{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Note{}
	for _, n := range s.notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n.Clone())
		}
	}
	return out
}

// --- note operations ---

// CreateNote allocates a new note, optionally filed into folderID, persists
// the collection, and makes the new note current.
func (s *Store) CreateNote(folderID string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	n := models.Note{
		ID:         s.newID(),
		Title:      UntitledNote,
		Content:    "",
		CreatedAt:  now,
		UpdatedAt:  now,
		Recordings: []models.Recording{},
		FolderID:   folderID,
	}
	s.notes = append(s.notes, n)
	s.currentID = n.ID

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	s.notifyLocked(ChangeCurrent)
	return n.Clone(), err
}

// UpdateNote replaces the stored note with the same id, stamping UpdatedAt
// unconditionally (the store is authoritative for that field). An unknown id
// is a no-op, but the collection is still persisted to keep the operation
// total.
func (s *Store) UpdateNote(n models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.noteIndexLocked(n.ID); i >= 0 {
		replaced := n.Clone()
		replaced.UpdatedAt = s.now().UnixMilli()
		if replaced.UpdatedAt < replaced.CreatedAt {
			replaced.UpdatedAt = replaced.CreatedAt
		}
		if replaced.Recordings == nil {
			replaced.Recordings = []models.Recording{}
		}
		s.notes[i] = replaced
	}

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	if s.currentID == n.ID {
		s.notifyLocked(ChangeCurrent)
	}
	return err
}

// DeleteNote removes the note, deleting its audio blobs first (best effort),
// dropping it from the selection set, and reassigning the current note to
// the first remaining note when the deleted note was current. Deleting an
// unknown id is a no-op.
func (s *Store) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteNotesLocked([]string{id})
}

// DeleteNotes is the bulk variant of DeleteNote: same blob cleanup and
// selection/current-note consequences per id, but exactly one persistence
// write for the resulting collection.
func (s *Store) DeleteNotes(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteNotesLocked(ids)
}

func (s *Store) deleteNotesLocked(ids []string) error {
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.noteIndexLocked(id) >= 0 {
			doomed[id] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return nil
	}

	kept := s.notes[:0:0]
	for _, n := range s.notes {
		if _, gone := doomed[n.ID]; !gone {
			kept = append(kept, n)
			continue
		}
		for _, rec := range n.Recordings {
			if err := s.blobs.Delete(rec.AudioURL); err != nil {
				s.logger.Warn("delete audio blob failed",
					slog.String("note", n.ID),
					slog.String("audio", rec.AudioURL),
					slog.String("error", err.Error()))
			}
		}
		delete(s.selected, n.ID)
	}
	s.notes = kept

	if _, gone := doomed[s.currentID]; gone {
		if len(s.notes) > 0 {
			s.currentID = s.notes[0].ID
		} else {
			s.currentID = ""
		}
	}

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	s.notifyLocked(ChangeSelection)
	s.notifyLocked(ChangeCurrent)
	return err
}

// --- folder operations ---

// CreateFolder creates a folder with the trimmed name. An empty trimmed name
// is rejected with apperr.ErrValidation.
func (s *Store) CreateFolder(name string) (models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, fmt.Errorf("folder name: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := models.Folder{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.now().UnixMilli(),
	}
	s.folders = append(s.folders, f)

	err := s.persistFoldersLocked()
	s.notifyLocked(ChangeFolders)
	return f.Clone(), err
}

// UpdateFolder renames a folder. An empty trimmed name is rejected with
// apperr.ErrValidation; an unknown id is a no-op.
func (s *Store) UpdateFolder(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("folder name: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.folders {
		if s.folders[i].ID == id {
			s.folders[i].Name = name
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	err := s.persistFoldersLocked()
	s.notifyLocked(ChangeFolders)
	return err
}

// DeleteFolder unfiles every note referencing the folder (one batched notes
// write), then removes the folder record (one folders write). Notes are
// unfiled first so a failure between the two writes never leaves a note
// pointing at a nonexistent folder. Notes themselves are never deleted.
func (s *Store) DeleteFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.folders {
		if s.folders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	unfiled := false
	now := s.now().UnixMilli()
	for i := range s.notes {
		if s.notes[i].FolderID == id {
			s.notes[i].FolderID = ""
			s.notes[i].UpdatedAt = now
			unfiled = true
		}
	}
	if unfiled {
		if err := s.persistNotesLocked(); err != nil {
			s.notifyLocked(ChangeNotes)
			return err
		}
		s.notifyLocked(ChangeNotes)
	}

	s.folders = append(s.folders[:idx], s.folders[idx+1:]...)
	err := s.persistFoldersLocked()
	s.notifyLocked(ChangeFolders)
	return err
}

// ReorderFolders moves the folder at sourceIndex to destIndex and reassigns
// every folder's Order to its new positional index, persisting once.
func (s *Store) ReorderFolders(sourceIndex, destIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sourceIndex < 0 || sourceIndex >= len(s.folders) || destIndex < 0 || destIndex >= len(s.folders) {
		return nil
	}

	moved := s.folders[sourceIndex]
	rest := append(s.folders[:sourceIndex:sourceIndex], s.folders[sourceIndex+1:]...)
	s.folders = append(rest[:destIndex:destIndex], append([]models.Folder{moved}, rest[destIndex:]...)...)
	for i := range s.folders {
		pos := i
		s.folders[i].Order = &pos
	}

	err := s.persistFoldersLocked()
	s.notifyLocked(ChangeFolders)
	return err
}

// ReorderNotes moves a note within one scope (a folder, or the unfiled set
// when scopeFolderID is empty) from sourceIndex to destIndex in display
// order, and assigns each scoped note's Order to its new positional index.
// Order is a dedicated field: reordering never touches UpdatedAt.
func (s *Store) ReorderNotes(sourceIndex, destIndex int, scopeFolderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := []int{} // indexes into s.notes, in display order
	for i := range s.notes {
		if s.notes[i].FolderID == scopeFolderID {
			scope = append(scope, i)
		}
	}
	sort.SliceStable(scope, func(a, b int) bool {
		return displayLess(s.notes[scope[a]], s.notes[scope[b]])
	})

	if sourceIndex < 0 || sourceIndex >= len(scope) || destIndex < 0 || destIndex >= len(scope) {
		return nil
	}

	moved := scope[sourceIndex]
	rest := append(scope[:sourceIndex:sourceIndex], scope[sourceIndex+1:]...)
	scope = append(rest[:destIndex:destIndex], append([]int{moved}, rest[destIndex:]...)...)
	for pos, i := range scope {
		p := pos
		s.notes[i].Order = &p
	}

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	return err
}

// SetCurrentNote switches the current note. Empty id clears it; an unknown
// id is a no-op.
func (s *Store) SetCurrentNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.noteIndexLocked(id) < 0 {
		return
	}
	s.currentID = id
	s.notifyLocked(ChangeCurrent)
}

// --- internal helpers ---

func (s *Store) noteIndexLocked(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) currentNoteLocked() *models.Note {
	if s.currentID == "" {
		return nil
	}
	if i := s.noteIndexLocked(s.currentID); i >= 0 {
		n := s.notes[i].Clone()
		return &n
	}
	return nil
}

func (s *Store) persistNotesLocked() error {
	if err := s.persister.SaveNotes(s.notes); err != nil {
		return fmt.Errorf("notestore: %w", err)
	}
	return nil
}

func (s *Store) persistFoldersLocked() error {
	if err := s.persister.SaveFolders(s.folders); err != nil {
		return fmt.Errorf("notestore: %w", err)
	}
	return nil
}

func (s *Store) notifyLocked(kind ChangeKind) {
	if len(s.observers) == 0 {
		return
	}
	snap := Snapshot{
		Notes:    models.CloneNotes(s.notes),
		Folders:  models.CloneFolders(s.folders),
		Current:  s.currentNoteLocked(),
		Selected: s.selectedLocked(),
	}
	for _, ob := range s.observers {
		ob(kind, snap)
	}
}

// displayLess orders notes the way list views display them: explicit Order
// first (ascending), then most recently updated.
func displayLess(a, b models.Note) bool {
	switch {
	case a.Order != nil && b.Order != nil:
		return *a.Order < *b.Order
	case a.Order != nil:
		return true
	case b.Order != nil:
		return false
	default:
		return a.UpdatedAt > b.UpdatedAt
	}
}
