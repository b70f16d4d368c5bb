package notestore

import "sort"

// Selection tracks the set of note ids marked for a bulk operation. The set
// only ever contains ids present in the notes collection; deleting a note
// drops it from the selection in the same operation.

// ToggleSelect adds or removes a note id from the selection. Unknown ids
// are ignored.
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noteIndexLocked(id) < 0 {
		return
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	s.notifyLocked(ChangeSelection)
}

// SelectAll selects every note in the given folder, or every note when
// folderID is empty, replacing the prior selection.
func (s *Store) SelectAll(folderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
	for _, n := range s.notes {
		if folderID == "" || n.FolderID == folderID {
			s.selected[n.ID] = struct{}{}
		}
	}
	s.notifyLocked(ChangeSelection)
}

// SelectRange replaces the selection with the contiguous range between
// anchorID and targetID (inclusive) within the caller-supplied display
// order. The store does not own display ordering, so the caller provides
// it. If either endpoint is missing from the list, nothing changes.
func (s *Store) SelectRange(anchorID, targetID string, ordered []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, b := -1, -1
	for i, id := range ordered {
		if id == anchorID {
			a = i
		}
		if id == targetID {
			b = i
		}
	}
	if a < 0 || b < 0 {
		return
	}
	if a > b {
		a, b = b, a
	}

	s.selected = make(map[string]struct{})
	for _, id := range ordered[a : b+1] {
		if s.noteIndexLocked(id) >= 0 {
			s.selected[id] = struct{}{}
		}
	}
	s.notifyLocked(ChangeSelection)
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
	s.notifyLocked(ChangeSelection)
}

// Selected returns the selected note ids, sorted for determinism.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Store) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MoveSelectedToFolder files every selected note into folderID (empty means
// unfiled), stamping UpdatedAt and persisting the collection once. The
// selection is cleared unconditionally, even when the persistence write
// fails.
func (s *Store) MoveSelectedToFolder(folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	for i := range s.notes {
		if _, ok := s.selected[s.notes[i].ID]; ok {
			s.notes[i].FolderID = folderID
			s.notes[i].UpdatedAt = now
		}
	}
	s.selected = make(map[string]struct{})

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	s.notifyLocked(ChangeSelection)
	return err
}

// DeleteSelected deletes every selected note, with the same blob cleanup and
// current-note consequences as DeleteNotes, then clears the selection
// unconditionally.
func (s *Store) DeleteSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.selectedLocked()
	err := s.deleteNotesLocked(ids)
	if len(s.selected) > 0 {
		s.selected = make(map[string]struct{})
		s.notifyLocked(ChangeSelection)
	}
	return err
}
