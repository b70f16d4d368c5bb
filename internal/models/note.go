// Package models defines the domain types for Voice Canvas.
package models

// Note represents a user-authored text entry, optionally filed into a folder,
// that owns zero or more voice recordings. Timestamps are milliseconds since
// the Unix epoch, matching the persisted JSON layout.
type Note struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
	Recordings []Recording `json:"recordings"`
	FolderID   string      `json:"folderId,omitempty"`
	Order      *int        `json:"order,omitempty"`
}

// Recording is a voice memo attached to a note. AudioURL is an opaque
// identifier into the audio blob registry, not a literal URL. Timestamp is
// the cursor position in the note's content where the recording was inserted.
type Recording struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AudioURL  string  `json:"audioUrl"`
	Duration  float64 `json:"duration"`
	Timestamp int     `json:"timestamp"`
	CreatedAt int64   `json:"createdAt"`
}

// Folder is a named grouping of notes. Folders do not own notes: a note
// references its folder by id and survives folder deletion.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	Order     *int   `json:"order,omitempty"`
}

// RecordingPatch enumerates the mutable fields of a Recording. Only the
// display name may change after creation.
type RecordingPatch struct {
	Name *string
}

// Clone returns a deep copy of the note, including its recordings slice.
func (n Note) Clone() Note {
	out := n
	out.Recordings = make([]Recording, len(n.Recordings))
	copy(out.Recordings, n.Recordings)
	if n.Order != nil {
		v := *n.Order
		out.Order = &v
	}
	return out
}

// Clone returns a copy of the folder.
func (f Folder) Clone() Folder {
	out := f
	if f.Order != nil {
		v := *f.Order
		out.Order = &v
	}
	return out
}

// CloneNotes deep-copies a notes slice.
func CloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

// CloneFolders copies a folders slice.
func CloneFolders(folders []Folder) []Folder {
	out := make([]Folder, len(folders))
	for i, f := range folders {
		out[i] = f.Clone()
	}
	return out
}
