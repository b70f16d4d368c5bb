package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/voicecanvas/internal/apperr"
	"github.com/starford/voicecanvas/internal/audiostore"
	"github.com/starford/voicecanvas/internal/models"
)

// RecordingData is what the capture collaborator supplies for a completed
// recording. The payload must already exist in the blob registry under
// AudioURL before SaveRecording is called.
type RecordingData struct {
	AudioURL  string
	Duration  float64
	Timestamp int
	CreatedAt int64
}

// SaveRecording appends a new recording to the target note, stamping the
// note's UpdatedAt. An unknown noteID is a no-op. A negative or non-finite
// duration is rejected with apperr.ErrValidation.
func (s *Store) SaveRecording(noteID string, data RecordingData, name string) error {
	_, err := s.saveRecording(noteID, data, name)
	return err
}

// saveRecording additionally reports whether the recording was appended, so
// callers that own a blob can tell a successful save from an unknown-note
// no-op.
func (s *Store) saveRecording(noteID string, data RecordingData, name string) (bool, error) {
	if data.Duration < 0 || math.IsNaN(data.Duration) || math.IsInf(data.Duration, 0) {
		return false, fmt.Errorf("recording duration: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.noteIndexLocked(noteID)
	if i < 0 {
		return false, nil
	}

	createdAt := data.CreatedAt
	if createdAt == 0 {
		createdAt = s.now().UnixMilli()
	}
	if name == "" {
		name = "Recording " + time.UnixMilli(createdAt).Format("2006-01-02 15:04")
	}

	rec := models.Recording{
		ID:        s.newID(),
		Name:      name,
		AudioURL:  data.AudioURL,
		Duration:  data.Duration,
		Timestamp: data.Timestamp,
		CreatedAt: createdAt,
	}
	s.notes[i].Recordings = append(s.notes[i].Recordings, rec)
	s.notes[i].UpdatedAt = s.now().UnixMilli()

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	if s.currentID == noteID {
		s.notifyLocked(ChangeCurrent)
	}
	return true, err
}

// UpdateRecording merges the patch into the matching recording and stamps
// the owning note's UpdatedAt. Unknown note or recording ids are no-ops.
func (s *Store) UpdateRecording(noteID, recordingID string, patch models.RecordingPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.noteIndexLocked(noteID)
	if i < 0 {
		return nil
	}
	found := false
	for j := range s.notes[i].Recordings {
		if s.notes[i].Recordings[j].ID == recordingID {
			if patch.Name != nil {
				s.notes[i].Recordings[j].Name = *patch.Name
			}
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	s.notes[i].UpdatedAt = s.now().UnixMilli()

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	if s.currentID == noteID {
		s.notifyLocked(ChangeCurrent)
	}
	return err
}

// DeleteRecording deletes the recording's audio blob (best effort), removes
// the recording from the note, and stamps the note's UpdatedAt.
func (s *Store) DeleteRecording(noteID, recordingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.noteIndexLocked(noteID)
	if i < 0 {
		return nil
	}
	idx := -1
	for j := range s.notes[i].Recordings {
		if s.notes[i].Recordings[j].ID == recordingID {
			idx = j
			break
		}
	}
	if idx < 0 {
		return nil
	}

	rec := s.notes[i].Recordings[idx]
	if err := s.blobs.Delete(rec.AudioURL); err != nil {
		s.logger.Warn("delete audio blob failed",
			slog.String("note", noteID),
			slog.String("audio", rec.AudioURL),
			slog.String("error", err.Error()))
	}
	s.notes[i].Recordings = append(s.notes[i].Recordings[:idx], s.notes[i].Recordings[idx+1:]...)
	s.notes[i].UpdatedAt = s.now().UnixMilli()

	err := s.persistNotesLocked()
	s.notifyLocked(ChangeNotes)
	if s.currentID == noteID {
		s.notifyLocked(ChangeCurrent)
	}
	return err
}

// ImportRecording stores an audio file's bytes in the blob registry, probes
// the payload for its playable duration, and appends the resulting recording
// to the note. The probe is the only suspension point in the store: no lock
// is held across it and the in-memory model stays fully consistent while it
// runs.
//
// Failure modes are distinct: a non-audio payload is rejected with
// apperr.ErrValidation, a registry write failure propagates as is, a probe
// failure wraps apperr.ErrDecode, and a note deleted while the probe ran
// wraps apperr.ErrNotFound. On the last two the already-stored blob is
// removed so no orphan payload survives a failed import.
func (s *Store) ImportRecording(ctx context.Context, noteID string, fileBytes []byte, mimeType, suggestedName string) error {
	if !strings.HasPrefix(mimeType, "audio/") {
		return fmt.Errorf("import %q: %w", mimeType, apperr.ErrValidation)
	}
	if _, ok := s.Note(noteID); !ok {
		return nil
	}

	audioID := s.newID()
	if err := s.blobs.Put(audioID, audiostore.EncodePayload(mimeType, fileBytes)); err != nil {
		return fmt.Errorf("store audio payload: %w", err)
	}

	duration, err := s.prober.Probe(ctx, fileBytes, mimeType)
	if err != nil {
		if delErr := s.blobs.Delete(audioID); delErr != nil {
			s.logger.Warn("cleanup after failed probe",
				slog.String("audio", audioID),
				slog.String("error", delErr.Error()))
		}
		return fmt.Errorf("probe duration: %w", err)
	}

	name := strings.TrimSuffix(suggestedName, filepath.Ext(suggestedName))
	appended, err := s.saveRecording(noteID, RecordingData{
		AudioURL:  audioID,
		Duration:  duration,
		Timestamp: 0,
		CreatedAt: s.now().UnixMilli(),
	}, name)
	if err != nil {
		return err
	}
	if !appended {
		// The note was deleted while the probe ran. Drop the blob rather
		// than orphan it.
		if delErr := s.blobs.Delete(audioID); delErr != nil {
			s.logger.Warn("cleanup after vanished note",
				slog.String("audio", audioID),
				slog.String("error", delErr.Error()))
		}
		return fmt.Errorf("note %s: %w", noteID, apperr.ErrNotFound)
	}
	return nil
}

// ExportRecording returns the encoded payload for the recording, or
// apperr.ErrNotFound when the blob is no longer in the registry.
func (s *Store) ExportRecording(rec models.Recording) (string, error) {
	payload, ok := s.blobs.Get(rec.AudioURL)
	if !ok {
		return "", fmt.Errorf("recording %s: %w", rec.ID, apperr.ErrNotFound)
	}
	return payload, nil
}
