package notestore

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/starford/voicecanvas/internal/apperr"
	"github.com/starford/voicecanvas/internal/models"
)

func TestSaveRecording(t *testing.T) {
	s, _, _ := newTestStore(t)

	n, _ := s.CreateNote("")
	before, _ := s.Note(n.ID)

	if err := s.SaveRecording(n.ID, RecordingData{
		AudioURL:  "blob-1",
		Duration:  2.5,
		Timestamp: 42,
		CreatedAt: 1700000100000,
	}, "Standup"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Note(n.ID)
	if len(got.Recordings) != 1 {
		t.Fatalf("recordings = %d", len(got.Recordings))
	}
	rec := got.Recordings[0]
	if rec.Name != "Standup" || rec.AudioURL != "blob-1" || rec.Duration != 2.5 || rec.Timestamp != 42 {
		t.Errorf("recording = %+v", rec)
	}
	if rec.ID == "" {
		t.Error("recording has no id")
	}
	if got.UpdatedAt <= before.UpdatedAt {
		t.Error("note not stamped")
	}
}

func TestSaveRecordingDefaultName(t *testing.T) {
	s, _, _ := newTestStore(t)

	n, _ := s.CreateNote("")
	if err := s.SaveRecording(n.ID, RecordingData{AudioURL: "b", Duration: 1, CreatedAt: 1700000000000}, ""); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Note(n.ID)
	name := got.Recordings[0].Name
	if !strings.HasPrefix(name, "Recording ") {
		t.Errorf("default name = %q", name)
	}
	// The suffix is a local date and minute, e.g. "2023-11-14 22:13".
	if len(name) != len("Recording 2006-01-02 15:04") {
		t.Errorf("default name shape = %q", name)
	}
}

func TestSaveRecordingValidation(t *testing.T) {
	s, _, _ := newTestStore(t)

	n, _ := s.CreateNote("")
	for _, dur := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := s.SaveRecording(n.ID, RecordingData{AudioURL: "b", Duration: dur}, "x")
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("duration %v: expected validation error, got %v", dur, err)
		}
	}
	got, _ := s.Note(n.ID)
	if len(got.Recordings) != 0 {
		t.Error("invalid recording was appended")
	}
}

func TestSaveRecordingUnknownNoteNoOp(t *testing.T) {
	s, p, _ := newTestStore(t)

	saves := p.noteSaves
	if err := s.SaveRecording("ghost", RecordingData{AudioURL: "b", Duration: 1}, "x"); err != nil {
		t.Fatal(err)
	}
	if p.noteSaves != saves {
		t.Error("unknown note triggered a write")
	}
}

func TestUpdateRecordingRename(t *testing.T) {
	s, _, _ := newTestStore(t)

	n, _ := s.CreateNote("")
	if err := s.SaveRecording(n.ID, RecordingData{AudioURL: "b", Duration: 1}, "Old"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Note(n.ID)
	recID := got.Recordings[0].ID
	before := got.UpdatedAt

	newName := "Renamed"
	if err := s.UpdateRecording(n.ID, recID, models.RecordingPatch{Name: &newName}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Note(n.ID)
	if got.Recordings[0].Name != "Renamed" {
		t.Errorf("name = %q", got.Recordings[0].Name)
	}
	if got.UpdatedAt <= before {
		t.Error("note not stamped")
	}

	// Unknown recording id is a no-op.
	if err := s.UpdateRecording(n.ID, "ghost", models.RecordingPatch{Name: &newName}); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteRecording(t *testing.T) {
	s, _, blobs := newTestStore(t)

	n, _ := s.CreateNote("")
	blobs.payloads["b1"] = "p"
	if err := s.SaveRecording(n.ID, RecordingData{AudioURL: "b1", Duration: 1}, "x"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Note(n.ID)
	recID := got.Recordings[0].ID

	if err := s.DeleteRecording(n.ID, recID); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Note(n.ID)
	if len(got.Recordings) != 0 {
		t.Error("recording survived")
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "b1" {
		t.Errorf("blob cleanup: %v", blobs.deleted)
	}

	// Deleting again is a no-op.
	if err := s.DeleteRecording(n.ID, recID); err != nil {
		t.Fatal(err)
	}
}

func TestImportRecording(t *testing.T) {
	s, _, blobs := newTestStore(t)

	n, _ := s.CreateNote("")
	err := s.ImportRecording(context.Background(), n.ID, []byte("wav-bytes"), "audio/wav", "standup.wav")
	if err != nil {
		t.Fatal(err)
	}

	got, _ := s.Note(n.ID)
	if len(got.Recordings) != 1 {
		t.Fatalf("recordings = %d", len(got.Recordings))
	}
	rec := got.Recordings[0]
	if rec.Name != "standup" {
		t.Errorf("name = %q, extension not stripped", rec.Name)
	}
	if rec.Duration != 1.5 {
		t.Errorf("duration = %v, want prober value", rec.Duration)
	}
	payload, ok := blobs.Get(rec.AudioURL)
	if !ok {
		t.Fatal("blob missing")
	}
	if !strings.HasPrefix(payload, "data:audio/wav;base64,") {
		t.Errorf("payload = %q", payload)
	}
}

func TestImportRecordingRejectsNonAudio(t *testing.T) {
	s, _, blobs := newTestStore(t)

	n, _ := s.CreateNote("")
	err := s.ImportRecording(context.Background(), n.ID, []byte("x"), "text/plain", "notes.txt")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(blobs.payloads) != 0 {
		t.Error("blob stored for rejected import")
	}
}

func TestImportRecordingUnknownNoteNoOp(t *testing.T) {
	s, _, blobs := newTestStore(t)

	if err := s.ImportRecording(context.Background(), "ghost", []byte("x"), "audio/wav", "a.wav"); err != nil {
		t.Fatal(err)
	}
	if len(blobs.payloads) != 0 {
		t.Error("blob stored for unknown note")
	}
}

func TestImportRecordingProbeFailureCleansBlob(t *testing.T) {
	s, _, blobs := newTestStore(t)
	s.prober = fixedProber{err: errors.New("unreadable")}

	n, _ := s.CreateNote("")
	err := s.ImportRecording(context.Background(), n.ID, []byte("x"), "audio/wav", "a.wav")
	if err == nil {
		t.Fatal("expected probe error")
	}
	if len(blobs.payloads) != 0 {
		t.Error("orphan blob survived failed probe")
	}
	got, _ := s.Note(n.ID)
	if len(got.Recordings) != 0 {
		t.Error("recording appended despite failed probe")
	}
}

// noteDeletingProber deletes the target note while the probe is in flight,
// exercising the suspension point between blob store and recording append.
type noteDeletingProber struct {
	store  *Store
	noteID string
}

func (p *noteDeletingProber) Probe(context.Context, []byte, string) (float64, error) {
	if err := p.store.DeleteNote(p.noteID); err != nil {
		return 0, err
	}
	return 1.0, nil
}

func TestImportRecordingNoteDeletedDuringProbe(t *testing.T) {
	s, _, blobs := newTestStore(t)

	n, _ := s.CreateNote("")
	s.prober = &noteDeletingProber{store: s, noteID: n.ID}

	err := s.ImportRecording(context.Background(), n.ID, []byte("x"), "audio/wav", "a.wav")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(blobs.payloads) != 0 {
		t.Error("orphan blob survived import onto a deleted note")
	}
	if len(s.Notes()) != 0 {
		t.Error("note resurrected")
	}
}

func TestExportRecording(t *testing.T) {
	s, _, blobs := newTestStore(t)

	blobs.payloads["b1"] = "data:audio/wav;base64,AAAA"
	payload, err := s.ExportRecording(models.Recording{ID: "r1", AudioURL: "b1"})
	if err != nil {
		t.Fatal(err)
	}
	if payload != "data:audio/wav;base64,AAAA" {
		t.Errorf("payload = %q", payload)
	}

	_, err = s.ExportRecording(models.Recording{ID: "r2", AudioURL: "missing"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
