// Package export writes notes and recordings to an io.Writer for download.
// It formats nothing beyond plain text: PDF rendering and the download
// mechanism itself are UI concerns.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/starford/voicecanvas/internal/apperr"
	"github.com/starford/voicecanvas/internal/audiostore"
	"github.com/starford/voicecanvas/internal/models"
)

// BlobGetter is the read side of the audio blob registry.
type BlobGetter interface {
	Get(id string) (string, bool)
}

// TimestampedFilename builds "<base>_<yyyy-mm-dd_hh-mm><ext>" from a
// millisecond epoch timestamp.
func TimestampedFilename(base string, ms int64, ext string) string {
	if base == "" {
		base = "Note"
	}
	stamp := time.UnixMilli(ms).Format("2006-01-02_15-04")
	return strings.ReplaceAll(base, " ", "_") + "_" + stamp + ext
}

// WriteNoteText writes the note as plain text: title, blank line, content.
func WriteNoteText(w io.Writer, n models.Note) error {
	title := n.Title
	if title == "" {
		title = "Untitled Note"
	}
	if _, err := fmt.Fprintf(w, "%s\n\n%s", title, n.Content); err != nil {
		return fmt.Errorf("export note %s: %w", n.ID, err)
	}
	return nil
}

// WriteRecording decodes the recording's payload from the registry and
// writes the raw audio bytes. Returns the media type of the payload.
func WriteRecording(w io.Writer, blobs BlobGetter, rec models.Recording) (string, error) {
	payload, ok := blobs.Get(rec.AudioURL)
	if !ok {
		return "", fmt.Errorf("export recording %s: %w", rec.ID, apperr.ErrNotFound)
	}
	data, mimeType, err := audiostore.DecodePayload(payload)
	if err != nil {
		return "", fmt.Errorf("export recording %s: %v: %w", rec.ID, err, apperr.ErrDecode)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("export recording %s: %w", rec.ID, err)
	}
	return mimeType, nil
}
