// Package importwatch watches an inbox directory and imports audio files
// dropped into it as recordings on the current note.
package importwatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/voicecanvas/internal/notestore"
)

// mimeByExt maps recognized audio file extensions to their media types.
var mimeByExt = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".m4a":  "audio/mp4",
}

// Watch starts an fsnotify watcher on inboxDir and processes dropped files
// until ctx is cancelled. Write events are debounced so a file is only
// picked up once the drop has settled; successfully imported files are
// removed from the inbox.
func Watch(ctx context.Context, store *notestore.Store, inboxDir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := os.MkdirAll(inboxDir, 0o755); err != nil {
		return err
	}
	if err := w.Add(inboxDir); err != nil {
		return err
	}

	logger.Info("import watcher: started", slog.String("inbox", inboxDir))

	// scanTimer debounces bursts of create/write events into one sweep.
	var scanTimer *time.Timer
	var scanCh <-chan time.Time

	scheduleScan := func() {
		if scanTimer == nil {
			scanTimer = time.NewTimer(200 * time.Millisecond)
			scanCh = scanTimer.C
		} else {
			scanTimer.Reset(200 * time.Millisecond)
		}
	}

	// Files already sitting in the inbox at startup produce no fsnotify
	// events, so sweep once before waiting on them.
	scheduleScan()

	for {
		select {
		case <-ctx.Done():
			if scanTimer != nil {
				scanTimer.Stop()
			}
			logger.Info("import watcher: stopped")
			return nil

		case <-scanCh:
			sweep(ctx, store, inboxDir, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, audio := mimeByExt[strings.ToLower(filepath.Ext(ev.Name))]; !audio {
				continue
			}
			scheduleScan()

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("import watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// sweep imports every recognized audio file currently in the inbox onto the
// current note, removing each file on success.
func sweep(ctx context.Context, store *notestore.Store, inboxDir string, logger *slog.Logger) {
	current := store.CurrentNote()
	if current == nil {
		logger.Warn("import watcher: no current note, leaving inbox untouched")
		return
	}

	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		logger.Warn("import watcher: read inbox failed", slog.String("error", err.Error()))
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		mimeType, audio := mimeByExt[strings.ToLower(filepath.Ext(e.Name()))]
		if !audio {
			continue
		}

		path := filepath.Join(inboxDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("import watcher: read failed", slog.String("file", e.Name()), slog.String("error", err.Error()))
			continue
		}

		if err := store.ImportRecording(ctx, current.ID, data, mimeType, e.Name()); err != nil {
			logger.Warn("import watcher: import failed", slog.String("file", e.Name()), slog.String("error", err.Error()))
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("import watcher: cleanup failed", slog.String("file", e.Name()), slog.String("error", err.Error()))
			continue
		}
		logger.Info("import watcher: imported", slog.String("file", e.Name()), slog.String("note", current.ID))
	}
}
