// Package testutil provides shared test helpers for setting up stores and fixtures.
package testutil

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/voicecanvas/internal/audioprobe"
	"github.com/starford/voicecanvas/internal/audiostore"
	"github.com/starford/voicecanvas/internal/notestore"
	"github.com/starford/voicecanvas/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestKV creates a temporary SQLite key-value store that is automatically
// cleaned up.
func TestKV(t *testing.T) *storage.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "voicecanvas-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	kv, err := storage.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// StaticProber reports a fixed duration for every payload.
type StaticProber struct {
	Duration float64
	Err      error
}

// Probe implements audioprobe.Prober.
func (p StaticProber) Probe(context.Context, []byte, string) (float64, error) {
	return p.Duration, p.Err
}

// TestStore builds a hydrated note store over an in-memory key-value store
// with a fixed-duration prober.
func TestStore(t *testing.T) *notestore.Store {
	t.Helper()
	return TestStoreWithProber(t, StaticProber{Duration: 1.5})
}

// TestStoreWithProber is TestStore with a caller-supplied prober.
func TestStoreWithProber(t *testing.T, prober audioprobe.Prober) *notestore.Store {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemory(), Logger())
	store := notestore.New(adapter, audiostore.NewRegistry(adapter), prober, Logger())
	store.Load()
	return store
}

// WAVBytes synthesizes a minimal PCM WAV file with the given duration in
// seconds at 8kHz mono 8-bit, so byteRate is 8000 and the data chunk holds
// seconds*8000 zero bytes.
func WAVBytes(t *testing.T, seconds float64) []byte {
	t.Helper()
	const byteRate = 8000
	dataSize := int(seconds * byteRate)

	buf := make([]byte, 0, 44+dataSize)
	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataSize))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...)        // PCM
	buf = append(buf, u16(1)...)        // mono
	buf = append(buf, u32(8000)...)     // sample rate
	buf = append(buf, u32(byteRate)...) // byte rate
	buf = append(buf, u16(1)...)        // block align
	buf = append(buf, u16(8)...)        // bits per sample
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataSize))...)
	buf = append(buf, make([]byte, dataSize)...)
	return buf
}
