// Package audioprobe extracts the playable duration from encoded audio
// payloads. Probing is modeled as a single-shot operation with exactly two
// outcomes: a duration, or a decode failure.
package audioprobe

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/starford/voicecanvas/internal/apperr"
)

// Prober extracts the duration, in seconds, of an encoded audio payload.
type Prober interface {
	Probe(ctx context.Context, data []byte, mimeType string) (float64, error)
}

// WAV probes RIFF/WAVE payloads by header math: duration is the data chunk
// size divided by the declared byte rate. Anything that is not a well-formed
// WAV reports apperr.ErrDecode.
type WAV struct{}

// Probe implements Prober.
func (WAV) Probe(ctx context.Context, data []byte, _ string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, fmt.Errorf("audioprobe: not a RIFF/WAVE payload: %w", apperr.ErrDecode)
	}

	var byteRate uint32
	var dataSize uint32

	// Walk the chunk list: 4-byte id, 4-byte little-endian size, payload.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		body := off + 8

		switch id {
		case "fmt ":
			if body+12 > len(data) {
				return 0, fmt.Errorf("audioprobe: truncated fmt chunk: %w", apperr.ErrDecode)
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			dataSize = size
		}

		// Chunks are word-aligned.
		off = body + int(size)
		if size%2 == 1 {
			off++
		}
	}

	if byteRate == 0 || dataSize == 0 {
		return 0, fmt.Errorf("audioprobe: missing fmt or data chunk: %w", apperr.ErrDecode)
	}
	return float64(dataSize) / float64(byteRate), nil
}

type timeoutProber struct {
	inner Prober
	d     time.Duration
}

// WithTimeout bounds every probe with d so a stalled decode cannot block
// an import indefinitely.
func WithTimeout(p Prober, d time.Duration) Prober {
	return timeoutProber{inner: p, d: d}
}

// Probe implements Prober.
func (t timeoutProber) Probe(ctx context.Context, data []byte, mimeType string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	type result struct {
		dur float64
		err error
	}
	ch := make(chan result, 1)
	go func() {
		dur, err := t.inner.Probe(ctx, data, mimeType)
		ch <- result{dur: dur, err: err}
	}()

	select {
	case r := <-ch:
		return r.dur, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("audioprobe: %w", ctx.Err())
	}
}
