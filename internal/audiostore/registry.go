// Package audiostore implements the audio blob registry: encoded audio
// payloads keyed by opaque ids, in a keyspace disjoint from note and folder
// metadata.
package audiostore

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/starford/voicecanvas/internal/storage"
)

// Registry maps audio ids to encoded payloads (data URIs). It has pure
// key-value semantics: Get on an absent id reports absence, never an error.
type Registry struct {
	store *storage.Adapter
}

// NewRegistry creates a registry over the persistent store adapter.
func NewRegistry(store *storage.Adapter) *Registry {
	return &Registry{store: store}
}

// Put stores payload under id.
func (r *Registry) Put(id, payload string) error {
	return r.store.SaveAudio(id, payload)
}

// Get returns the payload for id and whether it exists.
func (r *Registry) Get(id string) (string, bool) {
	return r.store.LoadAudio(id)
}

// Delete removes the payload for id. Deleting an absent id is not an error.
func (r *Registry) Delete(id string) error {
	return r.store.DeleteAudio(id)
}

// EncodePayload builds a base64 data URI for raw audio bytes.
func EncodePayload(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodePayload parses a base64 data URI and returns the raw bytes and the
// declared media type.
func DecodePayload(dataURI string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return nil, "", fmt.Errorf("audiostore: not a data URI")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("audiostore: invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("audiostore: only base64 data URIs are supported")
	}
	mimeType := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("audiostore: decode base64: %w", err)
	}
	return data, mimeType, nil
}
