// Package ident produces collision-resistant string identifiers for notes,
// folders, and recordings.
package ident

import "github.com/google/uuid"

// New returns a new unique identifier.
func New() string {
	return uuid.NewString()
}
