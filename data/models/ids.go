package models

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh document identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed identifier. Malformed ids never
// match a stored document.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Now is the timestamp source for createdAt/updatedAt, truncated so values
// round-trip through every backend unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
