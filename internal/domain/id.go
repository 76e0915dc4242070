package domain

import "github.com/google/uuid"

// NewID returns a time-sortable UUIDv7 as a hyphenated string.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids created
// later sort later. That makes order and product listings stable without
// a separate sequence column.
//
// Panics if UUID generation fails (should never happen in practice).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
