package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string. Compile runs and preview requests are
// identified this way, so ids sort by creation time.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
