// Package ops implements the store operations: every mutation of the
// persisted folder index goes through here, one read-modify-write
// transaction per operation.
package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chatstash/chatstash/internal/turn"
)

// normalizeFolder trims a user-supplied folder name, falling back to the
// default folder when nothing is left.
func normalizeFolder(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		if fallback != "" {
			return fallback
		}
		return turn.DefaultFolder
	}
	return name
}

// generateULID generates a new ULID for a saved turn. ULIDs sort by
// creation time, so ids double as a chronological tiebreaker.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
