// Package turn defines the chatstash domain model: captured prompt/response
// pairs, saved turns, and the folder index they are persisted in.
package turn

import "strings"

// Sentinel is reported for a field whose value could not be detected.
const Sentinel = "N/A"

// DefaultFolder is the folder used when the user does not choose one.
const DefaultFolder = "Unsorted"

// Platform identifies the chat application a pair was captured from.
type Platform string

const (
	PlatformChatGPT Platform = "ChatGPT"
	PlatformGemini  Platform = "Gemini"
	PlatformClaude  Platform = "Claude"
	PlatformUnknown Platform = "Unknown"
)

// CapturedPair is the ephemeral result of one extraction. It is produced by
// the extractor and consumed immediately; only SavedTurn is persisted.
type CapturedPair struct {
	Prompt   string   `json:"prompt"`
	Response string   `json:"response"`
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
}

// Meaningful reports whether the pair carries any detected content:
// at least one of prompt/response is non-sentinel and non-empty after
// trimming.
func (p CapturedPair) Meaningful() bool {
	return fieldPresent(p.Prompt) || fieldPresent(p.Response)
}

// fieldPresent reports whether a field holds real content.
func fieldPresent(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != Sentinel
}

// SavedTurn is one persisted prompt/response pair. Turns are immutable after
// creation; they are only ever appended and deleted.
type SavedTurn struct {
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Response  string   `json:"response"`
	Platform  Platform `json:"platform"`
	URL       string   `json:"url"`
	Folder    string   `json:"folder"`
	Timestamp int64    `json:"timestamp"` // unix milliseconds, assigned at save time
}

// Empty reports whether both fields of the turn are sentinel or blank.
// Empty turns are the target of the clear-empty sweep.
func (t SavedTurn) Empty() bool {
	return !fieldPresent(t.Prompt) && !fieldPresent(t.Response)
}

// FolderIndex maps folder name to the ordered sequence of turns it holds.
// Insertion order is chronological order. A folder with zero turns is never
// retained after a mutating operation completes.
type FolderIndex map[string][]SavedTurn

// TurnCount returns the total number of turns across all folders.
func (fi FolderIndex) TurnCount() int {
	n := 0
	for _, turns := range fi {
		n += len(turns)
	}
	return n
}

// Find returns the turn with the given id in the named folder, or nil.
func (fi FolderIndex) Find(folder, id string) *SavedTurn {
	for i := range fi[folder] {
		if fi[folder][i].ID == id {
			return &fi[folder][i]
		}
	}
	return nil
}
