package ops

import (
	"database/sql"
	"fmt"

	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/turn"
)

// ClearEmptyOutput contains the result of the ClearEmpty operation.
type ClearEmptyOutput struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

// ClearEmpty scans every folder and removes turns whose prompt and response
// are both sentinel or empty, then drops any folder left with zero turns.
func ClearEmpty(database *sql.DB) (*ClearEmptyOutput, error) {
	removed := 0
	err := db.UpdateFolders(database, func(index turn.FolderIndex) error {
		for name, turns := range index {
			kept := turns[:0]
			for _, t := range turns {
				if t.Empty() {
					removed++
					continue
				}
				kept = append(kept, t)
			}
			index[name] = kept
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ClearEmptyOutput{
		Removed: removed,
		Message: formatClearMessage(removed),
	}, nil
}

// formatClearMessage creates a human-readable message for the sweep result.
func formatClearMessage(count int) string {
	if count == 0 {
		return "No empty turns to clear"
	}
	turnWord := "turn"
	if count > 1 {
		turnWord = "turns"
	}
	return fmt.Sprintf("Removed %d empty %s", count, turnWord)
}
