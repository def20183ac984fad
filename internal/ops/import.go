package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// ImportMode controls how imported folders combine with existing ones.
type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"   // default: append turns, skip colliding ids
	ImportModeReplace ImportMode = "replace" // discard the current index entirely
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string
	Mode ImportMode // default: merge
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // merge collisions on turn id
}

// Import reads a previously exported folder index file. Merge mode appends
// turns to their folders in file order and never rewrites existing ids;
// a turn whose id already exists anywhere in the index is skipped.
func Import(database *sql.DB, cfg *config.Config, baseDir string, input ImportInput) (*ImportOutput, error) {
	mode := input.Mode
	if mode == "" {
		mode = ImportModeMerge
	}
	if mode != ImportModeMerge && mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: merge, replace")
	}

	if err := ValidatePath(input.Path, PathCheckRead, baseDir, cfg); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}

	var envelope exportEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("not a valid export file: %v", err))
	}
	if !envelope.ChatstashExport {
		return nil, errors.NewInvalidRequest("not a chatstash export file")
	}

	imported, skipped := 0, 0
	err = db.UpdateFolders(database, func(index turn.FolderIndex) error {
		if mode == ImportModeReplace {
			for name := range index {
				delete(index, name)
			}
		}

		seen := make(map[string]bool)
		for _, turns := range index {
			for _, t := range turns {
				seen[t.ID] = true
			}
		}

		for folder, turns := range envelope.Folders {
			for _, t := range turns {
				if seen[t.ID] {
					skipped++
					continue
				}
				seen[t.ID] = true
				t.Folder = folder
				index[folder] = append(index[folder], t)
				imported++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportOutput{Imported: imported, Skipped: skipped}, nil
}
