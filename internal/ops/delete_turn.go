package ops

import (
	"database/sql"
	"strings"

	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// DeleteTurnInput contains parameters for the DeleteTurn operation.
type DeleteTurnInput struct {
	Folder string
	ID     string
}

// DeleteTurnOutput contains the result of the DeleteTurn operation.
type DeleteTurnOutput struct {
	Deleted       bool   `json:"deleted"`
	ID            string `json:"id"`
	FolderRemoved bool   `json:"folder_removed"` // folder key dropped because it emptied
}

// DeleteTurn removes one turn by id. If the folder is left empty, its key is
// removed as well.
func DeleteTurn(database *sql.DB, input DeleteTurnInput) (*DeleteTurnOutput, error) {
	folder := strings.TrimSpace(input.Folder)
	id := strings.TrimSpace(input.ID)
	if folder == "" || id == "" {
		return nil, errors.NewInvalidRequest("folder and id are required")
	}

	folderRemoved := false
	err := db.UpdateFolders(database, func(index turn.FolderIndex) error {
		turns, ok := index[folder]
		if !ok {
			return errors.NewFolderNotFound(folder)
		}

		at := -1
		for i := range turns {
			if turns[i].ID == id {
				at = i
				break
			}
		}
		if at < 0 {
			return errors.NewTurnNotFound(folder, id)
		}

		index[folder] = append(turns[:at], turns[at+1:]...)
		folderRemoved = len(index[folder]) == 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeleteTurnOutput{
		Deleted:       true,
		ID:            id,
		FolderRemoved: folderRemoved,
	}, nil
}
