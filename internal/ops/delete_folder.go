package ops

import (
	"database/sql"
	"strings"

	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// DeleteFolderInput contains parameters for the DeleteFolder operation.
type DeleteFolderInput struct {
	Folder string
}

// DeleteFolderOutput contains the result of the DeleteFolder operation.
type DeleteFolderOutput struct {
	Deleted bool   `json:"deleted"`
	Folder  string `json:"folder"`
	Removed int    `json:"removed"` // turns removed with the folder
}

// DeleteFolder removes the folder key and every turn in it.
func DeleteFolder(database *sql.DB, input DeleteFolderInput) (*DeleteFolderOutput, error) {
	folder := strings.TrimSpace(input.Folder)
	if folder == "" {
		return nil, errors.NewInvalidRequest("folder is required")
	}

	removed := 0
	err := db.UpdateFolders(database, func(index turn.FolderIndex) error {
		turns, ok := index[folder]
		if !ok {
			return errors.NewFolderNotFound(folder)
		}
		removed = len(turns)
		delete(index, folder)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeleteFolderOutput{
		Deleted: true,
		Folder:  folder,
		Removed: removed,
	}, nil
}
