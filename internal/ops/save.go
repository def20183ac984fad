package ops

import (
	"database/sql"
	"time"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// SaveTurnInput contains parameters for the SaveTurn operation.
type SaveTurnInput struct {
	Prompt   string
	Response string
	URL      string
	Platform turn.Platform
	Folder   string // default: cfg.DefaultFolder
}

// SaveTurnOutput contains the result of the SaveTurn operation.
type SaveTurnOutput struct {
	ID        string `json:"id"`
	Folder    string `json:"folder"`
	Timestamp int64  `json:"timestamp"`
}

// SaveTurn appends a new turn to the named folder, creating the folder if
// absent. The id and timestamp are assigned here and never change.
func SaveTurn(database *sql.DB, cfg *config.Config, input SaveTurnInput) (*SaveTurnOutput, error) {
	folder := normalizeFolder(input.Folder, cfg.DefaultFolder)

	platform := input.Platform
	if platform == "" {
		platform = turn.PlatformUnknown
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().UnixMilli()

	saved := turn.SavedTurn{
		ID:        id,
		Prompt:    input.Prompt,
		Response:  input.Response,
		Platform:  platform,
		URL:       input.URL,
		Folder:    folder,
		Timestamp: now,
	}

	err = db.UpdateFolders(database, func(index turn.FolderIndex) error {
		index[folder] = append(index[folder], saved)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SaveTurnOutput{
		ID:        id,
		Folder:    folder,
		Timestamp: now,
	}, nil
}
