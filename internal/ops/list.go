package ops

import (
	"database/sql"
	"sort"

	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/turn"
)

// ListFoldersOutput contains the full folder index snapshot.
type ListFoldersOutput struct {
	Folders     turn.FolderIndex `json:"folders"`
	FolderNames []string         `json:"folder_names"`
	TurnCount   int              `json:"turn_count"`
}

// ListFolders returns the persisted folder index. FolderNames is sorted for
// stable rendering; turns within each folder keep insertion order.
func ListFolders(database *sql.DB) (*ListFoldersOutput, error) {
	index, err := db.LoadFolders(database)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	return &ListFoldersOutput{
		Folders:     index,
		FolderNames: names,
		TurnCount:   index.TurnCount(),
	}, nil
}
