package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/db"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: baseDir/exports/folders-<timestamp>.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Folders    int    `json:"folders"`
	Turns      int    `json:"turns"`
	ExportedAt int64  `json:"exported_at"`
}

// exportEnvelope is the on-disk export document.
type exportEnvelope struct {
	ChatstashExport bool             `json:"_chatstash_export"`
	SchemaVersion   int              `json:"schema_version"`
	ExportedAt      int64            `json:"exported_at"`
	Folders         turn.FolderIndex `json:"folders"`
}

// Export writes the folder index to a JSON file.
func Export(database *sql.DB, cfg *config.Config, baseDir string, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(baseDir, "exports",
			fmt.Sprintf("folders-%s.json", now.Format("20060102-150405")))
	}

	if err := ValidatePath(exportPath, PathCheckWrite, baseDir, cfg); err != nil {
		return nil, err
	}

	index, err := db.LoadFolders(database)
	if err != nil {
		return nil, err
	}

	envelope := exportEnvelope{
		ChatstashExport: true,
		SchemaVersion:   db.CurrentSchemaVersion,
		ExportedAt:      now.UnixMilli(),
		Folders:         index,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	// Write to a temp file first, then rename, so a failure preserves any
	// existing export at the target path.
	tempPath := exportPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		_ = os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Folders:    len(index),
		Turns:      index.TurnCount(),
		ExportedAt: envelope.ExportedAt,
	}, nil
}
