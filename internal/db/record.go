package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// FoldersKey is the fixed storage key the folder index is persisted under.
const FoldersKey = "folders"

// LoadFolders reads the folder index record. A missing record is an empty
// index, not an error.
func LoadFolders(q Queryer) (turn.FolderIndex, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM storage WHERE key = ?`, FoldersKey).Scan(&value)
	if err == sql.ErrNoRows {
		return turn.FolderIndex{}, nil
	}
	if err != nil {
		return nil, errors.NewStorage(err)
	}

	index := turn.FolderIndex{}
	if err := json.Unmarshal([]byte(value), &index); err != nil {
		return nil, errors.NewStorage(err)
	}
	return index, nil
}

// SaveFolders writes the folder index record, replacing any previous value.
func SaveFolders(q Queryer, index turn.FolderIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return errors.NewStorage(err)
	}

	_, err = q.Exec(`
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, FoldersKey, string(data), time.Now().UnixMilli())
	if err != nil {
		return errors.NewStorage(err)
	}
	return nil
}

// Queryer is the subset of *sql.DB / *sql.Tx used by record operations, so
// they compose inside or outside a transaction.
type Queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// UpdateFolders runs fn against the current folder index inside one
// transaction and persists the result. The whole read-modify-write is a
// single uninterrupted unit; concurrent updates serialize on the write lock.
// If fn returns an error the transaction is rolled back and nothing is
// written.
func UpdateFolders(database *sql.DB, fn func(index turn.FolderIndex) error) error {
	tx, err := database.Begin()
	if err != nil {
		return errors.NewStorage(err)
	}
	defer tx.Rollback()

	index, err := LoadFolders(tx)
	if err != nil {
		return err
	}

	if err := fn(index); err != nil {
		return err
	}

	// Drop folders a mutation left empty: an empty folder never survives a
	// completed operation.
	for name, turns := range index {
		if len(turns) == 0 {
			delete(index, name)
		}
	}

	if err := SaveFolders(tx, index); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorage(err)
	}
	return nil
}
