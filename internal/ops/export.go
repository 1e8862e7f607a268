package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/snippet"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path    string // optional, default: <baseDir>/exports/snippets-<timestamp>.jsonl
	BaseDir string // store directory, used for the default path
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	OffstackExport bool   `json:"_offstack_export"`
	SchemaVersion  string `json:"schema_version"`
	ExportedAt     int64  `json:"exported_at"`
}

// Export writes all snippets to a JSONL file: one header line followed by one
// snippet per line. The file is written to a temp path and renamed into
// place, so a failed export never clobbers an existing file.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		filename := fmt.Sprintf("snippets-%s.jsonl", now.Format("2006-01-02T150405"))
		exportPath = filepath.Join(input.BaseDir, "exports", filename)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewStorage(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewStorage(err)
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewStorage(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	writeLine := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.NewStorage(err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return errors.NewStorage(err)
		}
		return nil
	}

	header := ExportHeader{OffstackExport: true, SchemaVersion: "1.0", ExportedAt: exportedAt}
	if err := writeLine(header); err != nil {
		return nil, err
	}

	rows, err := db.StreamForExport(ctx, database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled()
		default:
		}

		s, err := db.ScanSnippetFromRows(rows)
		if err != nil {
			return nil, errors.NewStorage(err)
		}
		if err := writeLine(s); err != nil {
			return nil, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage(err)
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewStorage(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewStorage(err)
	}
	file = nil

	if err := os.Rename(tempPath, exportPath); err != nil {
		return nil, errors.NewStorage(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{Path: exportPath, Count: count, ExportedAt: exportedAt}, nil
}

// exportRecord is the shape read back during import. Header detection rides
// on the same struct.
type exportRecord struct {
	snippet.Snippet
	OffstackExport bool `json:"_offstack_export"`
}
