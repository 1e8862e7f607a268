package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/offstack/offstack/internal/db"
	"github.com/offstack/offstack/internal/errors"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeSkip    ImportMode = "skip"    // default: keep the existing snippet
	ImportModeReplace ImportMode = "replace" // overwrite with the imported one
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: skip
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes one rejected line of an import file.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import reads snippets from a JSONL export file. Ids and timestamps are
// preserved from the file. Malformed lines are reported, not fatal.
func Import(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidArgument("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeSkip
	}
	if input.Mode != ImportModeSkip && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidArgument("mode must be one of: skip, replace")
	}

	file, err := os.Open(input.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(input.Path)
		}
		return nil, errors.NewStorage(err)
	}
	defer file.Close()

	out := &ImportOutput{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		var record exportRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			out.Skipped++
			continue
		}
		if record.OffstackExport {
			continue
		}
		if record.ID == "" || record.Title == "" || record.Language == "" {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Code:    "INVALID_RECORD",
				Message: "id, title, and language are required",
			})
			out.Skipped++
			continue
		}

		exists, err := db.Exists(ctx, database, record.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			if input.Mode == ImportModeSkip {
				out.Skipped++
				continue
			}
			if _, err := db.Delete(ctx, database, record.ID); err != nil {
				return nil, err
			}
		}

		s := record.Snippet
		if _, err := db.Insert(ctx, database, &s); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Code:    "INSERT_FAILED",
				Message: err.Error(),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewStorage(err)
	}
	return out, nil
}
