package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ldi/taskboard/pkg/models"
)

// ExportSnapshot writes every task as one JSON object per line to path. The
// file is replaced atomically through a temporary file.
func (s *Session) ExportSnapshot(ctx context.Context, path string) (int, error) {
	tasks, err := s.ListTasks(ctx, ListFilter{})
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	w := bufio.NewWriter(tempFile)
	enc := json.NewEncoder(w)
	for _, t := range tasks {
		if err := enc.Encode(t); err != nil {
			return 0, fmt.Errorf("failed to write snapshot line: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return len(tasks), nil
}

// ImportSnapshot loads a JSONL snapshot produced by ExportSnapshot inside a
// single transaction. Tasks keep their ids; ids that already exist are
// skipped. It returns the number of inserted tasks.
func (s *Session) ImportSnapshot(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("begin import", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tasks (id, title, description, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	imported := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var t models.Task
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			return 0, validationErr(fmt.Sprintf("line %d", lineNo), "invalid JSON")
		}
		if t.ID <= 0 {
			return 0, validationErr(fmt.Sprintf("line %d", lineNo), "id must be positive")
		}
		if strings.TrimSpace(t.Title) == "" {
			return 0, validationErr(fmt.Sprintf("line %d", lineNo), "title is required")
		}
		if t.Status == "" {
			t.Status = models.TaskStatusPending
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}

		var completedAt *string
		if t.CompletedAt != nil {
			ts := timestamp(*t.CompletedAt)
			completedAt = &ts
		}

		res, err := tx.ExecContext(ctx, query,
			t.ID, t.Title, t.Description, string(t.Status), timestamp(t.CreatedAt), completedAt,
		)
		if err != nil {
			return 0, storageErr("import task", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			imported += int(n)
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("commit import", err)
	}

	return imported, nil
}
