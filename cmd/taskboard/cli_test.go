package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ldi/taskboard/internal/db"
	"github.com/ldi/taskboard/pkg/models"
)

func setupTestDB(t *testing.T) string {
	t.Helper()

	dbFilePath := filepath.Join(t.TempDir(), "tasks.db")

	database, err := db.Open(dbFilePath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	err = database.WithSession(ctx, func(s *db.Session) error {
		if _, err := s.CreateTask(ctx, "write report", nil); err != nil {
			return err
		}
		id, err := s.CreateTask(ctx, "ship release", nil)
		if err != nil {
			return err
		}
		status := string(models.TaskStatusCompleted)
		return s.UpdateTask(ctx, id, models.TaskUpdate{Status: models.Some(status)})
	})
	if err != nil {
		t.Fatalf("failed to seed tasks: %v", err)
	}

	return dbFilePath
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	oldStdout, oldStderr := stdout, stderr
	stdout = &buf
	stderr = &bytes.Buffer{}
	t.Cleanup(func() {
		stdout = oldStdout
		stderr = oldStderr
	})
	return &buf
}

func TestListTasks(t *testing.T) {
	path := setupTestDB(t)
	out := captureStdout(t)

	if err := execute([]string{"-db-path", path, "list-tasks"}); err != nil {
		t.Fatalf("list-tasks failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "write report") || !strings.Contains(output, "ship release") {
		t.Errorf("output missing tasks: %s", output)
	}
}

func TestListTasksFiltered(t *testing.T) {
	path := setupTestDB(t)
	out := captureStdout(t)

	if err := execute([]string{"-db-path", path, "list-tasks", "-status", "pending"}); err != nil {
		t.Fatalf("list-tasks failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "write report") {
		t.Errorf("output missing pending task: %s", output)
	}
	if strings.Contains(output, "ship release") {
		t.Errorf("output should not contain completed task: %s", output)
	}
}

func TestStatus(t *testing.T) {
	path := setupTestDB(t)
	out := captureStdout(t)

	if err := execute([]string{"-db-path", path, "status"}); err != nil {
		t.Fatalf("status failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Total Tasks:     2") {
		t.Errorf("expected total of 2 tasks: %s", output)
	}
	if !strings.Contains(output, "Completed Tasks: 1") {
		t.Errorf("expected 1 completed task: %s", output)
	}
}

func TestStatusEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	out := captureStdout(t)

	if err := execute([]string{"-db-path", path, "status"}); err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if !strings.Contains(out.String(), "Avg Completion:  n/a") {
		t.Errorf("expected no average on empty database: %s", out.String())
	}
}

func TestBoard(t *testing.T) {
	path := setupTestDB(t)
	out := captureStdout(t)

	if err := execute([]string{"-db-path", path, "board", "-width", "50"}); err != nil {
		t.Fatalf("board failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "1/2 completed") {
		t.Errorf("expected analytics summary: %s", output)
	}
	if !strings.Contains(output, "#1 write report") || !strings.Contains(output, "#2 ship release") {
		t.Errorf("expected both tasks on the board: %s", output)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	path := setupTestDB(t)
	snapshot := filepath.Join(t.TempDir(), "tasks.jsonl")
	out := captureStdout(t)

	if err := execute([]string{"-db-path", path, "export", snapshot}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out.String(), "Exported 2 tasks") {
		t.Errorf("unexpected export output: %s", out.String())
	}
	if _, err := os.Stat(snapshot); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	fresh := filepath.Join(t.TempDir(), "fresh.db")
	out.Reset()
	if err := execute([]string{"-db-path", fresh, "import", snapshot}); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 2 tasks") {
		t.Errorf("unexpected import output: %s", out.String())
	}

	out.Reset()
	if err := execute([]string{"-db-path", fresh, "list-tasks", "-q", "ship"}); err != nil {
		t.Fatalf("list-tasks failed: %v", err)
	}
	if !strings.Contains(out.String(), "ship release") || strings.Contains(out.String(), "write report") {
		t.Errorf("unexpected list output after import: %s", out.String())
	}
}

func TestCommandArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	captureStdout(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"-db-path", path, "bogus"}, "unknown command: bogus"},
		{"export without file", []string{"-db-path", path, "export"}, "usage: taskboard export FILE"},
		{"import without file", []string{"-db-path", path, "import"}, "usage: taskboard import FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected short, got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("expected abcd…, got %q", got)
	}
}
