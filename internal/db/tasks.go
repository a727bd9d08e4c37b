package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ldi/taskboard/pkg/models"
)

const taskColumns = `id, title, description, status, created_at, completed_at`

// ListFilter narrows ListTasks. Nil fields do not filter.
type ListFilter struct {
	Status *models.TaskStatus
	Query  *string
}

// CreateTask inserts a new pending task and returns its id.
func (s *Session) CreateTask(ctx context.Context, title string, description *string) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, validationErr("title", "is required")
	}

	query := `
		INSERT INTO tasks (title, description, status, created_at)
		VALUES (?, ?, ?, ?)
	`
	res, err := s.exec().ExecContext(ctx, query,
		title, description, string(models.TaskStatusPending), timestamp(s.now()),
	)
	if err != nil {
		return 0, storageErr("create task", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("read task id", err)
	}
	return id, nil
}

// GetTask retrieves a task by its ID. It returns nil, nil when no such task
// exists.
func (s *Session) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t := &models.Task{}
	err := s.exec().QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get task", err)
	}
	return t, nil
}

// ListTasks returns tasks in id order, optionally filtered by exact status
// and by a substring of the title. Both filters combine with AND.
func (s *Session) ListTasks(ctx context.Context, filter ListFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}

	if filter.Query != nil {
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(*filter.Query)+"%")
	}

	query += " ORDER BY id"

	rows, err := s.exec().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list tasks", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t := &models.Task{}
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.CompletedAt,
		); err != nil {
			return nil, storageErr("scan task", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate tasks", err)
	}

	return tasks, nil
}

// UpdateTask applies the fields present in u to the task with the given id.
// Setting the status to completed also stamps completed_at. Updating a
// missing id is not an error.
func (s *Session) UpdateTask(ctx context.Context, id int64, u models.TaskUpdate) error {
	if u.IsEmpty() {
		return validationErr("", "no updatable fields provided")
	}

	var sets []string
	var args []any

	if u.Title.Set {
		if u.Title.Value == nil || strings.TrimSpace(*u.Title.Value) == "" {
			return validationErr("title", "must not be empty")
		}
		sets = append(sets, "title = ?")
		args = append(args, *u.Title.Value)
	}

	if u.Description.Set {
		sets = append(sets, "description = ?")
		args = append(args, u.Description.Value)
	}

	if u.Status.Set {
		if u.Status.Value == nil || *u.Status.Value == "" {
			return validationErr("status", "must not be empty")
		}
		sets = append(sets, "status = ?")
		args = append(args, *u.Status.Value)

		if models.TaskStatus(*u.Status.Value) == models.TaskStatusCompleted {
			sets = append(sets, "completed_at = ?")
			args = append(args, timestamp(s.now()))
		}
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	if _, err := s.exec().ExecContext(ctx, query, args...); err != nil {
		return storageErr("update task", err)
	}
	return nil
}

// DeleteTask permanently removes a task. Deleting a missing id is not an
// error.
func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.exec().ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return storageErr("delete task", err)
	}
	return nil
}

// Analytics computes the task totals and the mean time to completion in a
// single statement. The per-task duration is in whole seconds; the mean is
// not rounded. AverageCompletionSeconds is nil when nothing is completed.
func (s *Session) Analytics(ctx context.Context) (*models.Analytics, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			AVG(CASE WHEN status = 'completed'
				THEN strftime('%s', completed_at) - strftime('%s', created_at)
			END)
		FROM tasks
	`

	a := &models.Analytics{}
	var avg sql.NullFloat64
	if err := s.exec().QueryRowContext(ctx, query).Scan(&a.TotalTasks, &a.CompletedTasks, &avg); err != nil {
		return nil, storageErr("compute analytics", err)
	}
	if avg.Valid {
		a.AverageCompletionSeconds = &avg.Float64
	}
	return a, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

