package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// Allowed fields for task update to prevent SQL injection
var allowedTaskUpdateFields = map[string]bool{
	"title":        true,
	"description":  true,
	"status":       true,
	"priority":     true,
	"due_date":     true,
	"is_completed": true,
	"is_today":     true,
	"completed_at": true,
	"project_id":   true,
	"category_id":  true,
}

const taskColumns = `id, user_id, project_id, category_id, title, description,
	       status, priority, due_date, is_completed, is_today, completed_at,
	       created_at, updated_at`

// CreateTask creates a new task
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *types.Task) (*types.Task, error) {
	if task.Status == "" {
		task.Status = types.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			user_id, project_id, category_id, title, description,
			status, priority, due_date, is_completed, is_today, completed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.UserID, nullableInt64(task.ProjectID), nullableInt64(task.CategoryID),
		task.Title, task.Description, task.Status, task.Priority,
		nullableInt64(task.DueDate), task.IsCompleted, task.IsToday,
		nullableInt64(task.CompletedAt), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task id: %w", err)
	}
	return s.GetTask(ctx, id, task.UserID)
}

// GetTask retrieves a task by ID, scoped to its owner
func (s *SQLiteStorage) GetTask(ctx context.Context, id, ownerID int64) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, ownerID)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasks returns the owner's tasks matching the filter, newest first
func (s *SQLiteStorage) ListTasks(ctx context.Context, ownerID int64, filter types.TaskFilter) ([]*types.Task, error) {
	whereClauses := []string{"user_id = ?"}
	args := []interface{}{ownerID}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			if !status.IsValid() {
				return nil, fmt.Errorf("invalid status: %s", status)
			}
			placeholders[i] = "?"
			args = append(args, status)
		}
		whereClauses = append(whereClauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if len(filter.Priority) > 0 {
		placeholders := make([]string, len(filter.Priority))
		for i, priority := range filter.Priority {
			if !priority.IsValid() {
				return nil, fmt.Errorf("invalid priority: %s", priority)
			}
			placeholders[i] = "?"
			args = append(args, priority)
		}
		whereClauses = append(whereClauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.CategoryID != nil {
		whereClauses = append(whereClauses, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	if filter.ProjectID != nil {
		whereClauses = append(whereClauses, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}

	if filter.IsToday != nil {
		whereClauses = append(whereClauses, "is_today = ?")
		args = append(args, *filter.IsToday)
	}

	if filter.Search != "" {
		// LIKE is case-insensitive for ASCII in SQLite by default
		whereClauses = append(whereClauses, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if filter.DueDateFrom != nil {
		whereClauses = append(whereClauses, "due_date >= ?")
		args = append(args, *filter.DueDateFrom)
	}

	if filter.DueDateTo != nil {
		whereClauses = append(whereClauses, "due_date <= ?")
		args = append(args, *filter.DueDateTo)
	}

	limitSQL := ""
	if filter.Limit > 0 {
		limitSQL = fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	querySQL := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		%s
	`, taskColumns, strings.Join(whereClauses, " AND "), limitSQL)

	rows, err := s.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask updates fields on a task. Returns (nil, nil) when the
// id/owner pair matches nothing. Nil values clear nullable columns.
func (s *SQLiteStorage) UpdateTask(ctx context.Context, id, ownerID int64, updates map[string]interface{}) (*types.Task, error) {
	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	for key, value := range updates {
		if !allowedTaskUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}

		switch key {
		case "title":
			if title, ok := value.(string); ok {
				if len(title) == 0 || len(title) > 500 {
					return nil, fmt.Errorf("title must be 1-500 characters")
				}
			}
		case "status":
			if status, ok := value.(string); ok {
				if !types.Status(status).IsValid() {
					return nil, fmt.Errorf("invalid status: %s", status)
				}
			}
		case "priority":
			if priority, ok := value.(string); ok {
				if !types.Priority(priority).IsValid() {
					return nil, fmt.Errorf("invalid priority: %s", priority)
				}
			}
		}

		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, value)
	}
	args = append(args, id, ownerID)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ? AND user_id = ?", strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetTask(ctx, id, ownerID)
}

// DeleteTask removes a task together with its subtasks and comments.
// The schema's foreign keys are deliberately soft, so the child deletes
// are explicit and share the task delete's transaction.
func (s *SQLiteStorage) DeleteTask(ctx context.Context, id, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Owner check up front; children have no user_id column of their own
	var exists int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM tasks WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(&exists)
	if err == sql.ErrNoRows {
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete subtasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return tx.Commit()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*types.Task, error) {
	var task types.Task
	var projectID, categoryID, dueDate, completedAt sql.NullInt64

	err := row.Scan(
		&task.ID, &task.UserID, &projectID, &categoryID,
		&task.Title, &task.Description, &task.Status, &task.Priority,
		&dueDate, &task.IsCompleted, &task.IsToday, &completedAt,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.ProjectID = scanNullInt64(projectID)
	task.CategoryID = scanNullInt64(categoryID)
	task.DueDate = scanNullInt64(dueDate)
	task.CompletedAt = scanNullInt64(completedAt)
	return &task, nil
}
