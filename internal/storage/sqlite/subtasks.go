package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// Allowed fields for subtask update to prevent SQL injection.
// "order" is quoted in generated SQL because it is a keyword.
var allowedSubtaskUpdateFields = map[string]bool{
	"title":        true,
	"is_completed": true,
	"is_today":     true,
	"completed_at": true,
	"order":        true,
}

const subtaskColumns = `id, task_id, title, is_completed, is_today, completed_at,
	       "order", created_at, updated_at`

// CreateSubtask creates a new subtask at the end of the parent's list.
// The display order is assigned current-max+1 inside a transaction so two
// concurrent creates cannot claim the same slot.
func (s *SQLiteStorage) CreateSubtask(ctx context.Context, subtask *types.Subtask) (*types.Subtask, error) {
	if err := subtask.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxOrder sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT MAX("order") FROM subtasks WHERE task_id = ?
	`, subtask.TaskID).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to query max order: %w", err)
	}

	order := 1
	if maxOrder.Valid {
		order = int(maxOrder.Int64) + 1
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO subtasks (task_id, title, is_completed, is_today, completed_at, "order", created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, subtask.TaskID, subtask.Title, subtask.IsCompleted, subtask.IsToday,
		nullableInt64(subtask.CompletedAt), order, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subtask: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get subtask id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetSubtask(ctx, id, subtask.TaskID)
}

// GetSubtask retrieves a subtask by ID, scoped to its parent task
func (s *SQLiteStorage) GetSubtask(ctx context.Context, id, taskID int64) (*types.Subtask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+subtaskColumns+`
		FROM subtasks
		WHERE id = ? AND task_id = ?
	`, id, taskID)

	subtask, err := scanSubtask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subtask: %w", err)
	}
	return subtask, nil
}

// ListSubtasks returns a task's subtasks in display order
func (s *SQLiteStorage) ListSubtasks(ctx context.Context, taskID int64) ([]*types.Subtask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subtaskColumns+`
		FROM subtasks
		WHERE task_id = ?
		ORDER BY "order" ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	defer rows.Close()

	return collectSubtasks(rows)
}

// ListTodaySubtasks returns all of a user's subtasks flagged for today,
// scoped through the parent task's owner
func (s *SQLiteStorage) ListTodaySubtasks(ctx context.Context, ownerID int64) ([]*types.Subtask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.task_id, s.title, s.is_completed, s.is_today, s.completed_at,
		       s."order", s.created_at, s.updated_at
		FROM subtasks s
		JOIN tasks t ON s.task_id = t.id
		WHERE t.user_id = ? AND s.is_today = 1
		ORDER BY s."order" ASC, s.id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list today subtasks: %w", err)
	}
	defer rows.Close()

	return collectSubtasks(rows)
}

// UpdateSubtask updates fields on a subtask. Returns (nil, nil) when the
// id/task pair matches nothing. Nil values clear nullable columns.
func (s *SQLiteStorage) UpdateSubtask(ctx context.Context, id, taskID int64, updates map[string]interface{}) (*types.Subtask, error) {
	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	for key, value := range updates {
		if !allowedSubtaskUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
		if key == "title" {
			if title, ok := value.(string); ok {
				if len(title) == 0 || len(title) > 500 {
					return nil, fmt.Errorf("title must be 1-500 characters")
				}
			}
		}
		setClauses = append(setClauses, fmt.Sprintf("%q = ?", key))
		args = append(args, value)
	}
	args = append(args, id, taskID)

	query := fmt.Sprintf(`UPDATE subtasks SET %s WHERE id = ? AND task_id = ?`, strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetSubtask(ctx, id, taskID)
}

// DeleteSubtask removes a subtask
func (s *SQLiteStorage) DeleteSubtask(ctx context.Context, id, taskID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM subtasks WHERE id = ? AND task_id = ?
	`, id, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}
	return nil
}

func scanSubtask(row rowScanner) (*types.Subtask, error) {
	var subtask types.Subtask
	var completedAt sql.NullInt64

	err := row.Scan(
		&subtask.ID, &subtask.TaskID, &subtask.Title,
		&subtask.IsCompleted, &subtask.IsToday, &completedAt,
		&subtask.Order, &subtask.CreatedAt, &subtask.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	subtask.CompletedAt = scanNullInt64(completedAt)
	return &subtask, nil
}

func collectSubtasks(rows *sql.Rows) ([]*types.Subtask, error) {
	var subtasks []*types.Subtask
	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subtask: %w", err)
		}
		subtasks = append(subtasks, subtask)
	}
	return subtasks, rows.Err()
}
