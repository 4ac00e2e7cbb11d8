package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// CreateComment creates a new comment on a task
func (s *SQLiteStorage) CreateComment(ctx context.Context, comment *types.Comment) (*types.Comment, error) {
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (task_id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, comment.TaskID, comment.UserID, comment.Content, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment id: %w", err)
	}
	return s.GetComment(ctx, id, comment.UserID)
}

// GetComment retrieves a comment by ID, scoped to its author
func (s *SQLiteStorage) GetComment(ctx context.Context, id, authorID int64) (*types.Comment, error) {
	var comment types.Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE id = ? AND user_id = ?
	`, id, authorID).Scan(
		&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListComments returns a task's comments oldest first
func (s *SQLiteStorage) ListComments(ctx context.Context, taskID int64) ([]*types.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*types.Comment
	for rows.Next() {
		var comment types.Comment
		err := rows.Scan(
			&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content,
			&comment.CreatedAt, &comment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

// UpdateComment replaces a comment's content. Returns (nil, nil) when the
// id/author pair matches nothing.
func (s *SQLiteStorage) UpdateComment(ctx context.Context, id, authorID int64, content string) (*types.Comment, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("content is required")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, content, time.Now(), id, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetComment(ctx, id, authorID)
}

// DeleteComment removes a comment authored by the given user
func (s *SQLiteStorage) DeleteComment(ctx context.Context, id, authorID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM comments WHERE id = ? AND user_id = ?
	`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
