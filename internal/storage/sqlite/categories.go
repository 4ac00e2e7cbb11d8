package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// Allowed fields for category update to prevent SQL injection
var allowedCategoryUpdateFields = map[string]bool{
	"name":  true,
	"color": true,
}

// CreateCategory creates a new category
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *types.Category) (*types.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if category.Color == "" {
		category.Color = types.DefaultCategoryColor
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, category.UserID, category.Name, category.Color, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}
	return s.GetCategory(ctx, id, category.UserID)
}

// GetCategory retrieves a category by ID, scoped to its owner
func (s *SQLiteStorage) GetCategory(ctx context.Context, id, ownerID int64) (*types.Category, error) {
	var category types.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM categories
		WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Color,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// ListCategories returns all categories owned by a user, ordered by name
func (s *SQLiteStorage) ListCategories(ctx context.Context, ownerID int64) ([]*types.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM categories
		WHERE user_id = ?
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*types.Category
	for rows.Next() {
		var category types.Category
		err := rows.Scan(
			&category.ID, &category.UserID, &category.Name, &category.Color,
			&category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

// UpdateCategory updates fields on a category. Returns (nil, nil) when the
// id/owner pair matches nothing.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id, ownerID int64, updates map[string]interface{}) (*types.Category, error) {
	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	for key, value := range updates {
		if !allowedCategoryUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
		if key == "name" {
			if name, ok := value.(string); ok {
				if len(name) == 0 || len(name) > 100 {
					return nil, fmt.Errorf("name must be 1-100 characters")
				}
			}
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, value)
	}
	args = append(args, id, ownerID)

	query := fmt.Sprintf("UPDATE categories SET %s WHERE id = ? AND user_id = ?", strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetCategory(ctx, id, ownerID)
}

// DeleteCategory removes a category and detaches referencing tasks.
// The detach and the delete happen in one transaction so a task never
// points at a category row that no longer exists.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET category_id = NULL, updated_at = ?
		WHERE category_id = ? AND user_id = ?
	`, time.Now(), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to detach tasks: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ? AND user_id = ?
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return tx.Commit()
}
