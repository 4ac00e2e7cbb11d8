package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// Allowed fields for project update to prevent SQL injection
var allowedProjectUpdateFields = map[string]bool{
	"name":        true,
	"description": true,
	"color":       true,
}

// CreateProject creates a new project
func (s *SQLiteStorage) CreateProject(ctx context.Context, project *types.Project) (*types.Project, error) {
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if project.Color == "" {
		project.Color = types.DefaultProjectColor
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (user_id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, project.UserID, project.Name, project.Description, project.Color, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get project id: %w", err)
	}
	return s.GetProject(ctx, id, project.UserID)
}

// GetProject retrieves a project by ID, scoped to its owner
func (s *SQLiteStorage) GetProject(ctx context.Context, id, ownerID int64) (*types.Project, error) {
	var project types.Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM projects
		WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Description,
		&project.Color, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// ListProjects returns all projects owned by a user, newest first
func (s *SQLiteStorage) ListProjects(ctx context.Context, ownerID int64) ([]*types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		var project types.Project
		err := rows.Scan(
			&project.ID, &project.UserID, &project.Name, &project.Description,
			&project.Color, &project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

// UpdateProject updates fields on a project. Returns (nil, nil) when the
// id/owner pair matches nothing.
func (s *SQLiteStorage) UpdateProject(ctx context.Context, id, ownerID int64, updates map[string]interface{}) (*types.Project, error) {
	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	for key, value := range updates {
		if !allowedProjectUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
		if key == "name" {
			if name, ok := value.(string); ok {
				if len(name) == 0 || len(name) > 200 {
					return nil, fmt.Errorf("name must be 1-200 characters")
				}
			}
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, value)
	}
	args = append(args, id, ownerID)

	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = ? AND user_id = ?", strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetProject(ctx, id, ownerID)
}

// DeleteProject removes a project and detaches referencing tasks
func (s *SQLiteStorage) DeleteProject(ctx context.Context, id, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET project_id = NULL, updated_at = ?
		WHERE project_id = ? AND user_id = ?
	`, time.Now(), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to detach tasks: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM projects WHERE id = ? AND user_id = ?
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return tx.Commit()
}
