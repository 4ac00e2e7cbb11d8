package storage

import (
	"context"

	"github.com/huckwnmo101/taskdeck/internal/storage/sqlite"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

// Storage defines the interface for task storage backends.
//
// Every operation is scoped to an owning user, either directly (ownerID
// parameter) or transitively through the parent task for subtasks and
// comments. An id that exists but belongs to another user behaves exactly
// like a missing id: Get returns (nil, nil) and Update/Delete report not
// found. Callers never learn whether a foreign id exists.
type Storage interface {
	// Users
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)
	GetUser(ctx context.Context, id int64) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	TouchUserSignIn(ctx context.Context, id int64) error

	// Categories
	CreateCategory(ctx context.Context, category *types.Category) (*types.Category, error)
	GetCategory(ctx context.Context, id, ownerID int64) (*types.Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]*types.Category, error)
	UpdateCategory(ctx context.Context, id, ownerID int64, updates map[string]interface{}) (*types.Category, error)
	// DeleteCategory detaches referencing tasks (category_id set to NULL)
	// in the same transaction as the delete.
	DeleteCategory(ctx context.Context, id, ownerID int64) error

	// Projects
	CreateProject(ctx context.Context, project *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, id, ownerID int64) (*types.Project, error)
	ListProjects(ctx context.Context, ownerID int64) ([]*types.Project, error)
	UpdateProject(ctx context.Context, id, ownerID int64, updates map[string]interface{}) (*types.Project, error)
	// DeleteProject detaches referencing tasks, mirroring DeleteCategory.
	DeleteProject(ctx context.Context, id, ownerID int64) error

	// Tasks
	CreateTask(ctx context.Context, task *types.Task) (*types.Task, error)
	GetTask(ctx context.Context, id, ownerID int64) (*types.Task, error)
	ListTasks(ctx context.Context, ownerID int64, filter types.TaskFilter) ([]*types.Task, error)
	UpdateTask(ctx context.Context, id, ownerID int64, updates map[string]interface{}) (*types.Task, error)
	// DeleteTask removes the task and all of its subtasks and comments in
	// one transaction.
	DeleteTask(ctx context.Context, id, ownerID int64) error

	// Subtasks (scoped through the parent task; callers verify ownership
	// of the parent before mutating)
	CreateSubtask(ctx context.Context, subtask *types.Subtask) (*types.Subtask, error)
	GetSubtask(ctx context.Context, id, taskID int64) (*types.Subtask, error)
	ListSubtasks(ctx context.Context, taskID int64) ([]*types.Subtask, error)
	ListTodaySubtasks(ctx context.Context, ownerID int64) ([]*types.Subtask, error)
	UpdateSubtask(ctx context.Context, id, taskID int64, updates map[string]interface{}) (*types.Subtask, error)
	DeleteSubtask(ctx context.Context, id, taskID int64) error

	// Comments
	CreateComment(ctx context.Context, comment *types.Comment) (*types.Comment, error)
	GetComment(ctx context.Context, id, authorID int64) (*types.Comment, error)
	ListComments(ctx context.Context, taskID int64) ([]*types.Comment, error)
	UpdateComment(ctx context.Context, id, authorID int64, content string) (*types.Comment, error)
	DeleteComment(ctx context.Context, id, authorID int64) error

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: "taskdeck.db"
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: "taskdeck.db",
	}
}

// NewStorage creates a new SQLite storage backend
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = "taskdeck.db"
	}
	return sqlite.New(cfg.Path)
}
