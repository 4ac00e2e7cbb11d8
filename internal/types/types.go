package types

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the current state of a task.
// Completion is tracked separately by IsCompleted; the canonical mutation
// paths keep the two in sync (done <=> completed) but a direct status edit
// does not touch the completion flag.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusHold       Status = "hold"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusHold:
		return true
	}
	return false
}

// Priority represents task urgency
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority value is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank returns the sort rank for a priority: high sorts first.
// Unknown values rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// User is an account that owns categories, projects and tasks
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

// Validate checks if the user has valid field values
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email: %s", u.Email)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Category groups tasks for filtering and statistics
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultCategoryColor is used when a category is created without a color
const DefaultCategoryColor = "#3B82F6"

// Validate checks if the category has valid field values
func (c *Category) Validate() error {
	if len(c.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("name must be 100 characters or less (got %d)", len(c.Name))
	}
	return nil
}

// Project is a container for related tasks
type Project struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultProjectColor is used when a project is created without a color
const DefaultProjectColor = "#8B5CF6"

// Validate checks if the project has valid field values
func (p *Project) Validate() error {
	if len(p.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("name must be 200 characters or less (got %d)", len(p.Name))
	}
	return nil
}

// Task represents a top-level actionable item owned by a user.
// DueDate and CompletedAt are epoch milliseconds.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *int64     `json:"due_date,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	IsToday     bool       `json:"is_today"`
	CompletedAt *int64     `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Subtasks    []*Subtask `json:"subtasks,omitempty"`
	Comments    []*Comment `json:"comments,omitempty"`
}

// Validate checks if the task has valid field values
func (t *Task) Validate() error {
	if len(t.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(t.Title))
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}
	return nil
}

// Subtask is an ordered checklist item belonging to exactly one task
type Subtask struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	IsToday     bool      `json:"is_today"`
	CompletedAt *int64    `json:"completed_at,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the subtask has valid field values
func (s *Subtask) Validate() error {
	if len(s.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(s.Title))
	}
	return nil
}

// Comment is a note attached to a task
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the comment has valid field values
func (c *Comment) Validate() error {
	if len(c.Content) == 0 {
		return fmt.Errorf("content is required")
	}
	return nil
}

// TaskFilter is used to filter task queries.
// Nil/empty fields are ignored. Date bounds are inclusive epoch millis.
type TaskFilter struct {
	Status      []Status
	Priority    []Priority
	CategoryID  *int64
	ProjectID   *int64
	IsToday     *bool
	Search      string
	DueDateFrom *int64
	DueDateTo   *int64
	Limit       int
}

// Period selects the statistics window, anchored to the local calendar
type Period string

const (
	PeriodDay   Period = "day"   // local midnight to now
	PeriodWeek  Period = "week"  // most recent Sunday local midnight to now
	PeriodMonth Period = "month" // first of month local midnight to now
)

// IsValid checks if the period value is valid
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// Overview provides aggregate completion metrics for a set of tasks
type Overview struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completion_rate"`
}

// CategoryStat holds per-category completion counts. A nil CategoryID
// identifies the synthetic bucket for tasks with no category.
type CategoryStat struct {
	CategoryID   *int64 `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int    `json:"total"`
	Completed    int    `json:"completed"`
}
