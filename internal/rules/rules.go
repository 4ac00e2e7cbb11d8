// Package rules implements the task aggregate rules: the subtask
// completion cascade and the derived today views. All state passes
// through the storage layer; the package holds no data of its own
// beyond the per-task locks that serialize cascade evaluation.
package rules

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/storage"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

// CascadePolicy controls how subtask completion propagates to the parent
type CascadePolicy string

const (
	// CascadeForwardOnly completes the parent when every subtask is
	// complete but never reverts it when a subtask is un-completed.
	// Completion is sticky. This is the default.
	CascadeForwardOnly CascadePolicy = "forward_only"

	// CascadeBidirectional additionally reverts a completed parent when
	// any subtask becomes incomplete.
	CascadeBidirectional CascadePolicy = "bidirectional"
)

// IsValid checks if the cascade policy value is valid
func (p CascadePolicy) IsValid() bool {
	return p == CascadeForwardOnly || p == CascadeBidirectional
}

// Service applies task aggregate rules on top of a storage backend
type Service struct {
	store  storage.Storage
	policy CascadePolicy

	// Per-task locks serialize the read-subtasks/decide/write-parent
	// sequence so two concurrent subtask completions cannot both observe
	// "not all complete yet" and miss the cascade.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a rules service with the given cascade policy.
// An empty policy defaults to forward-only.
func NewService(store storage.Storage, policy CascadePolicy) *Service {
	if policy == "" {
		policy = CascadeForwardOnly
	}
	return &Service{
		store:  store,
		policy: policy,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// taskLock returns the mutex serializing cascade evaluation for a task.
// Locks are never removed; the map grows with the set of tasks a process
// has touched, which is bounded by a single user's working set.
func (s *Service) taskLock(taskID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[taskID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[taskID] = lock
	}
	return lock
}

// CompleteTask sets a task's completion state. Completing forces
// status=done and stamps completed_at; un-completing resets status to todo
// and clears completed_at regardless of the prior status. The operation is
// independent of subtask state and may override it.
func (s *Service) CompleteTask(ctx context.Context, ownerID, taskID int64, completed bool) (*types.Task, error) {
	updates := map[string]interface{}{
		"is_completed": completed,
	}
	if completed {
		updates["status"] = string(types.StatusDone)
		updates["completed_at"] = time.Now().UnixMilli()
	} else {
		updates["status"] = string(types.StatusTodo)
		updates["completed_at"] = nil
	}
	return s.store.UpdateTask(ctx, taskID, ownerID, updates)
}

// ToggleTask flips a task's completion state
func (s *Service) ToggleTask(ctx context.Context, ownerID, taskID int64) (*types.Task, error) {
	task, err := s.store.GetTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}
	return s.CompleteTask(ctx, ownerID, taskID, !task.IsCompleted)
}

// SubtaskChange carries the mutable subtask fields. Nil fields are left
// untouched.
type SubtaskChange struct {
	Title       *string
	IsCompleted *bool
	IsToday     *bool
	Order       *int
}

// UpdateSubtask applies a change to a subtask and then evaluates the
// completion cascade for the parent. Returns (nil, nil) when the task does
// not belong to the owner or the subtask does not belong to the task.
func (s *Service) UpdateSubtask(ctx context.Context, ownerID, taskID, subtaskID int64, change SubtaskChange) (*types.Subtask, error) {
	task, err := s.store.GetTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	updates := map[string]interface{}{}
	if change.Title != nil {
		updates["title"] = *change.Title
	}
	if change.IsCompleted != nil {
		updates["is_completed"] = *change.IsCompleted
		// completed_at mirrors is_completed, same as for tasks
		if *change.IsCompleted {
			updates["completed_at"] = time.Now().UnixMilli()
		} else {
			updates["completed_at"] = nil
		}
	}
	if change.IsToday != nil {
		updates["is_today"] = *change.IsToday
	}
	if change.Order != nil {
		updates["order"] = *change.Order
	}

	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	subtask, err := s.store.UpdateSubtask(ctx, subtaskID, taskID, updates)
	if err != nil {
		return nil, err
	}
	if subtask == nil {
		return nil, nil
	}

	// The cascade check must run after the subtask write has been
	// persisted so it observes the latest state.
	if err := s.evaluateCascadeLocked(ctx, ownerID, taskID); err != nil {
		return nil, err
	}
	return subtask, nil
}

// EvaluateCompletionCascade re-derives the parent task's completion state
// from its subtasks. A task with no subtasks is never touched. When every
// subtask is complete the parent is completed unconditionally (idempotent).
// Under the bidirectional policy a complete parent is reverted when any
// subtask is incomplete; under forward-only it is left alone.
func (s *Service) EvaluateCompletionCascade(ctx context.Context, ownerID, taskID int64) error {
	lock := s.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()
	return s.evaluateCascadeLocked(ctx, ownerID, taskID)
}

func (s *Service) evaluateCascadeLocked(ctx context.Context, ownerID, taskID int64) error {
	subtasks, err := s.store.ListSubtasks(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to list subtasks: %w", err)
	}
	if len(subtasks) == 0 {
		return nil
	}

	allCompleted := true
	for _, subtask := range subtasks {
		if !subtask.IsCompleted {
			allCompleted = false
			break
		}
	}

	if allCompleted {
		if _, err := s.CompleteTask(ctx, ownerID, taskID, true); err != nil {
			return fmt.Errorf("failed to complete parent task: %w", err)
		}
		return nil
	}

	if s.policy == CascadeBidirectional {
		task, err := s.store.GetTask(ctx, taskID, ownerID)
		if err != nil {
			return err
		}
		if task != nil && task.IsCompleted {
			if _, err := s.CompleteTask(ctx, ownerID, taskID, false); err != nil {
				return fmt.Errorf("failed to revert parent task: %w", err)
			}
		}
	}
	return nil
}
