package rules

import (
	"sort"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// TodayView is the derived set of items surfaced for a single day
type TodayView struct {
	Tasks    []*types.Task    `json:"tasks"`
	Subtasks []*types.Subtask `json:"subtasks"`
}

// DayBounds returns the inclusive epoch-millis bounds of now's local day:
// [00:00:00.000, 23:59:59.999]
func DayBounds(now time.Time) (start, end int64) {
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Millisecond)
	return startOfDay.UnixMilli(), endOfDay.UnixMilli()
}

// InToday reports whether a task belongs to the today view for now's day:
// either explicitly flagged, or due within the local day (both bounds
// inclusive).
func InToday(task *types.Task, now time.Time) bool {
	if task.IsToday {
		return true
	}
	if task.DueDate == nil {
		return false
	}
	start, end := DayBounds(now)
	return *task.DueDate >= start && *task.DueDate <= end
}

// TodayTasks filters and orders the today view from an already-fetched
// task list. Incomplete tasks sort before completed ones, then by priority
// high to low. The sort is stable so ties keep their input order. Pure
// projection; the input slice is not modified.
func TodayTasks(tasks []*types.Task, now time.Time) []*types.Task {
	var today []*types.Task
	for _, task := range tasks {
		if InToday(task, now) {
			today = append(today, task)
		}
	}

	sort.SliceStable(today, func(i, j int) bool {
		if today[i].IsCompleted != today[j].IsCompleted {
			return !today[i].IsCompleted
		}
		return today[i].Priority.Rank() < today[j].Priority.Rank()
	})
	return today
}

// AvailableForToday returns tasks a user may still explicitly add to the
// target day's view: not already flagged, not due on the target day (those
// already show), and not completed.
func AvailableForToday(tasks []*types.Task, target time.Time) []*types.Task {
	start, end := DayBounds(target)

	var available []*types.Task
	for _, task := range tasks {
		if task.IsToday {
			continue
		}
		if task.DueDate != nil && *task.DueDate >= start && *task.DueDate <= end {
			continue
		}
		if task.IsCompleted {
			continue
		}
		available = append(available, task)
	}
	return available
}
