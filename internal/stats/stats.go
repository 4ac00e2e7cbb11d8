// Package stats computes completion statistics over in-memory task
// snapshots. Every function is pure; callers fetch the tasks and pass
// them in.
package stats

import (
	"math"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// UncategorizedLabel names the synthetic bucket for tasks with no category
const UncategorizedLabel = "Uncategorized"

// CompletionRate returns round(100*completed/total) as an integer percent,
// 0 when total is zero. Never NaN, never an error.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// PeriodStart returns the inclusive lower bound of a statistics period,
// anchored to now's local calendar: midnight for day, the most recent
// Sunday's midnight for week, the first of the month for month.
func PeriodStart(now time.Time, period types.Period) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch period {
	case types.PeriodWeek:
		return midnight.AddDate(0, 0, -int(midnight.Weekday()))
	case types.PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return midnight
	}
}

// Overview aggregates tasks created at or after the period start
func Overview(tasks []*types.Task, now time.Time, period types.Period) types.Overview {
	start := PeriodStart(now, period)

	total := 0
	completed := 0
	for _, task := range tasks {
		if task.CreatedAt.Before(start) {
			continue
		}
		total++
		if task.IsCompleted {
			completed++
		}
	}

	return types.Overview{
		Total:          total,
		Completed:      completed,
		CompletionRate: CompletionRate(completed, total),
	}
}

// ByCategory counts total and completed tasks per category. Every known
// category gets a bucket even when empty; tasks with no category (or a
// dangling reference) aggregate into an "Uncategorized" bucket appended
// last only if it is non-empty.
func ByCategory(tasks []*types.Task, categories []*types.Category) []types.CategoryStat {
	result := make([]types.CategoryStat, 0, len(categories)+1)
	index := make(map[int64]int, len(categories))

	for _, category := range categories {
		index[category.ID] = len(result)
		id := category.ID
		result = append(result, types.CategoryStat{
			CategoryID:   &id,
			CategoryName: category.Name,
		})
	}

	uncategorized := types.CategoryStat{CategoryName: UncategorizedLabel}

	for _, task := range tasks {
		bucket := &uncategorized
		if task.CategoryID != nil {
			if i, ok := index[*task.CategoryID]; ok {
				bucket = &result[i]
			}
		}
		bucket.Total++
		if task.IsCompleted {
			bucket.Completed++
		}
	}

	if uncategorized.Total > 0 {
		result = append(result, uncategorized)
	}
	return result
}

// ByProject aggregates completion metrics for tasks filtered to one
// project. Same math as Overview without the period filter.
func ByProject(tasks []*types.Task, projectID int64) types.Overview {
	total := 0
	completed := 0
	for _, task := range tasks {
		if task.ProjectID == nil || *task.ProjectID != projectID {
			continue
		}
		total++
		if task.IsCompleted {
			completed++
		}
	}

	return types.Overview{
		Total:          total,
		Completed:      completed,
		CompletionRate: CompletionRate(completed, total),
	}
}
