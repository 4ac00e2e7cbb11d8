package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

func millis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2024, 7, 17, 15, 30, 0, 0, time.Local)
	start, end := DayBounds(now)

	startOfDay := time.Date(2024, 7, 17, 0, 0, 0, 0, time.Local)
	assert.Equal(t, startOfDay.UnixMilli(), start)
	// Inclusive upper bound: one millisecond before the next midnight
	assert.Equal(t, startOfDay.AddDate(0, 0, 1).UnixMilli()-1, end)
}

func TestInToday(t *testing.T) {
	now := time.Date(2024, 7, 17, 12, 0, 0, 0, time.Local)
	midnight := time.Date(2024, 7, 17, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		task types.Task
		want bool
	}{
		{"flagged, no due date", types.Task{IsToday: true}, true},
		{"flagged overrides far due date", types.Task{IsToday: true, DueDate: millis(now.AddDate(0, 0, 7))}, true},
		{"no flag, no due date", types.Task{}, false},
		{"due at exact midnight", types.Task{DueDate: millis(midnight)}, true},
		{"due at last millisecond", types.Task{DueDate: millis(midnight.AddDate(0, 0, 1).Add(-time.Millisecond))}, true},
		{"due one millisecond before midnight", types.Task{DueDate: millis(midnight.Add(-time.Millisecond))}, false},
		{"due at next midnight", types.Task{DueDate: millis(midnight.AddDate(0, 0, 1))}, false},
		{"completed but due today still shows", types.Task{IsCompleted: true, DueDate: millis(now)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.task
			assert.Equal(t, tt.want, InToday(&task, now))
		})
	}
}

func TestTodayTasksSort(t *testing.T) {
	now := time.Now()

	highDone := &types.Task{Title: "high done", IsToday: true, IsCompleted: true, Priority: types.PriorityHigh}
	lowOpen := &types.Task{Title: "low open", IsToday: true, Priority: types.PriorityLow}
	highOpen := &types.Task{Title: "high open", IsToday: true, Priority: types.PriorityHigh}
	mediumOpen := &types.Task{Title: "medium open", IsToday: true, Priority: types.PriorityMedium}
	notToday := &types.Task{Title: "not today", Priority: types.PriorityHigh}

	today := TodayTasks([]*types.Task{highDone, lowOpen, highOpen, mediumOpen, notToday}, now)
	require.Len(t, today, 4)

	// Incomplete before completed, then high > medium > low
	assert.Equal(t, "high open", today[0].Title)
	assert.Equal(t, "medium open", today[1].Title)
	assert.Equal(t, "low open", today[2].Title)
	assert.Equal(t, "high done", today[3].Title)
}

func TestTodayTasksStableOnTies(t *testing.T) {
	now := time.Now()
	first := &types.Task{Title: "first", IsToday: true, Priority: types.PriorityMedium}
	second := &types.Task{Title: "second", IsToday: true, Priority: types.PriorityMedium}

	today := TodayTasks([]*types.Task{first, second}, now)
	require.Len(t, today, 2)
	assert.Equal(t, "first", today[0].Title)
	assert.Equal(t, "second", today[1].Title)
}

func TestAvailableForToday(t *testing.T) {
	now := time.Date(2024, 7, 17, 12, 0, 0, 0, time.Local)

	flagged := &types.Task{Title: "flagged", IsToday: true}
	dueToday := &types.Task{Title: "due today", DueDate: millis(now)}
	completed := &types.Task{Title: "completed", IsCompleted: true}
	dueTomorrow := &types.Task{Title: "due tomorrow", DueDate: millis(now.AddDate(0, 0, 1))}
	plain := &types.Task{Title: "plain"}

	available := AvailableForToday([]*types.Task{flagged, dueToday, completed, dueTomorrow, plain}, now)
	require.Len(t, available, 2)
	assert.Equal(t, "due tomorrow", available[0].Title)
	assert.Equal(t, "plain", available[1].Title)
}
