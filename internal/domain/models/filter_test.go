package models

import (
	"testing"
	"time"

	"tasktracker/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestDayWindow(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		name string
		t    time.Time
		loc  *time.Location
		want struct {
			start time.Time
			end   time.Time
		}
	}{
		{
			name: "midday UTC",
			t:    time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: struct {
				start time.Time
				end   time.Time
			}{
				start: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
				end:   time.Date(2026, 5, 10, 23, 59, 59, 999000000, time.UTC),
			},
		},
		{
			name: "late UTC is the next day further east",
			t:    time.Date(2026, 5, 10, 22, 30, 0, 0, time.UTC),
			loc:  moscow,
			want: struct {
				start time.Time
				end   time.Time
			}{
				start: time.Date(2026, 5, 11, 0, 0, 0, 0, moscow),
				end:   time.Date(2026, 5, 11, 23, 59, 59, 999000000, moscow),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DayWindow(tt.t, tt.loc)
			assert.True(t, tt.want.start.Equal(start), "start %v", start)
			assert.True(t, tt.want.end.Equal(end), "end %v", end)
		})
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar date", value: "2026-05-10", want: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)},
		{name: "timestamp", value: "2026-05-10T15:04:05Z", want: time.Date(2026, 5, 10, 15, 4, 5, 0, time.UTC)},
		{name: "timestamp with offset", value: "2026-05-11T01:00:00+03:00", want: time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "yesterday", wantErr: true},
		{name: "impossible date", value: "2026-02-30", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.value, time.UTC)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidDate)
				assert.ErrorIs(t, err, errors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestTaskFilterMatch(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tonight := now.Add(6 * time.Hour)

	overdue := Task{UserID: "u1", Title: "Pay rent", Deadline: &yesterday, CreatedAt: now}
	doneOverdue := Task{UserID: "u1", Title: "Old", Deadline: &yesterday, IsComplete: true, CreatedAt: now}
	dueTonight := Task{UserID: "u1", Title: "Call mom", Description: "about the MILK", Category: "home", Deadline: &tonight, CreatedAt: now}
	noDeadline := Task{UserID: "u1", Title: "Someday", CreatedAt: yesterday}
	foreign := Task{UserID: "u2", Title: "Pay rent", Deadline: &yesterday, CreatedAt: now}

	tests := []struct {
		name   string
		filter TaskFilter
		task   Task
		want   bool
	}{
		{name: "owner only", filter: AllTasks("u1"), task: foreign, want: false},
		{name: "all", filter: AllTasks("u1"), task: noDeadline, want: true},
		{name: "overdue", filter: OverdueTasks("u1", now), task: overdue, want: true},
		{name: "overdue skips completed", filter: OverdueTasks("u1", now), task: doneOverdue, want: false},
		{name: "overdue skips missing deadline", filter: OverdueTasks("u1", now), task: noDeadline, want: false},
		{name: "overdue skips future deadline", filter: OverdueTasks("u1", now), task: dueTonight, want: false},
		{name: "overdue never crosses owners", filter: OverdueTasks("u1", now), task: foreign, want: false},
		{name: "due today", filter: TasksDueOn("u1", now, time.UTC), task: dueTonight, want: true},
		{name: "due today skips yesterday", filter: TasksDueOn("u1", now, time.UTC), task: overdue, want: false},
		{name: "upcoming", filter: UpcomingTasks("u1", now), task: dueTonight, want: true},
		{name: "upcoming skips missing deadline", filter: UpcomingTasks("u1", now), task: noDeadline, want: false},
		{name: "upcoming is strict", filter: UpcomingTasks("u1", tonight), task: dueTonight, want: false},
		{name: "created today", filter: TasksCreatedToday("u1", now, time.UTC), task: overdue, want: true},
		{name: "created yesterday", filter: TasksCreatedToday("u1", now, time.UTC), task: noDeadline, want: false},
		{name: "category", filter: TasksInCategory("u1", "home"), task: dueTonight, want: true},
		{name: "category is exact", filter: TasksInCategory("u1", "Home"), task: dueTonight, want: false},
		{name: "search title ignores case", filter: TaskFilter{UserID: "u1", Search: "RENT"}, task: overdue, want: true},
		{name: "search description", filter: TaskFilter{UserID: "u1", Search: "milk"}, task: dueTonight, want: true},
		{name: "search is literal", filter: TaskFilter{UserID: "u1", Search: "p.y"}, task: overdue, want: false},
		{name: "search miss", filter: TaskFilter{UserID: "u1", Search: "bread"}, task: dueTonight, want: false},
		{name: "window bounds are inclusive", filter: TaskFilter{UserID: "u1", CreatedFrom: ptrTime(now), CreatedTo: ptrTime(now)}, task: overdue, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.task))
		})
	}
}

func TestSortTasks(t *testing.T) {
	tasks := []Task{
		{Title: "done important", IsComplete: true, IsImportant: true},
		{Title: "plain 1"},
		{Title: "important"},
		{Title: "done"},
		{Title: "plain 2"},
	}
	tasks[2].IsImportant = true
	tasks[3].IsComplete = true

	storage := append([]Task(nil), tasks...)
	SortTasks(storage, SortStorage)
	assert.Equal(t, tasks, storage)

	SortTasks(tasks, SortPriority)
	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"important", "plain 1", "plain 2", "done important", "done"}, titles)
}

func TestSearchTasks(t *testing.T) {
	_, err := SearchTasks("u1", "")
	assert.ErrorIs(t, err, errors.ErrSearchQueryMissing)

	_, err = SearchTasks("u1", "   ")
	assert.ErrorIs(t, err, errors.ErrSearchQueryMissing)

	filter, err := SearchTasks("u1", " milk ")
	require.NoError(t, err)
	assert.Equal(t, TaskFilter{UserID: "u1", Search: " milk "}, filter)
}
