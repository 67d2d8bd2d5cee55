package models

import (
	"sort"
	"strings"
	"time"

	"tasktracker/internal/domain/errors"
)

type TaskSort int

const (
	// SortStorage keeps the order tasks were stored in.
	SortStorage TaskSort = iota
	// SortPriority puts incomplete tasks first and, within equal completion
	// state, important tasks first.
	SortPriority
)

// TaskFilter is an owner-scoped task query. Nil bounds are not applied.
// Window bounds (From/To) are inclusive, Before/After bounds are strict.
type TaskFilter struct {
	UserID         string
	Category       *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	DeadlineFrom   *time.Time
	DeadlineTo     *time.Time
	DeadlineBefore *time.Time
	DeadlineAfter  *time.Time
	IsComplete     *bool
	Search         string
	Sort           TaskSort
}

func (f TaskFilter) HasDeadlineBound() bool {
	return f.DeadlineFrom != nil || f.DeadlineTo != nil || f.DeadlineBefore != nil || f.DeadlineAfter != nil
}

// Match reports whether task satisfies every bound of the filter.
func (f TaskFilter) Match(task Task) bool {
	if task.UserID != f.UserID {
		return false
	}
	if f.Category != nil && task.Category != *f.Category {
		return false
	}
	if f.CreatedFrom != nil && task.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && task.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.HasDeadlineBound() {
		if task.Deadline == nil {
			return false
		}
		deadline := *task.Deadline
		if f.DeadlineFrom != nil && deadline.Before(*f.DeadlineFrom) {
			return false
		}
		if f.DeadlineTo != nil && deadline.After(*f.DeadlineTo) {
			return false
		}
		if f.DeadlineBefore != nil && !deadline.Before(*f.DeadlineBefore) {
			return false
		}
		if f.DeadlineAfter != nil && !deadline.After(*f.DeadlineAfter) {
			return false
		}
	}
	if f.IsComplete != nil && task.IsComplete != *f.IsComplete {
		return false
	}
	if f.Search != "" {
		query := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(task.Title), query) &&
			!strings.Contains(strings.ToLower(task.Description), query) {
			return false
		}
	}
	return true
}

// SortTasks orders tasks in place. Ties keep their storage order.
func SortTasks(tasks []Task, mode TaskSort) {
	if mode != SortPriority {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsComplete != b.IsComplete {
			return !a.IsComplete
		}
		return a.IsImportant && !b.IsImportant
	})
}

// DayWindow returns the first and last millisecond of the calendar day of t in loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// ParseDay accepts YYYY-MM-DD (a calendar date in loc) or an RFC3339 timestamp.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if day, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return day, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.In(loc), nil
	}
	return time.Time{}, errors.NewValidationError("date", errors.ErrInvalidDate)
}

func AllTasks(userID string) TaskFilter {
	return TaskFilter{UserID: userID}
}

func TasksCreatedOn(userID string, day time.Time, loc *time.Location) TaskFilter {
	start, end := DayWindow(day, loc)
	return TaskFilter{UserID: userID, CreatedFrom: &start, CreatedTo: &end}
}

func TasksCreatedToday(userID string, now time.Time, loc *time.Location) TaskFilter {
	f := TasksCreatedOn(userID, now, loc)
	f.Sort = SortPriority
	return f
}

func TasksInCategory(userID, category string) TaskFilter {
	return TaskFilter{UserID: userID, Category: &category}
}

func OverdueTasks(userID string, now time.Time) TaskFilter {
	incomplete := false
	return TaskFilter{UserID: userID, DeadlineBefore: &now, IsComplete: &incomplete}
}

func TasksDueOn(userID string, day time.Time, loc *time.Location) TaskFilter {
	start, end := DayWindow(day, loc)
	return TaskFilter{UserID: userID, DeadlineFrom: &start, DeadlineTo: &end}
}

func UpcomingTasks(userID string, now time.Time) TaskFilter {
	return TaskFilter{UserID: userID, DeadlineAfter: &now}
}

func SearchTasks(userID, query string) (TaskFilter, error) {
	if strings.TrimSpace(query) == "" {
		return TaskFilter{}, errors.NewValidationError("query", errors.ErrSearchQueryMissing)
	}
	return TaskFilter{UserID: userID, Search: query}, nil
}
