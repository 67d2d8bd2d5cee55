package db

import (
	"testing"
	"time"

	"tasktracker/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTaskQuery(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)
	search, err := models.SearchTasks("owner", "50%_off")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter models.TaskFilter
		want   struct {
			where string
			order string
			args  []any
		}
	}{
		{
			name:   "all tasks",
			filter: models.AllTasks("owner"),
			want: struct {
				where string
				order string
				args  []any
			}{
				where: "WHERE user_id = $1 ORDER BY",
				order: "ORDER BY created_at ASC, id ASC",
				args:  []any{"owner"},
			},
		},
		{
			name:   "overdue",
			filter: models.OverdueTasks("owner", now),
			want: struct {
				where string
				order string
				args  []any
			}{
				where: "WHERE user_id = $1 AND deadline < $2 AND is_complete = $3 ORDER BY",
				order: "ORDER BY created_at ASC, id ASC",
				args:  []any{"owner", now, false},
			},
		},
		{
			name:   "created today sorted by priority",
			filter: models.TasksCreatedToday("owner", now, time.UTC),
			want: struct {
				where string
				order string
				args  []any
			}{
				where: "WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3 ORDER BY",
				order: "ORDER BY is_complete ASC, is_important DESC, created_at ASC, id ASC",
				args: []any{
					"owner",
					time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
					time.Date(2026, 5, 10, 23, 59, 59, 999000000, time.UTC),
				},
			},
		},
		{
			name:   "search escapes LIKE wildcards",
			filter: search,
			want: struct {
				where string
				order string
				args  []any
			}{
				where: `WHERE user_id = $1 AND (title ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\') ORDER BY`,
				order: "ORDER BY created_at ASC, id ASC",
				args:  []any{"owner", `%50\%\_off%`},
			},
		},
		{
			name:   "category",
			filter: models.TasksInCategory("owner", "work"),
			want: struct {
				where string
				order string
				args  []any
			}{
				where: "WHERE user_id = $1 AND category = $2 ORDER BY",
				order: "ORDER BY created_at ASC, id ASC",
				args:  []any{"owner", "work"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildTaskQuery(tt.filter)

			assert.Contains(t, query, "SELECT "+taskColumns+" FROM tasks")
			assert.Contains(t, query, tt.want.where)
			assert.Contains(t, query, tt.want.order)
			assert.Equal(t, tt.want.args, args)
		})
	}
}
