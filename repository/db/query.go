package db

import (
	"fmt"
	"strings"

	"tasktracker/internal/domain/models"
)

const taskColumns = `id, title, description, category, deadline, is_complete, is_important, user_id, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildTaskQuery renders filter as a SELECT over tasks. The owner condition is
// always the first one.
func buildTaskQuery(filter models.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	add("user_id = $%d", filter.UserID)
	if filter.Category != nil {
		add("category = $%d", *filter.Category)
	}
	if filter.CreatedFrom != nil {
		add("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("created_at <= $%d", *filter.CreatedTo)
	}
	if filter.DeadlineFrom != nil {
		add("deadline >= $%d", *filter.DeadlineFrom)
	}
	if filter.DeadlineTo != nil {
		add("deadline <= $%d", *filter.DeadlineTo)
	}
	if filter.DeadlineBefore != nil {
		add("deadline < $%d", *filter.DeadlineBefore)
	}
	if filter.DeadlineAfter != nil {
		add("deadline > $%d", *filter.DeadlineAfter)
	}
	if filter.IsComplete != nil {
		add("is_complete = $%d", *filter.IsComplete)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		add(`(title ILIKE $%[1]d ESCAPE '\' OR description ILIKE $%[1]d ESCAPE '\')`, pattern)
	}

	order := "created_at ASC, id ASC"
	if filter.Sort == models.SortPriority {
		order = "is_complete ASC, is_important DESC, " + order
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " + strings.Join(conds, " AND ") + " ORDER BY " + order
	return query, args
}
