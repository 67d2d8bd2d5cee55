package mongodb

import (
	"regexp"
	"time"

	"tasktracker/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func taskFilterDocument(filter models.TaskFilter) bson.D {
	doc := bson.D{{Key: "userId", Value: filter.UserID}}
	if filter.Category != nil {
		doc = append(doc, bson.E{Key: "category", Value: *filter.Category})
	}

	created := bson.D{}
	if filter.CreatedFrom != nil {
		created = append(created, bson.E{Key: "$gte", Value: *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		created = append(created, bson.E{Key: "$lte", Value: *filter.CreatedTo})
	}
	if len(created) > 0 {
		doc = append(doc, bson.E{Key: "createdAt", Value: created})
	}

	deadline := bson.D{}
	if filter.DeadlineFrom != nil {
		deadline = append(deadline, bson.E{Key: "$gte", Value: *filter.DeadlineFrom})
	}
	if filter.DeadlineTo != nil {
		deadline = append(deadline, bson.E{Key: "$lte", Value: *filter.DeadlineTo})
	}
	if filter.DeadlineBefore != nil {
		deadline = append(deadline, bson.E{Key: "$lt", Value: *filter.DeadlineBefore})
	}
	if filter.DeadlineAfter != nil {
		deadline = append(deadline, bson.E{Key: "$gt", Value: *filter.DeadlineAfter})
	}
	if len(deadline) > 0 {
		doc = append(doc, bson.E{Key: "deadline", Value: deadline})
	}

	if filter.IsComplete != nil {
		doc = append(doc, bson.E{Key: "isComplete", Value: *filter.IsComplete})
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		doc = append(doc, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}
	return doc
}

func taskSortDocument(mode models.TaskSort) bson.D {
	order := bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	if mode == models.SortPriority {
		return append(bson.D{{Key: "isComplete", Value: 1}, {Key: "isImportant", Value: -1}}, order...)
	}
	return order
}

func userPatchDocument(patch models.UserPatch) bson.D {
	set := bson.D{}
	if patch.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *patch.Username})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.Password != nil {
		set = append(set, bson.E{Key: "password", Value: *patch.Password})
	}
	return set
}

func taskPatchDocument(patch models.TaskPatch) bson.D {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	if patch.Deadline != nil && !patch.ClearDeadline {
		set = append(set, bson.E{Key: "deadline", Value: patch.Deadline.UTC().Truncate(time.Millisecond)})
	}
	if patch.IsComplete != nil {
		set = append(set, bson.E{Key: "isComplete", Value: *patch.IsComplete})
	}
	if patch.IsImportant != nil {
		set = append(set, bson.E{Key: "isImportant", Value: *patch.IsImportant})
	}
	return set
}

// taskUpdateDocument combines the patch $set with an $unset of the deadline
// when the patch clears it.
func taskUpdateDocument(patch models.TaskPatch, updatedAt time.Time) bson.D {
	set := append(taskPatchDocument(patch), bson.E{Key: "updatedAt", Value: updatedAt})
	update := bson.D{{Key: "$set", Value: set}}
	if patch.ClearDeadline {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "deadline", Value: ""}}})
	}
	return update
}
