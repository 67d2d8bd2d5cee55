package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Public returns a copy of the user with the password hash cleared.
func (u User) Public() User {
	u.Password = ""
	return u
}

type Task struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Category    string     `json:"category" bson:"category"`
	Deadline    *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`
	IsComplete  bool       `json:"isComplete" bson:"isComplete"`
	IsImportant bool       `json:"isImportant" bson:"isImportant"`
	UserID      string     `json:"userId" bson:"userId"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserPatch lists the only user fields a profile update may change.
type UserPatch struct {
	Username *string `json:"username" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// Apply copies the set fields onto user. Password is expected to be hashed already.
func (p UserPatch) Apply(user *User) {
	if p.Username != nil {
		user.Username = *p.Username
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.Password != nil {
		user.Password = *p.Password
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Category    string     `json:"category" validate:"max=100"`
	Deadline    *time.Time `json:"deadline"`
	IsImportant *bool      `json:"isImportant"`
}

// NewTask builds the task owned by userID. Id and timestamps are assigned by the store.
func (r CreateTaskRequest) NewTask(userID string) Task {
	task := Task{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Deadline:    r.Deadline,
		UserID:      userID,
	}
	if r.IsImportant != nil {
		task.IsImportant = *r.IsImportant
	}
	return task
}

// TaskPatch lists the only task fields an update may change. Owner, id and
// timestamps are not patchable.
type TaskPatch struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
	Deadline    *time.Time `json:"deadline"`
	IsComplete  *bool      `json:"isComplete"`
	IsImportant *bool      `json:"isImportant"`

	// ClearDeadline is set by an explicit "deadline": null and removes the deadline.
	ClearDeadline bool `json:"-"`
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type plain TaskPatch
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	for key, raw := range fields {
		if strings.EqualFold(key, "deadline") && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			p.Deadline = nil
			p.ClearDeadline = true
		}
	}
	return nil
}

func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Category != nil {
		task.Category = *p.Category
	}
	switch {
	case p.ClearDeadline:
		task.Deadline = nil
	case p.Deadline != nil:
		deadline := *p.Deadline
		task.Deadline = &deadline
	}
	if p.IsComplete != nil {
		task.IsComplete = *p.IsComplete
	}
	if p.IsImportant != nil {
		task.IsImportant = *p.IsImportant
	}
}
