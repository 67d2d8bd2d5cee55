package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewStorage(t *testing.T) {
	storage := NewStorage()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.users)
	assert.NotNil(t, storage.tasks)
	assert.Empty(t, storage.users)
	assert.Empty(t, storage.tasks)
}

func TestStorageCreateUser(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want struct {
			err error
		}
		setup func(*Storage)
	}{
		{
			name: "successful user creation",
			user: &models.User{Username: "alice", Email: "a@x.com", Password: "hash"},
			setup: func(s *Storage) {
			},
		},
		{
			name: "duplicate email",
			user: &models.User{Username: "alice2", Email: "a@x.com", Password: "hash"},
			want: struct {
				err error
			}{err: errors.ErrUserAlreadyExists},
			setup: func(s *Storage) {
				s.users["user1"] = models.User{ID: "user1", Username: "alice", Email: "a@x.com"}
			},
		},
		{
			name: "duplicate email with different case",
			user: &models.User{Username: "alice2", Email: "A@X.com", Password: "hash"},
			want: struct {
				err error
			}{err: errors.ErrUserAlreadyExists},
			setup: func(s *Storage) {
				s.users["user1"] = models.User{ID: "user1", Username: "alice", Email: "a@x.com"}
			},
		},
		{
			name: "duplicate username is allowed",
			user: &models.User{Username: "alice", Email: "b@x.com", Password: "hash"},
			setup: func(s *Storage) {
				s.users["user1"] = models.User{ID: "user1", Username: "alice", Email: "a@x.com"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewStorage()
			tt.setup(storage)

			err := storage.CreateUser(context.Background(), tt.user)

			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, tt.user.ID)
			assert.False(t, tt.user.CreatedAt.IsZero())
		})
	}
}

func TestStorageGetUser(t *testing.T) {
	storage := NewStorage()
	user := &models.User{Username: "alice", Email: "a@x.com", Password: "hash"}
	require.NoError(t, storage.CreateUser(context.Background(), user))

	byID, err := storage.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	byEmail, err := storage.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = storage.GetUserByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	_, err = storage.GetUserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestStorageUpdateUser(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		patch  models.UserPatch
		want   struct {
			err      error
			username string
			email    string
		}
	}{
		{
			name:   "update username",
			userID: "user1",
			patch:  models.UserPatch{Username: ptr("alice-renamed")},
			want: struct {
				err      error
				username string
				email    string
			}{username: "alice-renamed", email: "a@x.com"},
		},
		{
			name:   "update email",
			userID: "user1",
			patch:  models.UserPatch{Email: ptr("new@x.com")},
			want: struct {
				err      error
				username string
				email    string
			}{username: "alice", email: "new@x.com"},
		},
		{
			name:   "email taken by another user",
			userID: "user1",
			patch:  models.UserPatch{Email: ptr("b@x.com")},
			want: struct {
				err      error
				username string
				email    string
			}{err: errors.ErrUserAlreadyExists},
		},
		{
			name:   "keeping own email",
			userID: "user1",
			patch:  models.UserPatch{Email: ptr("a@x.com")},
			want: struct {
				err      error
				username string
				email    string
			}{username: "alice", email: "a@x.com"},
		},
		{
			name:   "user not found",
			userID: "nonexistent",
			patch:  models.UserPatch{Username: ptr("x")},
			want: struct {
				err      error
				username string
				email    string
			}{err: errors.ErrUserNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewStorage()
			storage.users["user1"] = models.User{ID: "user1", Username: "alice", Email: "a@x.com", Password: "hash"}
			storage.users["user2"] = models.User{ID: "user2", Username: "bob", Email: "b@x.com", Password: "hash"}

			user, err := storage.UpdateUser(context.Background(), tt.userID, tt.patch)

			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.username, user.Username)
			assert.Equal(t, tt.want.email, user.Email)
			assert.Equal(t, "hash", user.Password)
		})
	}
}

func TestStorageTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage()

	task := models.Task{Title: "T1", Description: "first", Category: "work", UserID: "alice"}
	require.NoError(t, storage.CreateTask(ctx, &task))
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())

	tasks, err := storage.FindTasks(ctx, models.AllTasks("alice"))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task, tasks[0])

	updated, err := storage.UpdateTask(ctx, "alice", task.ID, models.TaskPatch{IsComplete: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsComplete)
	assert.Equal(t, "alice", updated.UserID)
	assert.Equal(t, "T1", updated.Title)

	require.NoError(t, storage.DeleteTask(ctx, "alice", task.ID))
	tasks, err = storage.FindTasks(ctx, models.AllTasks("alice"))
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
	assert.Empty(t, storage.taskOrder)
}

func TestStorageTaskOwnership(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage()

	bobTask := models.Task{Title: "bob's", UserID: "bob"}
	require.NoError(t, storage.CreateTask(ctx, &bobTask))

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "update foreign task",
			run: func() error {
				_, err := storage.UpdateTask(ctx, "alice", bobTask.ID, models.TaskPatch{Title: ptr("stolen")})
				return err
			},
		},
		{
			name: "delete foreign task",
			run: func() error {
				return storage.DeleteTask(ctx, "alice", bobTask.ID)
			},
		},
		{
			name: "update missing task",
			run: func() error {
				_, err := storage.UpdateTask(ctx, "alice", "nonexistent", models.TaskPatch{Title: ptr("x")})
				return err
			},
		},
		{
			name: "delete missing task",
			run: func() error {
				return storage.DeleteTask(ctx, "alice", "nonexistent")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), errors.ErrTaskNotFound)
		})
	}

	tasks, err := storage.FindTasks(ctx, models.AllTasks("alice"))
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = storage.FindTasks(ctx, models.AllTasks("bob"))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "bob's", tasks[0].Title)
}

func TestStorageFindTasksPriorityOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	storage := NewStorage().WithClock(func() time.Time { return now })

	for _, task := range []models.Task{
		{Title: "done-important", IsComplete: true, IsImportant: true, UserID: "alice"},
		{Title: "open-plain", UserID: "alice"},
		{Title: "open-important", IsImportant: true, UserID: "alice"},
		{Title: "done-plain", IsComplete: true, UserID: "alice"},
	} {
		task := task
		require.NoError(t, storage.CreateTask(ctx, &task))
	}

	tasks, err := storage.FindTasks(ctx, models.TasksCreatedToday("alice", now, time.UTC))
	require.NoError(t, err)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"open-important", "open-plain", "done-important", "done-plain"}, titles)
}

func TestStorageConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			task := models.Task{Title: "task", UserID: "alice"}
			assert.NoError(t, storage.CreateTask(ctx, &task))
		}()
		go func() {
			defer wg.Done()
			_, err := storage.FindTasks(ctx, models.AllTasks("alice"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := storage.FindTasks(ctx, models.AllTasks("alice"))
	require.NoError(t, err)
	assert.Len(t, tasks, 50)
}
