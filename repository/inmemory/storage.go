package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/google/uuid"
)

type Storage struct {
	mu        sync.RWMutex
	users     map[string]models.User
	tasks     map[string]models.Task
	taskOrder []string
	now       func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		tasks: make(map[string]models.Task),
		now:   time.Now,
	}
}

// WithClock sets the source of created/updated timestamps.
func (s *Storage) WithClock(now func() time.Time) *Storage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email, "") {
		return errors.ErrUserAlreadyExists
	}
	now := s.now().UTC()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) UpdateUser(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	if patch.Email != nil && s.emailTaken(*patch.Email, id) {
		return nil, errors.ErrUserAlreadyExists
	}
	patch.Apply(&user)
	user.UpdatedAt = s.now().UTC()
	s.users[id] = user
	return &user, nil
}

func (s *Storage) emailTaken(email, exceptID string) bool {
	for id, existing := range s.users {
		if id != exceptID && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[task.ID] = *task
	s.taskOrder = append(s.taskOrder, task.ID)
	return nil
}

func (s *Storage) FindTasks(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := []models.Task{}
	for _, id := range s.taskOrder {
		task := s.tasks[id]
		if filter.Match(task) {
			tasks = append(tasks, task)
		}
	}
	models.SortTasks(tasks, filter.Sort)
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, exists := s.tasks[id]
	if !exists || task.UserID != userID {
		return nil, errors.ErrTaskNotFound
	}
	patch.Apply(&task)
	task.UpdatedAt = s.now().UTC()
	s.tasks[id] = task
	return &task, nil
}

func (s *Storage) DeleteTask(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, exists := s.tasks[id]
	if !exists || task.UserID != userID {
		return errors.ErrTaskNotFound
	}
	delete(s.tasks, id)
	for i, taskID := range s.taskOrder {
		if taskID == id {
			s.taskOrder = append(s.taskOrder[:i], s.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) Close() error { return nil }
