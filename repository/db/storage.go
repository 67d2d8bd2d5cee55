package db

import (
	"context"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	queryTimeout = 15 * time.Second

	uniqueViolation = "23505"
)

const (
	prepCreateUser     = `INSERT INTO users (id, username, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	prepGetUserByID    = `SELECT id, username, email, password, created_at, updated_at FROM users WHERE id = $1`
	prepGetUserByEmail = `SELECT id, username, email, password, created_at, updated_at FROM users WHERE email = $1`
	prepUpdateUser     = `UPDATE users SET
		username = COALESCE($1, username),
		email = COALESCE($2, email),
		password = COALESCE($3, password),
		updated_at = $4
		WHERE id = $5
		RETURNING id, username, email, password, created_at, updated_at`
	prepCreateTask = `INSERT INTO tasks (` + taskColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	prepUpdateTask = `UPDATE tasks SET
		title = COALESCE($1, title),
		description = COALESCE($2, description),
		category = COALESCE($3, category),
		deadline = CASE WHEN $10 THEN NULL ELSE COALESCE($4, deadline) END,
		is_complete = COALESCE($5, is_complete),
		is_important = COALESCE($6, is_important),
		updated_at = $7
		WHERE id = $8 AND user_id = $9
		RETURNING ` + taskColumns
	prepDeleteTask = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
)

type Storage struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStorage(connStr string) (*Storage, error) {
	if connStr == "" {
		return nil, ErrEmptyDSN
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось подключиться к базе данных")
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.WithError(err).Error("[ERROR] База данных недоступна")
		return nil, err
	}

	log.Info("[SUCCESS] Соединение с базой данных установлено успешно")
	return &Storage{pool: pool, now: time.Now}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := s.now().UTC()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.pool.Exec(ctx, prepCreateUser, user.ID, user.Username, user.Email, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrUserAlreadyExists
		}
		log.WithError(err).Error("[ERROR] Не удалось создать пользователя")
		return err
	}
	log.WithField("user_id", user.ID).Info("[SUCCESS] Пользователь успешно создан")
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, prepGetUserByID, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.WithError(err).Error("[ERROR] Ошибка при получении пользователя")
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, prepGetUserByEmail, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.WithError(err).Error("[ERROR] Ошибка при получении пользователя по email")
		return nil, err
	}
	return user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, prepUpdateUser, patch.Username, patch.Email, patch.Password, s.now().UTC(), id)
	user, err := scanUser(row)
	if err != nil {
		switch {
		case err == pgx.ErrNoRows:
			return nil, errors.ErrUserNotFound
		case isUniqueViolation(err):
			return nil, errors.ErrUserAlreadyExists
		}
		log.WithError(err).Error("[ERROR] Не удалось обновить пользователя")
		return nil, err
	}
	log.WithField("user_id", id).Info("[SUCCESS] Пользователь успешно обновлен")
	return user, nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := s.now().UTC()
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.pool.Exec(ctx, prepCreateTask,
		task.ID, task.Title, task.Description, task.Category, task.Deadline,
		task.IsComplete, task.IsImportant, task.UserID, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось создать задачу")
		return err
	}
	log.WithField("task_id", task.ID).Info("[SUCCESS] Задача успешно создана")
	return nil
}

func (s *Storage) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if _, err := uuid.Parse(filter.UserID); err != nil {
		return []models.Task{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args := buildTaskQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось получить задачи")
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.WithError(err).Error("[ERROR] Ошибка при чтении задач")
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		log.WithError(err).Error("[ERROR] Ошибка при чтении задач")
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	if !validIDs(userID, id) {
		return nil, errors.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, prepUpdateTask,
		patch.Title, patch.Description, patch.Category, patch.Deadline,
		patch.IsComplete, patch.IsImportant, s.now().UTC(), id, userID, patch.ClearDeadline)
	task, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrTaskNotFound
		}
		log.WithError(err).Error("[ERROR] Не удалось обновить задачу")
		return nil, err
	}
	log.WithField("task_id", id).Info("[SUCCESS] Задача успешно обновлена")
	return task, nil
}

func (s *Storage) DeleteTask(ctx context.Context, userID, id string) error {
	if !validIDs(userID, id) {
		return errors.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, prepDeleteTask, id, userID)
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось удалить задачу")
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	log.WithField("task_id", id).Info("[SUCCESS] Задача удалена")
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Category, &task.Deadline,
		&task.IsComplete, &task.IsImportant, &task.UserID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
