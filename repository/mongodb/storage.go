// Package mongodb keeps users and tasks as documents in the "users" and
// "tasks" collections. Task documents reference their owner by "userId".
package mongodb

import (
	"context"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	queryTimeout = 15 * time.Second

	usersCollection = "users"
	tasksCollection = "tasks"
)

type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
	now    func() time.Time
}

func NewStorage(uri, database string) (*Storage, error) {
	if uri == "" || database == "" {
		return nil, errors.New("не указаны адрес или имя базы MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось подключиться к MongoDB")
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		log.WithError(err).Error("[ERROR] MongoDB недоступна")
		return nil, err
	}

	db := client.Database(database)
	s := &Storage{
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
		now:    time.Now,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithField("database", database).Info("[SUCCESS] Соединение с MongoDB установлено успешно")
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось создать индекс пользователей")
		return err
	}
	_, err = s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "deadline", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}}},
	})
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось создать индексы задач")
		return err
	}
	return nil
}

func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// timestamp is truncated to what BSON dates can hold.
func (s *Storage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := s.timestamp()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrUserAlreadyExists
		}
		log.WithError(err).Error("[ERROR] Не удалось создать пользователя")
		return err
	}
	log.WithField("user_id", user.ID).Info("[SUCCESS] Пользователь успешно создан")
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Storage) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user := &models.User{}
	if err := s.users.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.ErrUserNotFound
		}
		log.WithError(err).Error("[ERROR] Ошибка при получении пользователя")
		return nil, err
	}
	return user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := userPatchDocument(patch)
	set = append(set, bson.E{Key: "updatedAt", Value: s.timestamp()})

	user := &models.User{}
	err := s.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, errors.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
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

	now := s.timestamp()
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Deadline != nil {
		deadline := task.Deadline.UTC().Truncate(time.Millisecond)
		task.Deadline = &deadline
	}

	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		log.WithError(err).Error("[ERROR] Не удалось создать задачу")
		return err
	}
	log.WithField("task_id", task.ID).Info("[SUCCESS] Задача успешно создана")
	return nil
}

func (s *Storage) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := s.tasks.Find(ctx, taskFilterDocument(filter), options.Find().SetSort(taskSortDocument(filter.Sort)))
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось получить задачи")
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		log.WithError(err).Error("[ERROR] Ошибка при чтении задач")
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	task := &models.Task{}
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}},
		taskUpdateDocument(patch, s.timestamp()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.ErrTaskNotFound
		}
		log.WithError(err).Error("[ERROR] Не удалось обновить задачу")
		return nil, err
	}
	log.WithField("task_id", id).Info("[SUCCESS] Задача успешно обновлена")
	return task, nil
}

func (s *Storage) DeleteTask(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.tasks.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}})
	if err != nil {
		log.WithError(err).Error("[ERROR] Не удалось удалить задачу")
		return err
	}
	if res.DeletedCount == 0 {
		return errors.ErrTaskNotFound
	}
	log.WithField("task_id", id).Info("[SUCCESS] Задача удалена")
	return nil
}
