package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/server"
	db "tasktracker/repository/db"
	inmemory "tasktracker/repository/inmemory"
	"tasktracker/repository/mongodb"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// Server is the part of server.TaskAPI that main drives.
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// Repositories bundles the stores the API runs on and the function that
// releases them.
type Repositories struct {
	Users server.UserRepository
	Tasks server.TaskRepository
	Close func() error
}

func main() {
	cfg, err := server.ReadConfig()
	if err != nil {
		log.WithError(err).Fatal("[ERROR] Ошибка чтения конфигурации")
	}
	SetupLogging(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	log.WithField("storage", cfg.Storage).Info("Запуск сервиса задач...")

	if cfg.Storage == server.StoragePostgres {
		if err := RunMigrations(cfg); err != nil {
			log.WithError(err).Error("[ERROR] Ошибка применения миграций")
		} else {
			log.Info("[SUCCESS] Миграции применены успешно")
		}
	}

	repos, err := InitializeRepositories(cfg)
	if err != nil {
		log.WithError(err).Fatal("[ERROR] Не удалось инициализировать хранилище")
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия хранилища")
		}
	}()

	api := server.NewTaskAPI(repos.Users, repos.Tasks, cfg)
	if api == nil {
		log.Fatal("[ERROR] Не удалось инициализировать API")
	}

	sigChan, serverErr := StartServer(api, cfg)

	select {
	case sig := <-sigChan:
		if err := HandleShutdown(api, sig); err != nil {
			log.WithError(err).Error("[ERROR] Ошибка при graceful shutdown")
		}
	case err := <-serverErr:
		log.WithError(err).Error("[ERROR] Ошибка сервера")
	}

	log.Info("Сервис завершен")
}

func SetupLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func RunMigrations(cfg *server.Config) error {
	return db.Migration(cfg.DBStr, cfg.MigratePath)
}

// InitializeRepositories opens the configured store. When the database is
// unreachable the service falls back to process memory, so it still starts.
func InitializeRepositories(cfg *server.Config) (*Repositories, error) {
	switch cfg.Storage {
	case server.StorageMemory:
		return memoryRepositories(), nil
	case server.StorageMongo:
		store, err := mongodb.NewStorage(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.WithError(err).Warn("[WARN] Не удалось подключиться к MongoDB, используем память")
			return memoryRepositories(), nil
		}
		return &Repositories{Users: store, Tasks: store, Close: store.Close}, nil
	default:
		store, err := db.NewStorage(cfg.DBStr)
		if err != nil {
			log.WithError(err).Warn("[WARN] Не удалось подключиться к БД, используем память")
			return memoryRepositories(), nil
		}
		return &Repositories{Users: store, Tasks: store, Close: store.Close}, nil
	}
}

func memoryRepositories() *Repositories {
	store := inmemory.NewStorage()
	return &Repositories{Users: store, Tasks: store, Close: store.Close}
}

// StartServer runs api in the background. The returned channels deliver the
// first shutdown signal and any error the server stops with.
func StartServer(api Server, cfg *server.Config) (chan os.Signal, chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr()).Info("Сервис запущен")
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	return sigChan, serverErr
}

func HandleShutdown(api Server, sig os.Signal) error {
	log.WithField("signal", sig.String()).Info("[INFO] Получен сигнал, начинаем graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("[SUCCESS] Graceful shutdown выполнен успешно")
	return nil
}
