package server

import (
	"context"
	"net/http"
	"time"

	"tasktracker/internal/auth"
	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
}

// TaskRepository stores tasks. Every method is scoped to the owning user.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

type TaskAPI struct {
	httpSrv *http.Server
	users   UserRepository
	tasks   TaskRepository
	tokens  *auth.TokenManager
	cfg     *Config
	loc     *time.Location
	now     func() time.Time
}

func NewTaskAPI(users UserRepository, tasks TaskRepository, cfg *Config) *TaskAPI {
	if users == nil || tasks == nil {
		return nil
	}
	cfg = withDefaults(cfg)

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Warn("Неизвестный часовой пояс, используется локальный")
		loc = time.Local
	}

	api := &TaskAPI{
		httpSrv: &http.Server{
			Addr:              cfg.ListenAddr(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		users:  users,
		tasks:  tasks,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL.Duration),
		cfg:    cfg,
		loc:    loc,
		now:    time.Now,
	}
	api.configRoutes()

	return api
}

// withDefaults fills the zero fields of cfg without touching the caller's value.
func withDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()
	if cfg == nil {
		return defaults
	}
	merged := *cfg
	if merged.Addr == "" {
		merged.Addr = defaults.Addr
	}
	if merged.Port == 0 {
		merged.Port = defaults.Port
	}
	if merged.JWTSecret == "" {
		merged.JWTSecret = defaults.JWTSecret
	}
	if merged.TokenTTL.Duration <= 0 {
		merged.TokenTTL = defaults.TokenTTL
	}
	if len(merged.CORSOrigins) == 0 {
		merged.CORSOrigins = defaults.CORSOrigins
	}
	return &merged
}

// WithClock makes handlers and token checks read the current time from now.
func (api *TaskAPI) WithClock(now func() time.Time) *TaskAPI {
	api.now = now
	api.tokens = api.tokens.WithClock(now)
	return api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	log.WithField("addr", api.httpSrv.Addr).Info("HTTP-сервер запущен")
	if err := api.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes() {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		gin.Recovery(),
		RequestLogger(),
		CORS(api.cfg.CORSOrigins),
		GzipRequestDecompress(),
		GzipResponseCompress(),
	)

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"message": "использован некорректный HTTP-метод"})
	})
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "маршрут не найден"})
	})

	router.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Welcome to my Task Manager API")
	})
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.registerRoutes(&router.RouterGroup)
	api.registerRoutes(router.Group("/api"))

	api.httpSrv.Handler = router
}

func (api *TaskAPI) registerRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	{
		user.POST("/register", api.register)
		user.POST("/login", api.login)
		user.POST("/logout", api.logout)
		user.PUT("/update", api.authGate(), api.updateUser)
		user.GET("/me", api.authGate(), api.me)
	}

	task := rg.Group("/task", api.authGate())
	{
		task.POST("/create", api.createTask)
		task.GET("/all", api.getAllTasks)
		task.GET("/date/:date", api.getTasksByDate)
		task.GET("/today", api.getTodayTasks)
		task.GET("/category/:category", api.getTasksByCategory)
		task.GET("/overdue", api.getOverdueTasks)
		task.GET("/due-today", api.getTasksDueToday)
		task.GET("/upcoming", api.getUpcomingTasks)
		task.GET("/search", api.searchTasks)
		task.PUT("/update/:id", api.updateTask)
		task.DELETE("/delete/:id", api.deleteTask)
	}
}
