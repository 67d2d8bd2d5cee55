package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tasktracker/internal/auth"
	"tasktracker/internal/domain/errors"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

const (
	defaultAddr        = "0.0.0.0"
	defaultPort        = 8080
	defaultStorage     = StoragePostgres
	defaultDBStr       = "postgresql://shouldbeinVaultuser:shouldbeinVaultpassword@db:5432/tasks?sslmode=disable"
	defaultMigratePath = "migrations"
	defaultMongoURI    = "mongodb://localhost:27017"
	defaultMongoDB     = "tasks"
	defaultJWTSecret   = "shouldbeinVaultsecret"
	defaultLogLevel    = "info"
	defaultGinMode     = "release"
	defaultCORSOrigin  = "http://localhost:3000"
)

// Duration reads a time.ParseDuration string from JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Addr         string   `json:"addr"`
	Port         int      `json:"port"`
	Storage      string   `json:"storage"`
	DBStr        string   `json:"db_str"`
	MigratePath  string   `json:"migrate_path"`
	MongoURI     string   `json:"mongo_uri"`
	MongoDB      string   `json:"mongo_db"`
	JWTSecret    string   `json:"jwt_secret"`
	TokenTTL     Duration `json:"token_ttl"`
	CookieSecure bool     `json:"cookie_secure"`
	CORSOrigins  []string `json:"cors_origins"`
	LogLevel     string   `json:"log_level"`
	Timezone     string   `json:"timezone"`
	GinMode      string   `json:"gin_mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:        defaultAddr,
		Port:        defaultPort,
		Storage:     defaultStorage,
		DBStr:       defaultDBStr,
		MigratePath: defaultMigratePath,
		MongoURI:    defaultMongoURI,
		MongoDB:     defaultMongoDB,
		JWTSecret:   defaultJWTSecret,
		TokenTTL:    Duration{auth.DefaultTokenTTL},
		CORSOrigins: []string{defaultCORSOrigin},
		LogLevel:    defaultLogLevel,
		GinMode:     defaultGinMode,
	}
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

// Location is the time zone that day-windows are computed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: порт должен быть от 1 до 65535: %d", errors.ErrConfigInvalidFormat, c.Port)
	}
	switch c.Storage {
	case StoragePostgres, StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("%w: неизвестное хранилище %q", errors.ErrConfigInvalidFormat, c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: не задан секрет подписи токенов", errors.ErrConfigInvalidFormat)
	}
	if c.TokenTTL.Duration <= 0 {
		return fmt.Errorf("%w: время жизни токена должно быть положительным", errors.ErrConfigInvalidFormat)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigInvalidFormat, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigInvalidFormat, err)
	}
	return nil
}

func ReadConfig() (*Config, error) {
	return LoadConfig(os.Args[1:])
}

// LoadConfig layers defaults, the JSON file, .env and the environment, and
// finally the flags that were set explicitly in args.
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	addr := fs.String("addr", defaultAddr, "адрес сервера")
	port := fs.Int("port", defaultPort, "порт сервера")
	storage := fs.String("storage", defaultStorage, "хранилище: postgres, mongo или memory")
	dbstr := fs.String("dbstr", defaultDBStr, "строка подключения к БД")
	dbDsn := fs.String("dbdsn", "", "DSN для подключения к базе данных (приоритетнее dbstr)")
	migratePath := fs.String("migratepath", defaultMigratePath, "путь к папке с миграциями")
	mongoURI := fs.String("mongouri", defaultMongoURI, "адрес MongoDB")
	mongoDB := fs.String("mongodb", defaultMongoDB, "имя базы MongoDB")
	logLevel := fs.String("loglevel", defaultLogLevel, "уровень логирования")
	configFile := fs.String("c", "", "путь к файлу конфигурации JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err == nil {
		log.Info("Переменные окружения загружены из .env")
	}

	cfg := DefaultConfig()

	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}
	if configPath != "" {
		if err := loadJSONConfig(configPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "port":
			cfg.Port = *port
		case "storage":
			cfg.Storage = *storage
		case "dbstr":
			if *dbDsn == "" {
				cfg.DBStr = *dbstr
			}
		case "dbdsn":
			cfg.DBStr = *dbDsn
		case "migratepath":
			cfg.MigratePath = *migratePath
		case "mongouri":
			cfg.MongoURI = *mongoURI
		case "mongodb":
			cfg.MongoDB = *mongoDB
		case "loglevel":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Warn("Используется секрет подписи токенов по умолчанию, задайте JWT_SECRET")
	}
	return cfg, nil
}

func loadJSONConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %s: %v", errors.ErrConfigFileReadFailed, path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err)
	}
	log.WithField("path", path).Info("JSON конфигурация успешно загружена")
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil {
			log.Warnf("%s в переменной окружения PORT: %s", errors.ErrConfigInvalidFormat, port)
		} else {
			cfg.Port = p
		}
	}
	if storage := os.Getenv("STORAGE"); storage != "" {
		cfg.Storage = strings.ToLower(storage)
	}
	if dbStr := os.Getenv("DB_STR"); dbStr != "" {
		cfg.DBStr = dbStr
	}
	if migratePath := os.Getenv("MIGRATE_PATH"); migratePath != "" {
		cfg.MigratePath = migratePath
	}
	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		cfg.MongoURI = mongoURI
	}
	if mongoDB := os.Getenv("MONGO_DB"); mongoDB != "" {
		cfg.MongoDB = mongoDB
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err != nil {
			log.Warnf("%s в переменной окружения TOKEN_TTL: %s", errors.ErrConfigInvalidFormat, ttl)
		} else {
			cfg.TokenTTL = Duration{d}
		}
	}
	if secure := os.Getenv("COOKIE_SECURE"); secure != "" {
		if b, err := strconv.ParseBool(secure); err != nil {
			log.Warnf("%s в переменной окружения COOKIE_SECURE: %s", errors.ErrConfigInvalidFormat, secure)
		} else {
			cfg.CookieSecure = b
		}
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.GinMode = mode
	}

	if cfg.DBStr == defaultDBStr {
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		if dbUser != "" && dbPassword != "" && dbName != "" && dbHost != "" && dbPort != "" {
			cfg.DBStr = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
		}
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
