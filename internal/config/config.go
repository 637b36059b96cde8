package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config - конфигурация процесса: читается один раз при старте и далее
// не меняется. Передаётся в конструкторы компонентов явно.
type Config struct {
	Port string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	MongoURI      string
	MongoDatabase string

	MapboxToken string

	BlobRoot     string // корневой каталог хранилища блобов
	UploadPrefix string // папка, под которой сохраняются загруженные медиафайлы

	BotToken string

	ExternalTimeout time.Duration // таймаут обращений к внешним сервисам
}

// Load читает конфигурацию из переменных окружения.
func Load() (Config, error) {
	cfg := Config{
		Port:          envOrDefault("API_PORT", "8080"),
		DBHost:        envOrDefault("DB_HOST", "localhost"),
		DBPort:        envOrDefault("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBName:        os.Getenv("DB_NAME"),
		MongoURI:      envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: envOrDefault("MONGODB_DATABASE", "egm"),
		MapboxToken:   os.Getenv("MAPBOX_ACCESS_TOKEN"),
		BlobRoot:      envOrDefault("BLOB_ROOT", "blobs"),
		UploadPrefix:  envOrDefault("UPLOAD_PREFIX", "personal_display"),
		BotToken:      os.Getenv("BOT_TOKEN"),
	}

	timeoutSeconds, err := parseIntEnv("EXTERNAL_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("разбор EXTERNAL_TIMEOUT_SECONDS: %w", err)
	}
	cfg.ExternalTimeout = time.Duration(timeoutSeconds) * time.Second

	return cfg, nil
}

// PostgresDSN собирает строку подключения к Postgres.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
