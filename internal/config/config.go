package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	Port             string
	JWTSecret        string
	JWTAudience      string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	CloudinaryConfig CloudinaryConfig
	AppEnv           string

	// Сколько эко-баллов получает каждый участник завершённого обмена
	EcoPointsPerExchange int
	RateLimitPerMinute   int
	DBTimeout            time.Duration
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// Enabled - заданы ли ключи Cloudinary
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// LoadConfig загружает переменные из .env
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "ecoswap_user"),
		Password: getEnv("PGPASSWORD", "ecoswap_pass"),
		Name:     getEnv("PGDATABASE", "ecoswap"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	maxConns, err := getEnvInt("PG_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("PG_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	dbConfig.MaxConns = int32(maxConns)
	dbConfig.MinConns = int32(minConns)

	// Формируем строку подключения к базе данных, если она не задана целиком
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)
	}

	ecoPoints, err := getEnvInt("ECO_POINTS_PER_EXCHANGE", 10)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return nil, err
	}
	dbTimeout, err := getEnvInt("DB_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTAudience:    getEnv("JWT_AUDIENCE", "authenticated"),
		DatabaseURL:    dbURL,
		DatabaseConfig: dbConfig,
		CloudinaryConfig: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "ecoswap/chat"),
		},
		AppEnv:               getEnv("APP_ENV", "production"),
		EcoPointsPerExchange: ecoPoints,
		RateLimitPerMinute:   rateLimit,
		DBTimeout:            time.Duration(dbTimeout) * time.Second,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("не задана обязательная переменная окружения JWT_SECRET")
	}

	return cfg, nil
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt читает числовую переменную окружения
func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("некорректное значение %s: %w", key, err)
	}
	return n, nil
}
