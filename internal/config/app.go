package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig: настройки веб-приложения и ops gRPC.
type AppConfig struct {
	HTTPAddr string
	GRPCAddr string
	GinMode  string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	CookieDomain  string

	CORSOrigins      []string
	PasswordHashCost int

	HealthProbeInterval time.Duration

	// Одноразовая инициализация при старте (категории + администратор).
	SeedOnStart   bool
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// LoadEnvFile подхватывает .env, если он есть. Отсутствие файла не ошибка.
func LoadEnvFile(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8000"),
		GRPCAddr:            getEnv("GRPC_ADDR", ":50051"),
		GinMode:             getEnv("GIN_MODE", "release"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTL:          getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		CookieSecure:        getEnvBool("COOKIE_SECURE", false),
		CookieDomain:        getEnv("COOKIE_DOMAIN", ""),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:8000"}),
		PasswordHashCost:    getEnvInt("PASSWORD_HASH_COST", 0),
		HealthProbeInterval: getEnvDuration("HEALTH_PROBE_INTERVAL", 15*time.Second),
		SeedOnStart:         getEnvBool("SEED_ON_START", false),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:          getEnv("ADMIN_EMAIL", "admin@roadmate.com"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.SessionSecret == "" {
		if cfg.GinMode != "debug" {
			return nil, errors.New("invalid app config: SESSION_SECRET is required")
		}
		cfg.SessionSecret = "dev-insecure-secret"
		log.Printf("SESSION_SECRET is empty, using development secret")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("invalid app config: SESSION_TTL must be positive")
	}

	return cfg, nil
}
