package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DBConfig struct {
	Driver string
	// Path: файл sqlite (":memory:" для тестов).
	Path string

	// DSN, если задан, используется для postgres как есть.
	DSN string

	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // минут
}

func LoadDBConfig() (*DBConfig, error) {
	cfg := &DBConfig{
		Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		Path:            getEnv("DB_PATH", "roadmate.db"),
		DSN:             getEnv("DB_DSN", ""),
		Host:            getEnv("DB_HOST", "postgres"),
		User:            getEnv("DB_USER", "roadmate"),
		Password:        getEnv("DB_PASSWORD", "roadmate"),
		Name:            getEnv("DB_NAME", "roadmate"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
		Port:            getEnvInt("DB_PORT", 5432),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
	}

	switch cfg.Driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("invalid DB config: DB_PATH must not be empty for sqlite")
		}
	case DriverPostgres:
		if cfg.DSN == "" && (cfg.Host == "" || cfg.User == "" || cfg.Name == "") {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.Driver)
	}

	return cfg, nil
}

// PostgresDSN собирает DSN в формате key=value для pgx.
func (c *DBConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
