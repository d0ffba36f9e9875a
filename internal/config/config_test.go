package config

import (
	"testing"
	"time"
)

func TestLoadDBConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")

	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.Path != "roadmate.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadDBConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_DSN", "")
	for _, key := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := "host=db user=roadmate password=roadmate dbname=roadmate port=6543 sslmode=disable TimeZone=UTC"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}

	t.Setenv("DB_DSN", "postgres://u:p@h:5432/x?sslmode=disable")
	cfg, err = LoadDBConfig()
	if err != nil {
		t.Fatalf("load with dsn: %v", err)
	}
	if cfg.PostgresDSN() != "postgres://u:p@h:5432/x?sslmode=disable" {
		t.Fatalf("explicit dsn ignored: %q", cfg.PostgresDSN())
	}
}

func TestLoadDBConfig_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := LoadDBConfig(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoadAppConfig(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GIN_MODE", "release")
	if _, err := LoadAppConfig(); err == nil {
		t.Fatalf("release mode without secret must fail")
	}

	t.Setenv("GIN_MODE", "debug")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("debug load: %v", err)
	}
	if cfg.SessionSecret == "" || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}

	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("SESSION_TTL", "-1h")
	if _, err := LoadAppConfig(); err == nil {
		t.Fatalf("negative ttl must fail")
	}
}
