package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Leganyst/roadmate/internal/app"
	"github.com/Leganyst/roadmate/internal/config"
	"github.com/Leganyst/roadmate/internal/db"
	"github.com/Leganyst/roadmate/internal/handler"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/ops"
)

const sessionJanitorInterval = time.Hour

func main() {
	config.LoadEnvFile()

	// 1. Конфиги из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории и сервисы.
	a := app.New(gormDB, app.Settings{
		SessionSecret:    appCfg.SessionSecret,
		SessionTTL:       appCfg.SessionTTL,
		PasswordHashCost: appCfg.PasswordHashCost,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Разовая инициализация, только если явно включена.
	if appCfg.SeedOnStart {
		seed(ctx, a, appCfg)
	}

	// 6. HTTP.
	gin.SetMode(appCfg.GinMode)
	h := handler.New(a.HandlerServices(), handler.Options{
		CookieSecure: appCfg.CookieSecure,
		CookieDomain: appCfg.CookieDomain,
		CORSOrigins:  appCfg.CORSOrigins,
	})
	httpServer := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 7. Служебный gRPC (health + reflection).
	opsServer := ops.NewServer()
	lis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", appCfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("http server listening on %s", appCfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("ops gRPC server listening on %s", appCfg.GRPCAddr)
		return opsServer.GRPC.Serve(lis)
	})
	g.Go(func() error {
		opsServer.WatchDatabase(gctx, sqlDB, appCfg.HealthProbeInterval)
		return nil
	})
	g.Go(func() error {
		purgeSessions(gctx, a)
		return nil
	})

	// 8. Грейсфул-шатдаун по сигналу или падению любого из серверов.
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
		opsServer.GRPC.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func seed(ctx context.Context, a *app.App, cfg *config.AppConfig) {
	n, err := a.Provisioning.SeedCategories(ctx)
	if err != nil {
		log.Fatalf("seed categories: %v", err)
	}
	log.Printf("seed: %d categories created", n)

	if cfg.AdminPassword == "" {
		log.Printf("seed: ADMIN_PASSWORD is empty, admin account not provisioned")
		return
	}
	u, created, err := a.Provisioning.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("seed: admin %q ready (created=%t)", u.Username, created)
}

// purgeSessions раз в час чистит истёкшие сессии.
func purgeSessions(ctx context.Context, a *app.App) {
	ticker := time.NewTicker(sessionJanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Sessions.PurgeExpired(ctx)
			if err != nil {
				log.Printf("purge sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired sessions", n)
			}
		}
	}
}
