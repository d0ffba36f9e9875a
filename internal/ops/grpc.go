package ops

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName: имя сервиса в health-проверках.
const ServiceName = "roadmate"

// Pinger: то, что умеет проверить доступность хранилища (*sql.DB подходит).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server это служебный gRPC с health и reflection.
type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
}

func NewServer(opts ...grpc.ServerOption) *Server {
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	// До первой проверки БД считаем сервис неготовым.
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{GRPC: gs, Health: hs}
}

// WatchDatabase пингует БД раз в interval и переключает статус health.
// Работает до отмены ctx.
func (s *Server) WatchDatabase(ctx context.Context, db Pinger, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := false
	for {
		s.probe(ctx, db, interval, &serving)
		select {
		case <-ctx.Done():
			s.Health.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) probe(ctx context.Context, db Pinger, timeout time.Duration, serving *bool) {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := db.PingContext(pingCtx)
	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if (err == nil) != *serving {
		if err != nil {
			log.Printf("database probe failed: %v", err)
		} else {
			log.Printf("database probe ok")
		}
		*serving = err == nil
	}
	s.Health.SetServingStatus(ServiceName, status)
	s.Health.SetServingStatus("", status)
}
