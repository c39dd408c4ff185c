package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the catalog API.
const ServiceName = "catalog.CategoryService"

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler keeps the standard gRPC health service in sync with the
// database: SERVING while pings succeed, NOT_SERVING otherwise.
type HealthHandler struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	log      *logrus.Logger
}

func NewHealthHandler(db Pinger, interval time.Duration, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		server:   health.NewServer(),
		db:       db,
		interval: interval,
		log:      logger,
	}
}

// Register attaches the health and reflection services to srv.
func (h *HealthHandler) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.server)
	reflection.Register(srv)
}

// Probe pings the database once and publishes the result.
func (h *HealthHandler) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warnf("gRPC Health: database ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run probes immediately and then on every tick until ctx is done, after
// which every service is reported NOT_SERVING.
func (h *HealthHandler) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("gRPC Health: shutting down")
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
