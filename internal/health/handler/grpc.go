package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the grpc.health.v1 service name reported alongside the overall ("") status.
const ServiceName = "bahayscout.api"

// Watch re-runs the readiness check every interval and mirrors the result into hs until ctx is done.
// On return every service is marked NOT_SERVING.
func Watch(ctx context.Context, checker *Checker, hs *health.Server, interval time.Duration, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	last := healthpb.HealthCheckResponse_UNKNOWN
	update := func() {
		status := healthpb.HealthCheckResponse_SERVING
		if err := checker.Ready(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if last != status {
				log.Warn("grpc health: not serving", zap.Error(err))
			}
		}
		last = status
		hs.SetServingStatus("", status)
		hs.SetServingStatus(ServiceName, status)
	}
	update()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			update()
		}
	}
}
