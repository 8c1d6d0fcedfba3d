package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	apphealth "github.com/ManuelDev-we/CRM-condominio-sub002/internal/health"
)

// ServiceName is the gRPC health service name reported alongside the overall ("") status.
const ServiceName = "condominio.auth"

// Sync runs checker every interval and mirrors the result into srv until ctx is done.
// The first run happens immediately.
func Sync(ctx context.Context, checker *apphealth.Checker, srv *health.Server, interval time.Duration) {
	update := func() {
		r := checker.Check(ctx)
		status := healthpb.HealthCheckResponse_SERVING
		if !r.Healthy {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Printf("health: not ready: %v", r.Checks)
		}
		srv.SetServingStatus("", status)
		srv.SetServingStatus(ServiceName, status)
	}
	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			srv.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
