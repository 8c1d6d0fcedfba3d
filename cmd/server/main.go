package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/config"
	healthhandler "github.com/ManuelDev-we/CRM-condominio-sub002/internal/health/handler"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/server"
	apptelemetry "github.com/ManuelDev-we/CRM-condominio-sub002/internal/telemetry/otel"
)

const (
	serviceName     = "condominio-auth"
	shutdownTimeout = 10 * time.Second
	healthInterval  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := apptelemetry.NewProviders(ctx, apptelemetry.Options{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	app, err := build(ctx, cfg, providers)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	router, err := server.NewRouter(app.httpDeps(cfg))
	if err != nil {
		log.Fatalf("router: %v", err)
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hs := health.NewServer()
	grpcSrv := server.NewGRPCServer(hs)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	go healthhandler.Sync(ctx, app.checker, hs, healthInterval)
	go app.sweep(ctx, cfg.SweepInterval())

	go func() {
		log.Printf("gRPC health server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("grpc serve: %v", err)
		}
	}()
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcSrv.GracefulStop()
	app.close(shutdownCtx)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("server stopped")
}
