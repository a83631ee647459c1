package trackingservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"ride-track/internal/general/bus"
	"ride-track/internal/general/config"
	"ride-track/internal/general/jwt"
	"ride-track/internal/general/logger"
	"ride-track/internal/general/postgres"
	"ride-track/internal/general/rabbitmq"
	"ride-track/internal/ports"
	"ride-track/internal/software/tracking/handler"
	"ride-track/internal/software/tracking/service"
	"ride-track/internal/software/tracking/ws"
)

func Run(ctx context.Context, maxConcurrent int) error {
	// set up a new logger for the tracking service with a static request ID for startup logs
	logger := logger.New("tracking-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load configuration
	cfg, err := config.LoadFromFile("./config/config.yaml")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// set up a Postgres connection pool
	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	// apply schema migrations
	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Error(ctx, "db_migration_failed", "Failed to apply migrations", err, nil)
		return err
	}

	// connect to RabbitMQ; the broker mirror is best-effort, so a broker
	// outage does not keep the service down
	var pub ports.EventPublisher
	rmq, err := rabbitmq.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Running without broker mirror", err, nil)
	} else {
		defer rmq.Close()
		pub = rabbitmq.NewMQPublisher(rmq)
	}

	// set up the JWT manager
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, cfg.AccessTTL(), cfg.RefreshTTL())

	// set up the in-process broadcast bus for ride groups
	groupBus := bus.NewGroupBus(logger)
	defer groupBus.Close()

	// set up the necessary repos
	driverRepo := postgres.NewDriverRepo(pool)
	locationRepo := postgres.NewLocationRepo(pool)
	rideRepo := postgres.NewRideRepo(pool)

	// set up the tracking service
	svc := service.NewTrackingService(logger, driverRepo, locationRepo, rideRepo)

	// set up the websocket handler
	wsHandler := ws.NewWebSocket(logger, jwtManager, svc, groupBus, pub)

	// set up the HTTP handler and its routes
	mux := http.NewServeMux()
	httpHandler := handler.NewTrackingHTTPHandler(svc, jwtManager, logger)
	httpHandler.RegisterRoutes(mux)
	wsHandler.RegisterRoutes(mux)

	// concurrency limiter (global) — blocks when capacity is full
	limitedHandler := withConcurrencyLimit(maxConcurrent, mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.TrackingServicePort),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Tracking Service started on port %d", cfg.Services.TrackingServicePort),
		map[string]any{"port": cfg.Services.TrackingServicePort, "max_concurrent": maxConcurrent},
	)

	// start the server in a background goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	// wait for context cancellation or server error
	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.Services.TrackingServicePort})
			return err
		}
		return nil
	}

	return nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
