package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/researchdex/dataset-marketplace/internal/adapters/cache"
	eventadapter "github.com/researchdex/dataset-marketplace/internal/adapters/events"
	httpadapter "github.com/researchdex/dataset-marketplace/internal/adapters/http"
	"github.com/researchdex/dataset-marketplace/internal/adapters/memory"
	"github.com/researchdex/dataset-marketplace/internal/adapters/postgres"
	"github.com/researchdex/dataset-marketplace/internal/application"
	"github.com/researchdex/dataset-marketplace/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("bootstrapping dataset marketplace service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	cleanups := make([]func(), 0, 3)

	var listings ports.ListingRepository
	var purchases ports.PurchaseRepository
	var outboxRepo ports.OutboxRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gorm sql db: %w", err)
		}
		cleanups = append(cleanups, func() { _ = sqlDB.Close() })

		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		repos := postgres.NewRepositories(db)
		listings = repos.Listings
		purchases = repos.Purchases
		outboxRepo = repos.Outbox
	} else {
		logger.Warn("no database configured; using in-process store")
		repos := memory.NewRepositories()
		listings = repos.Listings
		purchases = repos.Purchases
		outboxRepo = repos.Outbox
	}

	var infoCache ports.ListingInfoCache
	if cfg.RedisURL != "" {
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		infoCache = cacheadapter.NewRedisListingInfoCache(redisClient)
	}

	var publisher ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			application.EventListingCreated:   cfg.ListingTopic,
			application.EventPurchaseRecorded: cfg.PurchaseTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		cleanups = append(cleanups, func() { _ = kafkaPublisher.Close() })
		publisher = kafkaPublisher
	} else {
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceID:    cfg.ServiceID,
			InfoCacheTTL: cfg.InfoCacheTTL,
		},
		Listings:  listings,
		Purchases: purchases,
		InfoCache: infoCache,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		for _, cleanup := range cleanups {
			cleanup()
		}
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	outbox := eventadapter.NewOutboxWorker(
		logger,
		outboxRepo,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn: func(context.Context) {
			for _, cleanup := range cleanups {
				cleanup()
			}
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
