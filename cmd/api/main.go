package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	_ "ordersvc/docs"
	"ordersvc/pkg/api"
	"ordersvc/pkg/config"
	"ordersvc/pkg/kafka"
	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"
	"ordersvc/pkg/order"
	"ordersvc/pkg/order/memory"
	"ordersvc/pkg/order/postgres"
	"ordersvc/pkg/order/sqlite"
	"ordersvc/pkg/otel"
)

// @title Orders Service API
// @version 1.0
// @description CRUD for orders with order-created events published to Kafka
// @host localhost:8000
// @BasePath /
func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ordersvc", otel.GetTraceID)
	defer log.Sync()

	if err := run(log); err != nil {
		log.Error(context.Background(), "startup", "error", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var tracer trace.Tracer
	if cfg.OtelHost != "" {
		tp, shutdown, err := otel.InitTracing(log, otel.Config{
			ServiceName: "ordersvc",
			Host:        cfg.OtelHost,
			Probability: 1.0,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown(context.Background())
		tracer = tp.Tracer("ordersvc")
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// The broker connection must be up before any create-order traffic.
	pub := kafka.NewPublisher(cfg.KafkaBootstrap, cfg.OrdersTopic)
	log.Info(ctx, "connecting to kafka", "addr", cfg.KafkaBootstrap, "topic", cfg.OrdersTopic)
	if err := pub.Start(ctx, cfg.KafkaStartupRetries, cfg.KafkaStartupDelay); err != nil {
		return fmt.Errorf("kafka startup: %w", err)
	}

	policy, err := order.ParsePublishFailurePolicy(cfg.PublishFailurePolicy)
	if err != nil {
		return err
	}

	m := metrics.NewRegistry()
	svc := order.NewService(repo, pub, log, m, policy)

	var rdb *redis.Client
	if cfg.AuthEnabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	srv := api.New(svc, log, m, api.Options{Tracer: tracer, Redis: rdb, AuthEnabled: cfg.AuthEnabled})

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Handler()}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Info(gctx, "listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutCtx)
	})
	err = g.Wait()

	// Release the broker connection only after traffic has stopped.
	if cerr := pub.Close(); cerr != nil {
		log.Error(ctx, "kafka shutdown", "error", cerr)
	}
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info(ctx, "shutdown complete")
	return nil
}

func openRepository(cfg config.Config) (order.Repository, func() error, error) {
	switch cfg.StorageDriver {
	case "sqlite":
		repo, err := sqlite.Open(cfg.SQLiteFile)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.New(db), db.Close, nil
	case "memory":
		return memory.New(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
