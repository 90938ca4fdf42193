package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/entitlement-gateway/docs"
	"github.com/magabrotheeeer/entitlement-gateway/internal/cache"
	"github.com/magabrotheeeer/entitlement-gateway/internal/config"
	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/metrics"
	"github.com/magabrotheeeer/entitlement-gateway/internal/migrations"
	"github.com/magabrotheeeer/entitlement-gateway/internal/plans"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/receipt"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/reconciler"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/records"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/session"
	"github.com/magabrotheeeer/entitlement-gateway/internal/storage"
)

type App struct {
	server     *http.Server
	grpcServer *grpc.Server
	listener   net.Listener
	health     *health.Server
	logger     *slog.Logger

	db       *storage.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "gateway.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	// Redis необязателен: без него записи читаются прямо из PostgreSQL.
	var recordCache records.Cache
	if cfg.RedisConnection.Address != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis is unavailable, record cache disabled", sl.Err(err))
		} else {
			app.cache = c
			recordCache = c
		}
	}
	recordsService := records.NewService(db, recordCache, cfg.Entitlement.RecordCacheTTL, logger)

	catalog, err := plans.New(cfg.Plans)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	opts := []reconciler.Option{
		reconciler.WithValidateTimeout(cfg.Entitlement.ValidateTimeout),
		reconciler.WithMetrics(m),
	}
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqpConn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ReceiptQueues(cfg.RabbitMQ.ReceiptQueue))
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqpCh = ch
		opts = append(opts, reconciler.WithReceipts(receipt.NewPublisher(ch, m)))
	} else {
		logger.Warn("rabbitmq url is not set, receipts disabled")
	}

	// Шлюз вызывает функции только от имени пользователя, сервисный ключ ему не нужен.
	remote := functions.NewClient(cfg.Functions.BaseURL, "", cfg.Functions.Timeout)
	sessions := session.NewManager(catalog, logger)
	rec := reconciler.New(remote, recordsService, sessions, catalog, logger, opts...)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Sessions:      sessions,
		Reconciler:    rec,
		Tokens:        jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL),
		Catalog:       catalog,
		Database:      db,
		Gatherer:      registry,
		MutationRPS:   cfg.Entitlement.MutationRPS,
		MutationBurst: cfg.Entitlement.MutationBurst,
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddress)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.listener = lis
	app.grpcServer = grpc.NewServer()
	app.health = health.NewServer()
	healthpb.RegisterHealthServer(app.grpcServer, app.health)

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()
	go func() {
		a.logger.Info("gRPC health service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()
	a.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	a.logger.Info("shutting down gracefully")
	a.health.Shutdown()
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.grpcServer.GracefulStop()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.amqpCh != nil {
		if err := a.amqpCh.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
