// Package relay собирает воркер outbox-а квитанций: читает очередь и
// вызывает функцию отправки письма от имени сервиса.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/entitlement-gateway/internal/config"
	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/metrics"
	"github.com/magabrotheeeer/entitlement-gateway/internal/services/receipt"
)

// Parallel - сколько квитанций отправляется одновременно.
const Parallel = 4

type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	relay   *receipt.Relay
	metrics *http.Server
	logger  *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "relay.New"
	if cfg.Functions.ServiceKey == "" {
		return nil, fmt.Errorf("%s: functions service key is not set", op)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ReceiptQueues(cfg.RabbitMQ.ReceiptQueue))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sender := functions.NewClient(cfg.Functions.BaseURL, cfg.Functions.ServiceKey, cfg.Functions.Timeout)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &App{
		conn:  conn,
		ch:    ch,
		queue: cfg.RabbitMQ.ReceiptQueue,
		relay: receipt.NewRelay(sender, m, logger),
		metrics: &http.Server{
			Addr:              cfg.RelayMetricsAddress,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, a.queue, Parallel, a.relay.Handle)
	if err != nil {
		a.logger.Error("failed to start receipts consumer", slog.String("queue", a.queue), sl.Err(err))
		return err
	}
	a.logger.Info("receipt relay consuming", slog.String("queue", a.queue))

	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metrics.Addr))
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("receipt relay shutting down gracefully")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metrics.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
