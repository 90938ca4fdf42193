// Package receipt реализует outbox квитанций: публикацию запроса после
// покупки и пересылку его в функцию sendReceiptEmail.
package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Metrics учитывает квитанции.
type Metrics interface {
	ObserveReceipt(stage, outcome string)
}

// Publisher публикует запросы на квитанцию в exchange квитанций.
type Publisher struct {
	mu      sync.Mutex
	ch      rabbitmq.Publisher
	metrics Metrics
}

// NewPublisher создает Publisher поверх канала ch.
func NewPublisher(ch rabbitmq.Publisher, metrics Metrics) *Publisher {
	return &Publisher{ch: ch, metrics: metrics}
}

// PublishReceipt ставит запрос в очередь. Канал amqp не рассчитан на
// одновременную публикацию, поэтому вызовы сериализуются.
func (p *Publisher) PublishReceipt(_ context.Context, req models.ReceiptRequest) error {
	const op = "receipt.PublishReceipt"
	p.mu.Lock()
	err := rabbitmq.PublishMessage(p.ch, rabbitmq.ReceiptsExchange, rabbitmq.ReceiptRoutingKey, req.MessageID, req)
	p.mu.Unlock()

	if err != nil {
		p.observe("publish", "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	p.observe("publish", "ok")
	return nil
}

func (p *Publisher) observe(stage, outcome string) {
	if p.metrics != nil {
		p.metrics.ObserveReceipt(stage, outcome)
	}
}

// Sender отправляет письмо с квитанцией.
type Sender interface {
	SendReceiptEmail(ctx context.Context, req models.ReceiptRequest) error
}

// Relay пересылает запросы из очереди в функцию отправки писем.
type Relay struct {
	sender  Sender
	metrics Metrics
	log     *slog.Logger
}

// NewRelay создает Relay.
func NewRelay(sender Sender, metrics Metrics, log *slog.Logger) *Relay {
	return &Relay{sender: sender, metrics: metrics, log: log}
}

// Handle обрабатывает одно сообщение очереди. Временные ошибки возвращаются
// как есть, чтобы сообщение было доставлено повторно. Некорректные
// сообщения и отказы сервера помечаются rabbitmq.ErrDrop.
func (r *Relay) Handle(ctx context.Context, body []byte) error {
	const op = "receipt.Handle"
	log := r.log.With(slog.String("op", op))

	var req models.ReceiptRequest
	if err := json.Unmarshal(body, &req); err != nil {
		r.observe("malformed")
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
	}
	if req.Email == "" || req.PurchaseDetails.TransactionID == "" {
		r.observe("malformed")
		return fmt.Errorf("%s: %w: email and transaction id are required", op, rabbitmq.ErrDrop)
	}
	log = log.With(slog.String("message_id", req.MessageID), slog.String("transaction_id", req.PurchaseDetails.TransactionID))

	err := r.sender.SendReceiptEmail(ctx, req)
	switch {
	case err == nil:
		r.observe("sent")
		log.Info("receipt email sent")
		return nil
	case functions.Transient(err):
		r.observe("retry")
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, functions.ErrUnauthenticated):
		log.Error("service credential rejected", sl.Err(err))
		r.observe("rejected")
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
	default:
		r.observe("rejected")
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
	}
}

func (r *Relay) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.ObserveReceipt("relay", outcome)
	}
}
