package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/entitlement-gateway/internal/functions"
	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

type mockChannel struct{ mock.Mock }

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendReceiptEmail(ctx context.Context, req models.ReceiptRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) ObserveReceipt(stage, outcome string) {
	m.Called(stage, outcome)
}

func sampleRequest() models.ReceiptRequest {
	return models.ReceiptRequest{
		MessageID: "msg-1",
		Email:     "u@example.com",
		PurchaseDetails: models.PurchaseDetails{
			Amount:        499,
			TransactionID: "sub_1",
			PurchaseDate:  "2026-10-15T12:00:00Z",
			ProductName:   "Premium",
		},
	}
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_PublishReceipt(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Publish", rabbitmq.ReceiptsExchange, rabbitmq.ReceiptRoutingKey, false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool {
			var got models.ReceiptRequest
			return json.Unmarshal(p.Body, &got) == nil && got == sampleRequest() && p.MessageId == "msg-1"
		})).Return(nil).Once()
	m := new(mockMetrics)
	m.On("ObserveReceipt", "publish", "ok").Once()

	require.NoError(t, NewPublisher(ch, m).PublishReceipt(context.Background(), sampleRequest()))
	ch.AssertExpectations(t)
	m.AssertExpectations(t)
}

func TestPublisher_BrokerError(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).Return(amqp.ErrClosed).Once()
	m := new(mockMetrics)
	m.On("ObserveReceipt", "publish", "error").Once()

	err := NewPublisher(ch, m).PublishReceipt(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, amqp.ErrClosed)
	m.AssertExpectations(t)
}

func TestRelay_Handle(t *testing.T) {
	valid, err := json.Marshal(sampleRequest())
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		sendErr     error
		expectSend  bool
		wantErr     bool
		wantDrop    bool
		wantOutcome string
	}{
		{name: "sent", body: valid, expectSend: true, wantOutcome: "sent"},
		{
			name: "transient error requeues", body: valid, expectSend: true,
			sendErr: &functions.CallError{Kind: functions.ErrUnavailable}, wantErr: true, wantOutcome: "retry",
		},
		{
			name: "rejected by server is dropped", body: valid, expectSend: true,
			sendErr: &functions.CallError{Kind: functions.ErrInvalidArgument, Message: "bad email"},
			wantErr: true, wantDrop: true, wantOutcome: "rejected",
		},
		{
			name: "bad service key is dropped", body: valid, expectSend: true,
			sendErr: &functions.CallError{Kind: functions.ErrUnauthenticated},
			wantErr: true, wantDrop: true, wantOutcome: "rejected",
		},
		{name: "malformed json", body: []byte("{"), wantErr: true, wantDrop: true, wantOutcome: "malformed"},
		{name: "missing email", body: []byte(`{"purchase_details":{"transactionId":"t"}}`), wantErr: true, wantDrop: true, wantOutcome: "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(mockSender)
			if tt.expectSend {
				sender.On("SendReceiptEmail", mock.Anything, sampleRequest()).Return(tt.sendErr).Once()
			}
			m := new(mockMetrics)
			m.On("ObserveReceipt", "relay", tt.wantOutcome).Once()

			err := NewRelay(sender, m, newNoopLogger()).Handle(context.Background(), tt.body)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantDrop, errors.Is(err, rabbitmq.ErrDrop))
			} else {
				require.NoError(t, err)
			}
			sender.AssertExpectations(t)
			m.AssertExpectations(t)
		})
	}
}
