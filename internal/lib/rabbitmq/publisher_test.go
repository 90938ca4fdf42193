package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishMessage_Unit(t *testing.T) {
	t.Run("publishes persistent json", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", ReceiptsExchange, ReceiptRoutingKey, false, false,
			mock.MatchedBy(func(p amqp.Publishing) bool {
				return p.ContentType == "application/json" &&
					p.MessageId == "m1" &&
					p.DeliveryMode == amqp.Persistent &&
					string(p.Body) == `{"ok":true}`
			})).Return(nil).Once()

		err := PublishMessage(pub, ReceiptsExchange, ReceiptRoutingKey, "m1", map[string]bool{"ok": true})
		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("marshal error", func(t *testing.T) {
		pub := new(mockPublisher)
		err := PublishMessage(pub, "", "q", "m2", struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
		pub.AssertNotCalled(t, "Publish")
	})

	t.Run("broker error", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", "", "q", false, false, mock.Anything).Return(amqp.ErrClosed).Once()

		err := PublishMessage(pub, "", "q", "m3", 1)
		assert.ErrorIs(t, err, amqp.ErrClosed)
	})
}

func TestPublishMessage_ToReceiptsExchange(t *testing.T) {
	ctx := context.Background()
	amqpURI := amqpURIForTest(ctx, t)

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	queueName := "receipts.publish-test"
	ch, err := SetupChannel(conn, ReceiptQueues(queueName))
	require.NoError(t, err)

	msg := map[string]any{"email": "u@example.com"}
	require.NoError(t, PublishMessage(ch, ReceiptsExchange, ReceiptRoutingKey, "m-1", msg))

	deliveries, err := ch.Consume(queueName, "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got map[string]any
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, msg["email"], got["email"])
		assert.Equal(t, "m-1", d.MessageId)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}
