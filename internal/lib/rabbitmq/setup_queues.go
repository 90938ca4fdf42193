package rabbitmq

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ReceiptRoutingKey - ключ маршрутизации запросов на квитанцию.
const ReceiptRoutingKey = "receipt"

// ReceiptQueues возвращает очереди, нужные outbox-у квитанций.
func ReceiptQueues(queueName string) []QueueConfig {
	return []QueueConfig{
		{QueueName: queueName, RoutingKey: ReceiptRoutingKey},
	}
}
