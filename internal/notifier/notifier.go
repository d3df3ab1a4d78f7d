package notifier

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"grocery-store/internal/service"
)

// KafkaNotifier hands order confirmations to the notification topic; the
// consumer in internal/consumer turns them into customer emails. Delivery is
// fire-and-forget from the order service's point of view.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) SendOrderConfirmation(ctx context.Context, confirmation service.OrderConfirmation) error {
	value, err := json.Marshal(confirmation)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte("order-confirmation." + confirmation.OrderNumber),
		Value: value,
	}
	return n.writer.WriteMessages(ctx, msg)
}
