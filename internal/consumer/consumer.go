package consumer

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"grocery-store/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Consumer drains the notification topic and delivers order confirmation
// emails. A failed delivery is logged and the message skipped; the order
// itself was already committed.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(reader *kafka.Reader) *Consumer {
	return &Consumer{reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	logger.Info().Msg("Notification consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("Error reading notification message")
			continue
		}
		c.processMessage(msg)
	}
}

func (c *Consumer) processMessage(msg kafka.Message) {
	var confirmation service.OrderConfirmation
	if err := json.Unmarshal(msg.Value, &confirmation); err != nil {
		logger.Error().Err(err).Msg("Error unmarshalling notification message")
		return
	}

	// Email delivery goes here; logged for now since no SMTP relay is wired
	logger.Info().
		Str("email", confirmation.Email).
		Str("order_number", confirmation.OrderNumber).
		Str("items", confirmation.ItemSummary).
		Msg("Order confirmation sent")
}
