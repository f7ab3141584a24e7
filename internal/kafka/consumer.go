package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"park-ticketing/internal/models"
)

// ValidationConsumer reads QR-scan events published by the entrance scanner
// app and hands them to the live validation counter.
type ValidationConsumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
}

func NewValidationConsumer(brokers []string, groupID string) (*ValidationConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &ValidationConsumer{
		consumer: consumer,
		topics:   []string{"validation-scanned"},
	}, nil
}

func (c *ValidationConsumer) ConsumeValidations(ctx context.Context, handler func(*models.ValidationEvent) error) error {
	consumerHandler := &validationConsumerHandler{handler: handler}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consumer.Consume(ctx, c.topics, consumerHandler); err != nil {
				log.Printf("Error consuming messages: %v", err)
				return err
			}
		}
	}
}

func (c *ValidationConsumer) Close() error {
	return c.consumer.Close()
}

type validationConsumerHandler struct {
	handler func(*models.ValidationEvent) error
}

func (h *validationConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *validationConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *validationConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event models.ValidationEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal validation event: %v", err)
			continue
		}

		if err := h.handler(&event); err != nil {
			log.Printf("Failed to handle validation event: %v", err)
			continue
		}

		session.MarkMessage(message, "")
	}

	return nil
}
