package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaNotifier.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes ledger events as JSON, keyed by payer so events for
// one payer stay ordered within a partition.
type KafkaNotifier struct {
	writer MessageWriter
}

// NewKafkaNotifier wraps a Kafka writer whose topic is already configured.
func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// Send publishes all messages in a single batch.
func (n *KafkaNotifier) Send(ctx context.Context, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	batch := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", m.Kind, err)
		}
		batch = append(batch, kafka.Message{
			Key:   []byte(m.Payer),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "kind", Value: []byte(m.Kind)},
			},
		})
	}

	if err := n.writer.WriteMessages(ctx, batch...); err != nil {
		return fmt.Errorf("publish ledger events: %w", err)
	}
	return nil
}
