package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindPointsRecorded indicates a transaction was appended to the ledger.
	KindPointsRecorded = "points_recorded"
	// KindPointsSpent indicates points were deducted from a payer by a spend.
	KindPointsSpent = "points_spent"
)

// Message describes a ledger event.
type Message struct {
	Kind       string    `json:"kind"`
	Payer      string    `json:"payer"`
	Points     int64     `json:"points"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Notifier delivers ledger events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, messages ...Message) error
}

// LoggerNotifier writes ledger events to the structured logger. It is used
// when no broker is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes each message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, messages ...Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	for _, m := range messages {
		n.logger.Info("notification",
			slog.String("kind", m.Kind),
			slog.String("payer", m.Payer),
			slog.Int64("points", m.Points),
			slog.Time("occurred_at", m.OccurredAt),
			slog.String("request_id", m.RequestID),
		)
	}
	return nil
}
