package points

import (
	"context"
	"log/slog"
	"time"

	"github.com/congo-pay/points_ledger/internal/ledger"
	"github.com/congo-pay/points_ledger/internal/logging"
	"github.com/congo-pay/points_ledger/internal/notification"
)

// Service exposes the points ledger operations and publishes an event for
// every successful mutation.
type Service struct {
	ledger   ledger.Ledger
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a points service. notifier may be nil.
func NewService(l ledger.Ledger, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{ledger: l, notifier: notifier, logger: logger}
}

// Record appends a transaction to the ledger.
func (s *Service) Record(ctx context.Context, input ledger.RecordInput) (ledger.Transaction, error) {
	tx, err := s.ledger.Record(ctx, input)
	if err != nil {
		return ledger.Transaction{}, err
	}

	s.notify(ctx, notification.Message{
		Kind:       notification.KindPointsRecorded,
		Payer:      tx.Payer,
		Points:     tx.Points,
		OccurredAt: tx.Timestamp,
		RequestID:  logging.RequestID(ctx),
	})
	return tx, nil
}

// Spend deducts points oldest first and returns the per-payer deductions.
func (s *Service) Spend(ctx context.Context, points int64) ([]ledger.Deduction, error) {
	deductions, err := s.ledger.Spend(ctx, points)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	requestID := logging.RequestID(ctx)
	messages := make([]notification.Message, 0, len(deductions))
	for _, d := range deductions {
		messages = append(messages, notification.Message{
			Kind:       notification.KindPointsSpent,
			Payer:      d.Payer,
			Points:     d.Points,
			OccurredAt: now,
			RequestID:  requestID,
		})
	}
	s.notify(ctx, messages...)
	return deductions, nil
}

// Balances returns the current total per payer.
func (s *Service) Balances(ctx context.Context) (map[string]int64, error) {
	return s.ledger.Balances(ctx)
}

func (s *Service) notify(ctx context.Context, messages ...notification.Message) {
	if s.notifier == nil || len(messages) == 0 {
		return
	}
	if err := s.notifier.Send(ctx, messages...); err != nil {
		s.logger.Warn("ledger notification failed",
			slog.String("kind", messages[0].Kind),
			slog.Int("messages", len(messages)),
			slog.Any("error", err),
		)
	}
}
