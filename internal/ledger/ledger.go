package ledger

import (
	"context"
	"errors"
	"time"
)

// Caller-input failures. The messages are part of the HTTP contract and are
// returned to clients verbatim.
var (
	// ErrInvalidBodyLength is returned when a request body carries the wrong
	// number of fields.
	ErrInvalidBodyLength = errors.New("Invalid request: Invalid body length")

	// ErrMissingRecordFields is returned when a record request lacks payer,
	// points or timestamp.
	ErrMissingRecordFields = errors.New("Invalid request: 'payer', 'points', or 'timestamp' is missing")

	// ErrMissingSpendPoints is returned when a spend request lacks points.
	ErrMissingSpendPoints = errors.New("Invalid request: 'points' is missing")

	// ErrInvalidRecordTypes is returned when a record field has the wrong type.
	ErrInvalidRecordTypes = errors.New("Invalid request: Invalid data types for payer, points, or timestamp")

	// ErrInvalidSpendType is returned when spend points is not an integral number.
	ErrInvalidSpendType = errors.New("Invalid request: Invalid data type for points")

	// ErrInvalidPayer is returned when a transaction is recorded for a blank payer.
	ErrInvalidPayer = errors.New("Invalid request: Invalid payer")

	// ErrInvalidPoints is returned when a spend amount is not strictly positive.
	ErrInvalidPoints = errors.New("Invalid request: Invalid points")

	// ErrPointsOutOfRange is returned when recording a transaction would push
	// the payer's balance outside the int64 range.
	ErrPointsOutOfRange = errors.New("Invalid request: Points out of range")

	// ErrInsufficientPoints occurs when the combined balance of all payers is
	// lower than the requested spend.
	ErrInsufficientPoints = errors.New("Invalid request: Not enough points")
)

// Transaction is one point grant (positive) or correction (negative) from a
// payer. Points holds the residual that has not been spent yet.
type Transaction struct {
	ID        string
	Payer     string
	Points    int64
	Timestamp time.Time
}

// RecordInput captures a transaction to append to the log.
type RecordInput struct {
	Payer     string    `validate:"required"`
	Points    int64
	Timestamp time.Time
}

// Deduction is the amount taken from one payer by a spend. Points is negative.
type Deduction struct {
	Payer  string
	Points int64
}

// Ledger defines the operations of the points engine.
type Ledger interface {
	Record(ctx context.Context, input RecordInput) (Transaction, error)
	Spend(ctx context.Context, points int64) ([]Deduction, error)
	Balances(ctx context.Context) (map[string]int64, error)
}
