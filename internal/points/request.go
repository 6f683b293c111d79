package points

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/points_ledger/internal/ledger"
)

const (
	fieldPayer     = "payer"
	fieldPoints    = "points"
	fieldTimestamp = "timestamp"

	maxNumberLength = 32
	maxPointsDigits = 19
)

var (
	errNotString  = errors.New("not a string")
	errNotInteger = errors.New("not an integer")

	minPoints = decimal.NewFromInt(math.MinInt64)
	maxPoints = decimal.NewFromInt(math.MaxInt64)

	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
)

// DecodeRecord validates the raw body of an add request and converts it into
// a ledger input. Checks run in order: field count, field names, field types.
func DecodeRecord(body []byte) (ledger.RecordInput, error) {
	fields := decodeObject(body)
	if len(fields) != 3 {
		return ledger.RecordInput{}, ledger.ErrInvalidBodyLength
	}

	rawPayer, okPayer := fields[fieldPayer]
	rawPoints, okPoints := fields[fieldPoints]
	rawTimestamp, okTimestamp := fields[fieldTimestamp]
	if !okPayer || !okPoints || !okTimestamp {
		return ledger.RecordInput{}, ledger.ErrMissingRecordFields
	}

	payer, err := decodeString(rawPayer)
	if err != nil {
		return ledger.RecordInput{}, ledger.ErrInvalidRecordTypes
	}
	points, err := decodeInteger(rawPoints)
	if err != nil {
		return ledger.RecordInput{}, ledger.ErrInvalidRecordTypes
	}
	ts, err := decodeTimestamp(rawTimestamp)
	if err != nil {
		return ledger.RecordInput{}, ledger.ErrInvalidRecordTypes
	}

	return ledger.RecordInput{Payer: payer, Points: points, Timestamp: ts}, nil
}

// DecodeSpend validates the raw body of a spend request and returns the
// requested amount. The sign is checked by the ledger.
func DecodeSpend(body []byte) (int64, error) {
	fields := decodeObject(body)
	if len(fields) != 1 {
		return 0, ledger.ErrInvalidBodyLength
	}

	raw, ok := fields[fieldPoints]
	if !ok {
		return 0, ledger.ErrMissingSpendPoints
	}

	points, err := decodeInteger(raw)
	if err != nil {
		return 0, ledger.ErrInvalidSpendType
	}
	return points, nil
}

// decodeObject returns nil for empty, malformed or non-object bodies so they
// count as zero fields.
func decodeObject(body []byte) map[string]json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	return fields
}

func decodeString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", errNotString
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeInteger(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, errNotInteger
	}
	if len(raw) > maxNumberLength {
		return 0, errNotInteger
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return 0, err
	}
	if d.IsZero() {
		return 0, nil
	}
	// Reject anything of 10^19 or more before a comparison rescales it.
	if d.Exponent() > 0 && int64(d.Exponent())+int64(d.NumDigits()) > maxPointsDigits {
		return 0, errNotInteger
	}
	if !d.IsInteger() || d.LessThan(minPoints) || d.GreaterThan(maxPoints) {
		return 0, errNotInteger
	}
	return d.IntPart(), nil
}

func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	s, err := decodeString(raw)
	if err != nil {
		return time.Time{}, err
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unrecognised timestamp")
}
