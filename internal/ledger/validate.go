package ledger

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type spendInput struct {
	Points int64 `validate:"gt=0"`
}

func validateRecord(input RecordInput) error {
	input.Payer = strings.TrimSpace(input.Payer)
	if err := validate.Struct(input); err != nil {
		return ErrInvalidPayer
	}
	return nil
}

func validateSpend(points int64) error {
	if err := validate.Struct(spendInput{Points: points}); err != nil {
		return ErrInvalidPoints
	}
	return nil
}
