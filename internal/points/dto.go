package points

import "github.com/congo-pay/points_ledger/internal/ledger"

// DeductionResponse is one entry of a spend response.
type DeductionResponse struct {
	Payer  string `json:"payer"`
	Points int64  `json:"points"`
}

// BalanceResponse is the flat payer to total mapping returned by GET /balance.
type BalanceResponse map[string]int64

func toSpendResponse(deductions []ledger.Deduction) []DeductionResponse {
	out := make([]DeductionResponse, 0, len(deductions))
	for _, d := range deductions {
		out = append(out, DeductionResponse{Payer: d.Payer, Points: d.Points})
	}
	return out
}
