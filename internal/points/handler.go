package points

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/points_ledger/internal/ledger"
)

var clientErrors = []error{
	ledger.ErrInvalidBodyLength,
	ledger.ErrMissingRecordFields,
	ledger.ErrMissingSpendPoints,
	ledger.ErrInvalidRecordTypes,
	ledger.ErrInvalidSpendType,
	ledger.ErrInvalidPayer,
	ledger.ErrInvalidPoints,
	ledger.ErrPointsOutOfRange,
	ledger.ErrInsufficientPoints,
}

// Handler exposes the points endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a points handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Add records a payer transaction. Success is acknowledged with an empty body.
func (h *Handler) Add(c *fiber.Ctx) error {
	input, err := DecodeRecord(c.Body())
	if err != nil {
		return h.toHTTPError(err)
	}
	if _, err := h.service.Record(c.UserContext(), input); err != nil {
		return h.toHTTPError(err)
	}
	c.Status(http.StatusOK)
	return nil
}

// Spend deducts points oldest first and lists what was taken from each payer.
func (h *Handler) Spend(c *fiber.Ctx) error {
	points, err := DecodeSpend(c.Body())
	if err != nil {
		return h.toHTTPError(err)
	}
	deductions, err := h.service.Spend(c.UserContext(), points)
	if err != nil {
		return h.toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(toSpendResponse(deductions))
}

// Balance returns the current total of every payer.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balances, err := h.service.Balances(c.UserContext())
	if err != nil {
		return h.toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(BalanceResponse(balances))
}

func (h *Handler) toHTTPError(err error) error {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return fiber.NewError(http.StatusBadRequest, target.Error())
		}
	}
	if h.logger != nil {
		h.logger.Error("points request failed", slog.Any("error", err))
	}
	return fiber.NewError(http.StatusInternalServerError, "internal error")
}
