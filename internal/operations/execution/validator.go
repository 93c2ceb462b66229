package execution

import (
	"strings"
	"time"

	"StockTradeSim/internal/models"

	"github.com/shopspring/decimal"
)

// OrderIntent is the raw trade request handed to the engine. Zero SessionID
// means "resolve today's public session"; a filled status makes the ledger
// mutation part of the same unit of work as the order row.
type OrderIntent struct {
	SessionID uint
	UserID    uint
	BotID     *uint
	Symbol    string
	OrderType string
	Side      string
	Quantity  int64
	Price     *decimal.Decimal

	Status         string
	FilledQuantity int64
	FilledPrice    *decimal.Decimal
	Commission     decimal.Decimal
	FilledAt       *time.Time
}

var (
	orderTypes = map[string]bool{
		models.OrderTypeMarket: true,
		models.OrderTypeLimit:  true,
		models.OrderTypeStop:   true,
	}
	orderSides = map[string]bool{
		models.OrderSideBuy:  true,
		models.OrderSideSell: true,
	}
	orderStatuses = map[string]bool{
		models.OrderStatusPending:   true,
		models.OrderStatusFilled:    true,
		models.OrderStatusCancelled: true,
		models.OrderStatusPartial:   true,
	}
)

// ValidateIntent checks and normalizes an intent before any transaction is
// opened. It has no side effects.
func ValidateIntent(intent OrderIntent) (OrderIntent, error) {
	if intent.UserID == 0 {
		return intent, &ValidationError{Field: "userId", Reason: "is required"}
	}
	intent.Symbol = strings.TrimSpace(intent.Symbol)
	if intent.Symbol == "" {
		return intent, &ValidationError{Field: "stockSymbol", Reason: "is required"}
	}
	if intent.Quantity <= 0 {
		return intent, &ValidationError{Field: "quantity", Reason: "must be greater than 0"}
	}
	if !orderTypes[intent.OrderType] {
		return intent, &ValidationError{Field: "orderType", Reason: "must be market, limit or stop"}
	}
	if !orderSides[intent.Side] {
		return intent, &ValidationError{Field: "side", Reason: "must be buy or sell"}
	}
	if intent.Status == "" {
		intent.Status = models.OrderStatusPending
	}
	if !orderStatuses[intent.Status] {
		return intent, &ValidationError{Field: "status", Reason: "is not a known order status"}
	}
	if intent.FilledQuantity < 0 {
		return intent, &ValidationError{Field: "filledQuantity", Reason: "must not be negative"}
	}
	if intent.Commission.IsNegative() {
		return intent, &ValidationError{Field: "commission", Reason: "must not be negative"}
	}
	return intent, nil
}
