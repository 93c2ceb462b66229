package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one row per submitted trade intent. Rows are immutable after
// creation; the fill outcome is decided synchronously when the order is
// placed and never revisited.
type Order struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	BotID     *uint  `gorm:"index"`
	Symbol    string `gorm:"column:stock_symbol;index;not null"`

	OrderType string           `gorm:"not null"`
	Side      string           `gorm:"not null"`
	Quantity  int64            `gorm:"not null"`
	Price     *decimal.Decimal `gorm:"type:decimal(20,8)"`
	Status    string           `gorm:"index;not null;default:pending"`

	FilledQuantity int64            `gorm:"not null;default:0"`
	FilledPrice    *decimal.Decimal `gorm:"type:decimal(20,8)"`
	Commission     decimal.Decimal  `gorm:"type:decimal(20,8);not null;default:0"`
	FilledAt       *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

const (
	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
	OrderTypeStop   = "stop"

	OrderSideBuy  = "buy"
	OrderSideSell = "sell"

	OrderStatusPending   = "pending"
	OrderStatusFilled    = "filled"
	OrderStatusCancelled = "cancelled"
	OrderStatusPartial   = "partial"
)

// TableName sets the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// EffectiveQuantity is the quantity the fill actually moved. Orders created
// without an explicit filled quantity fill in full.
func (o *Order) EffectiveQuantity() int64 {
	if o.FilledQuantity > 0 {
		return o.FilledQuantity
	}
	return o.Quantity
}

// EffectivePrice is the price the fill settled at, falling back to the
// intent price when no fill price was supplied.
func (o *Order) EffectivePrice() decimal.Decimal {
	if o.FilledPrice != nil {
		return *o.FilledPrice
	}
	if o.Price != nil {
		return *o.Price
	}
	return decimal.Zero
}
