package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a user's holding of one symbol, keyed uniquely by
// (user_id, stock_symbol). AvgPrice moves only on buys; a sell that brings
// the quantity to zero deletes the row instead of keeping an empty holding.
type Portfolio struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"uniqueIndex:idx_portfolio_user_symbol;not null"`
	Symbol string `gorm:"column:stock_symbol;uniqueIndex:idx_portfolio_user_symbol;not null"`

	Quantity      int64           `gorm:"not null"`
	AvgPrice      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	UnrealizedPnl decimal.Decimal `gorm:"type:decimal(20,8);not null"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName sets the table name for Portfolio model
func (Portfolio) TableName() string {
	return "portfolios"
}
