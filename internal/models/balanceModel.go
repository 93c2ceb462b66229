package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one cash account per user, created lazily the first time the
// user is touched by execution or an account lookup. AvailableBalance never
// goes negative; TotalInvested is floored at zero; TotalPnl is unbounded.
type Balance struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`

	AvailableBalance decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	FrozenBalance    decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
	TotalInvested    decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
	TotalPnl         decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName sets the table name for Balance model
func (Balance) TableName() string {
	return "balances"
}
