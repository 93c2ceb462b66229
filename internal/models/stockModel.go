package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock is a catalog entry for a tradable instrument. Execution only reads
// the catalog; the price recorder refreshes LastPrice.
type Stock struct {
	ID       uint   `gorm:"primaryKey"`
	Symbol   string `gorm:"uniqueIndex;not null"`
	Name     string `gorm:"not null"`
	Exchange string

	LastPrice decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName sets the table name for Stock model
func (Stock) TableName() string {
	return "stocks"
}
