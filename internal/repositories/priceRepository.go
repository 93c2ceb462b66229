package repositories

import (
	"context"
	"errors"
	"time"

	"StockTradeSim/internal/models"

	"gorm.io/gorm"
)

type PriceRepositoryImpl struct {
	db *gorm.DB
}

// NewPriceRepository creates a new instance of PriceRepositoryImpl
func NewPriceRepository(db *gorm.DB) *PriceRepositoryImpl {
	return &PriceRepositoryImpl{db: db}
}

// Create adds a new Price record to the database
func (r *PriceRepositoryImpl) Create(ctx context.Context, price *models.Price) error {
	if price == nil {
		return errors.New("price cannot be nil")
	}
	return r.db.WithContext(ctx).Create(price).Error
}

// GetPricesByTimeFrame retrieves candles for a symbol and timeframe within a time range
func (r *PriceRepositoryImpl) GetPricesByTimeFrame(ctx context.Context, symbol, timeFrame string, start, end time.Time) ([]models.Price, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var prices []models.Price
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND time_frame = ? AND open_time BETWEEN ? AND ?", symbol, timeFrame, start, end).
		Order("open_time ASC").
		Find(&prices).Error
	return prices, err
}
