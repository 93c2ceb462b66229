package repositories

import (
	"context"
	"errors"

	"StockTradeSim/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockRepositoryImpl struct {
	db *gorm.DB
}

// NewStockRepository creates a new instance of StockRepositoryImpl
func NewStockRepository(db *gorm.DB) *StockRepositoryImpl {
	return &StockRepositoryImpl{db: db}
}

// FindBySymbol retrieves a Stock record by its symbol
func (r *StockRepositoryImpl) FindBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var stock models.Stock
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stock, err
}

// Create adds a new Stock record to the database
func (r *StockRepositoryImpl) Create(ctx context.Context, stock *models.Stock) error {
	if stock == nil {
		return errors.New("stock cannot be nil")
	}
	return r.db.WithContext(ctx).Create(stock).Error
}

// UpdateLastPrice refreshes the reference price of a symbol
func (r *StockRepositoryImpl) UpdateLastPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	if symbol == "" {
		return errors.New("invalid symbol")
	}
	return r.db.WithContext(ctx).Model(&models.Stock{}).
		Where("symbol = ?", symbol).
		Update("last_price", price).Error
}
