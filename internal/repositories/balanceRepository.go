package repositories

import (
	"context"
	"errors"

	"StockTradeSim/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BalanceRepositoryImpl struct {
	db *gorm.DB
}

// NewBalanceRepository creates a new instance of BalanceRepositoryImpl
func NewBalanceRepository(db *gorm.DB) *BalanceRepositoryImpl {
	return &BalanceRepositoryImpl{db: db}
}

// GetOrCreate retrieves a user's Balance, creating it with the initial
// available balance on first touch.
func (r *BalanceRepositoryImpl) GetOrCreate(ctx context.Context, userID uint, initial decimal.Decimal) (*models.Balance, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}
	var balance models.Balance
	err := r.db.WithContext(ctx).
		Where(models.Balance{UserID: userID}).
		Attrs(map[string]interface{}{
			"available_balance": initial,
			"frozen_balance":    decimal.Zero,
			"total_invested":    decimal.Zero,
			"total_pnl":         decimal.Zero,
		}).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// Update modifies an existing Balance record
func (r *BalanceRepositoryImpl) Update(ctx context.Context, balance *models.Balance) error {
	if balance == nil {
		return errors.New("balance cannot be nil")
	}
	return r.db.WithContext(ctx).Save(balance).Error
}
