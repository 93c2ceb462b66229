package repositories

import (
	"context"
	"errors"

	"StockTradeSim/internal/models"

	"gorm.io/gorm"
)

type PortfolioRepositoryImpl struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new instance of PortfolioRepositoryImpl
func NewPortfolioRepository(db *gorm.DB) *PortfolioRepositoryImpl {
	return &PortfolioRepositoryImpl{db: db}
}

// Find retrieves the holding of one user in one symbol
func (r *PortfolioRepositoryImpl) Find(ctx context.Context, userID uint, symbol string) (*models.Portfolio, error) {
	if userID == 0 || symbol == "" {
		return nil, errors.New("invalid portfolio key")
	}
	var position models.Portfolio
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stock_symbol = ?", userID, symbol).
		First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &position, err
}

// FindByUser retrieves all holdings of a user
func (r *PortfolioRepositoryImpl) FindByUser(ctx context.Context, userID uint) ([]models.Portfolio, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}
	var positions []models.Portfolio
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("stock_symbol ASC").
		Find(&positions).Error
	return positions, err
}

// Create adds a new Portfolio record to the database
func (r *PortfolioRepositoryImpl) Create(ctx context.Context, position *models.Portfolio) error {
	if position == nil {
		return errors.New("position cannot be nil")
	}
	return r.db.WithContext(ctx).Create(position).Error
}

// Update modifies an existing Portfolio record
func (r *PortfolioRepositoryImpl) Update(ctx context.Context, position *models.Portfolio) error {
	if position == nil {
		return errors.New("position cannot be nil")
	}
	return r.db.WithContext(ctx).Save(position).Error
}

// DecrementQuantity is the conditional decrement guarding concurrent sells:
// the write only lands if the stored quantity still covers qty.
func (r *PortfolioRepositoryImpl) DecrementQuantity(ctx context.Context, userID uint, symbol string, qty int64) (bool, error) {
	if userID == 0 || symbol == "" || qty <= 0 {
		return false, errors.New("invalid decrement")
	}
	res := r.db.WithContext(ctx).Model(&models.Portfolio{}).
		Where("user_id = ? AND stock_symbol = ? AND quantity >= ?", userID, symbol, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the holding of one user in one symbol
func (r *PortfolioRepositoryImpl) Delete(ctx context.Context, userID uint, symbol string) error {
	if userID == 0 || symbol == "" {
		return errors.New("invalid portfolio key")
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND stock_symbol = ?", userID, symbol).
		Delete(&models.Portfolio{}).Error
}
