package repositories

import (
	"context"
	"errors"

	"StockTradeSim/internal/models"

	"gorm.io/gorm"
)

type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository creates a new instance of OrderRepositoryImpl
func NewOrderRepository(db *gorm.DB) *OrderRepositoryImpl {
	return &OrderRepositoryImpl{db: db}
}

// Create adds a new Order record to the database
func (r *OrderRepositoryImpl) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByUser retrieves a page of a user's orders, newest first, with the
// matching total count.
func (r *OrderRepositoryImpl) FindByUser(ctx context.Context, userID uint, filter OrderFilter) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, errors.New("invalid user id")
	}

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SessionID != 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.Symbol != "" {
		query = query.Where("stock_symbol = ?", filter.Symbol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var orders []models.Order
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&orders).Error
	return orders, total, err
}
