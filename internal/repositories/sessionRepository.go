package repositories

import (
	"context"
	"errors"

	"StockTradeSim/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db *gorm.DB
}

// NewSessionRepository creates a new instance of SessionRepositoryImpl
func NewSessionRepository(db *gorm.DB) *SessionRepositoryImpl {
	return &SessionRepositoryImpl{db: db}
}

// FindByID retrieves a MarketSession record by its ID
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id uint) (*models.MarketSession, error) {
	if id == 0 {
		return nil, errors.New("invalid id")
	}
	var session models.MarketSession
	err := r.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

// FindActivePublic retrieves the active PUBLIC session for a calendar day
func (r *SessionRepositoryImpl) FindActivePublic(ctx context.Context, day string) (*models.MarketSession, error) {
	var session models.MarketSession
	err := r.db.WithContext(ctx).
		Where("session_day = ? AND mode = ? AND is_active = ?", day, models.SessionModePublic, true).
		Order("id ASC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

// Create inserts a session, silently yielding to a concurrent winner on the
// (session_day, mode) unique index. Callers re-read after a conflict.
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *models.MarketSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_day"}, {Name: "mode"}},
			DoNothing: true,
		}).
		Create(session).Error
}
