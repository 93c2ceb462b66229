package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Manager is the gorm-backed UnitOfWork. Repositories handed out by Transact
// share the callback's transaction, so an error on any of them rolls back
// everything written since Transact began.
type Manager struct {
	db *gorm.DB
}

// NewManager creates a new instance of Manager
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) Repos() Repos {
	return newRepos(m.db)
}

func (m *Manager) Transact(ctx context.Context, fn func(Repos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepos(tx))
	})
}

func newRepos(db *gorm.DB) Repos {
	return Repos{
		Stocks:     NewStockRepository(db),
		Sessions:   NewSessionRepository(db),
		Orders:     NewOrderRepository(db),
		Balances:   NewBalanceRepository(db),
		Portfolios: NewPortfolioRepository(db),
		Prices:     NewPriceRepository(db),
	}
}
