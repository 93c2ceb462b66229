package repositories

import (
	"context"
	"time"

	"StockTradeSim/internal/models"

	"github.com/shopspring/decimal"
)

// Port interfaces consumed by the execution core and the account service.
// Lookups that can legitimately miss return (nil, nil) rather than an error;
// callers decide whether a miss is fatal.

type StockRepository interface {
	FindBySymbol(ctx context.Context, symbol string) (*models.Stock, error)
	Create(ctx context.Context, stock *models.Stock) error
	UpdateLastPrice(ctx context.Context, symbol string, price decimal.Decimal) error
}

// SessionRepository backs the idempotent find-or-create of trading sessions.
// Create must be insert-ignore on the (session_day, mode) unique index: a
// concurrent winner leaves the row in place and Create returns without
// error, after which the caller re-reads.
type SessionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.MarketSession, error)
	FindActivePublic(ctx context.Context, day string) (*models.MarketSession, error)
	Create(ctx context.Context, session *models.MarketSession) error
}

// OrderFilter narrows and pages an order-history query.
type OrderFilter struct {
	Status    string
	SessionID uint
	Symbol    string
	Limit     int
	Offset    int
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByUser(ctx context.Context, userID uint, filter OrderFilter) ([]models.Order, int64, error)
}

type BalanceRepository interface {
	// GetOrCreate returns the user's balance, creating it with the given
	// initial available balance if the user has never been touched.
	GetOrCreate(ctx context.Context, userID uint, initial decimal.Decimal) (*models.Balance, error)
	Update(ctx context.Context, balance *models.Balance) error
}

type PortfolioRepository interface {
	Find(ctx context.Context, userID uint, symbol string) (*models.Portfolio, error)
	FindByUser(ctx context.Context, userID uint) ([]models.Portfolio, error)
	Create(ctx context.Context, position *models.Portfolio) error
	Update(ctx context.Context, position *models.Portfolio) error
	// DecrementQuantity subtracts qty from the holding only if the stored
	// quantity is still >= qty at write time. Returns false when the guard
	// fails, i.e. a concurrent sell consumed the shares first.
	DecrementQuantity(ctx context.Context, userID uint, symbol string, qty int64) (bool, error)
	Delete(ctx context.Context, userID uint, symbol string) error
}

type PriceRepository interface {
	Create(ctx context.Context, price *models.Price) error
	GetPricesByTimeFrame(ctx context.Context, symbol, timeFrame string, start, end time.Time) ([]models.Price, error)
}

// Repos bundles one repository per entity, all bound to the same database
// handle. Inside UnitOfWork.Transact that handle is a single transaction.
type Repos struct {
	Stocks     StockRepository
	Sessions   SessionRepository
	Orders     OrderRepository
	Balances   BalanceRepository
	Portfolios PortfolioRepository
	Prices     PriceRepository
}

// UnitOfWork scopes repository calls to one atomic transaction.
type UnitOfWork interface {
	// Repos returns auto-commit repositories for plain reads.
	Repos() Repos
	// Transact runs fn inside one transaction; any error or panic rolls
	// back every write fn performed.
	Transact(ctx context.Context, fn func(Repos) error) error
}
