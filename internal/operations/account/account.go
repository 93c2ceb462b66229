// Package account serves the read side of the ledger: balance and position
// summaries and order history for a user.
package account

import (
	"context"
	"errors"
	"strings"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/repositories"

	"github.com/shopspring/decimal"
)

type Service struct {
	uow            repositories.UnitOfWork
	initialBalance decimal.Decimal
}

// NewService creates a new instance of Service
func NewService(uow repositories.UnitOfWork, initialBalance decimal.Decimal) *Service {
	return &Service{uow: uow, initialBalance: initialBalance}
}

// Summary is a user's cash balance together with all open holdings.
type Summary struct {
	Balance   models.Balance
	Positions []models.Portfolio
}

// GetBalanceAndPositions returns the account summary, lazily creating the
// balance the first time the user is looked up.
func (s *Service) GetBalanceAndPositions(ctx context.Context, userID uint) (*Summary, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}
	repos := s.uow.Repos()

	balance, err := repos.Balances.GetOrCreate(ctx, userID, s.initialBalance)
	if err != nil {
		return nil, err
	}
	positions, err := repos.Portfolios.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Summary{Balance: *balance, Positions: positions}, nil
}

// GetUserShares returns the share count per requested symbol, zero for
// symbols the user does not hold.
func (s *Service) GetUserShares(ctx context.Context, userID uint, symbols []string) (map[string]int64, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}

	shares := make(map[string]int64)
	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol != "" {
			shares[symbol] = 0
		}
	}
	if len(shares) == 0 {
		return shares, nil
	}

	positions, err := s.uow.Repos().Portfolios.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, position := range positions {
		if _, wanted := shares[position.Symbol]; wanted {
			shares[position.Symbol] = position.Quantity
		}
	}
	return shares, nil
}

// ListOrders returns a page of the user's order history, newest first,
// along with the total count matching the filter.
func (s *Service) ListOrders(ctx context.Context, userID uint, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, errors.New("invalid user id")
	}
	return s.uow.Repos().Orders.FindByUser(ctx, userID, filter)
}
