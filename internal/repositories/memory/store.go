// Package memory is an in-process implementation of the repository ports.
// It backs strategy backtests (each run simulates against its own store)
// and the execution tests. Semantics mirror the gorm adapter: atomic
// transactions with rollback, insert-ignore session creation, and the
// conditional quantity decrement.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/repositories"

	"github.com/shopspring/decimal"
)

type state struct {
	stocks     map[string]*models.Stock
	sessions   map[uint]*models.MarketSession
	sessionIdx map[string]uint // session_day|mode -> session id
	orders     []*models.Order
	balances   map[uint]*models.Balance
	portfolios map[string]*models.Portfolio // user|symbol -> holding
	prices     []*models.Price
	seq        map[string]uint
}

func newState() *state {
	return &state{
		stocks:     make(map[string]*models.Stock),
		sessions:   make(map[uint]*models.MarketSession),
		sessionIdx: make(map[string]uint),
		balances:   make(map[uint]*models.Balance),
		portfolios: make(map[string]*models.Portfolio),
		seq:        make(map[string]uint),
	}
}

func (st *state) nextID(table string) uint {
	st.seq[table]++
	return st.seq[table]
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.stocks {
		s := *v
		c.stocks[k] = &s
	}
	for k, v := range st.sessions {
		s := *v
		c.sessions[k] = &s
	}
	for k, v := range st.sessionIdx {
		c.sessionIdx[k] = v
	}
	for _, v := range st.orders {
		o := *v
		c.orders = append(c.orders, &o)
	}
	for k, v := range st.balances {
		b := *v
		c.balances[k] = &b
	}
	for k, v := range st.portfolios {
		p := *v
		c.portfolios[k] = &p
	}
	for _, v := range st.prices {
		p := *v
		c.prices = append(c.prices, &p)
	}
	for k, v := range st.seq {
		c.seq[k] = v
	}
	return c
}

func portfolioKey(userID uint, symbol string) string {
	return fmt.Sprintf("%d|%s", userID, symbol)
}

func sessionKey(day, mode string) string {
	return day + "|" + mode
}

// Store holds the live state. Transactions stage a full copy and swap it in
// on commit, so an error or panic inside the callback discards every write.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{st: newState()}
}

type runner interface {
	do(fn func(*state) error) error
}

// txRunner operates on staged state; the Transact caller holds the lock.
type txRunner struct {
	st *state
}

func (r txRunner) do(fn func(*state) error) error {
	return fn(r.st)
}

// liveRunner commits each operation immediately against live state.
type liveRunner struct {
	s *Store
}

func (r liveRunner) do(fn func(*state) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.st)
}

func (s *Store) Repos() repositories.Repos {
	return reposFor(liveRunner{s: s})
}

func (s *Store) Transact(ctx context.Context, fn func(repositories.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(reposFor(txRunner{st: staged})); err != nil {
		return err
	}
	s.st = staged
	return nil
}

func reposFor(r runner) repositories.Repos {
	return repositories.Repos{
		Stocks:     stockRepo{r},
		Sessions:   sessionRepo{r},
		Orders:     orderRepo{r},
		Balances:   balanceRepo{r},
		Portfolios: portfolioRepo{r},
		Prices:     priceRepo{r},
	}
}

type stockRepo struct{ r runner }

func (r stockRepo) FindBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	var found *models.Stock
	err := r.r.do(func(st *state) error {
		if s, ok := st.stocks[symbol]; ok {
			c := *s
			found = &c
		}
		return nil
	})
	return found, err
}

func (r stockRepo) Create(ctx context.Context, stock *models.Stock) error {
	return r.r.do(func(st *state) error {
		if _, ok := st.stocks[stock.Symbol]; ok {
			return fmt.Errorf("duplicate stock symbol %q", stock.Symbol)
		}
		stock.ID = st.nextID("stocks")
		c := *stock
		st.stocks[stock.Symbol] = &c
		return nil
	})
}

func (r stockRepo) UpdateLastPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	return r.r.do(func(st *state) error {
		if s, ok := st.stocks[symbol]; ok {
			s.LastPrice = price
			s.UpdatedAt = time.Now()
		}
		return nil
	})
}

type sessionRepo struct{ r runner }

func (r sessionRepo) FindByID(ctx context.Context, id uint) (*models.MarketSession, error) {
	var found *models.MarketSession
	err := r.r.do(func(st *state) error {
		if s, ok := st.sessions[id]; ok {
			c := *s
			found = &c
		}
		return nil
	})
	return found, err
}

func (r sessionRepo) FindActivePublic(ctx context.Context, day string) (*models.MarketSession, error) {
	var found *models.MarketSession
	err := r.r.do(func(st *state) error {
		id, ok := st.sessionIdx[sessionKey(day, models.SessionModePublic)]
		if !ok {
			return nil
		}
		if s, ok := st.sessions[id]; ok && s.IsActive {
			c := *s
			found = &c
		}
		return nil
	})
	return found, err
}

func (r sessionRepo) Create(ctx context.Context, session *models.MarketSession) error {
	return r.r.do(func(st *state) error {
		key := sessionKey(session.SessionDay, session.Mode)
		if _, ok := st.sessionIdx[key]; ok {
			// insert-ignore: a concurrent winner already created the row
			return nil
		}
		session.ID = st.nextID("market_sessions")
		c := *session
		st.sessions[session.ID] = &c
		st.sessionIdx[key] = session.ID
		return nil
	})
}

type orderRepo struct{ r runner }

func (r orderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.r.do(func(st *state) error {
		order.ID = st.nextID("orders")
		if order.CreatedAt.IsZero() {
			order.CreatedAt = time.Now()
		}
		c := *order
		st.orders = append(st.orders, &c)
		return nil
	})
}

func (r orderRepo) FindByUser(ctx context.Context, userID uint, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	var matched []models.Order
	err := r.r.do(func(st *state) error {
		// newest first: walk insertion order backwards
		for i := len(st.orders) - 1; i >= 0; i-- {
			o := st.orders[i]
			if o.UserID != userID {
				continue
			}
			if filter.Status != "" && o.Status != filter.Status {
				continue
			}
			if filter.SessionID != 0 && o.SessionID != filter.SessionID {
				continue
			}
			if filter.Symbol != "" && o.Symbol != filter.Symbol {
				continue
			}
			matched = append(matched, *o)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(matched))
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

type balanceRepo struct{ r runner }

func (r balanceRepo) GetOrCreate(ctx context.Context, userID uint, initial decimal.Decimal) (*models.Balance, error) {
	var out *models.Balance
	err := r.r.do(func(st *state) error {
		b, ok := st.balances[userID]
		if !ok {
			b = &models.Balance{
				ID:               st.nextID("balances"),
				UserID:           userID,
				AvailableBalance: initial,
				FrozenBalance:    decimal.Zero,
				TotalInvested:    decimal.Zero,
				TotalPnl:         decimal.Zero,
				CreatedAt:        time.Now(),
			}
			st.balances[userID] = b
		}
		c := *b
		out = &c
		return nil
	})
	return out, err
}

func (r balanceRepo) Update(ctx context.Context, balance *models.Balance) error {
	return r.r.do(func(st *state) error {
		balance.UpdatedAt = time.Now()
		c := *balance
		st.balances[balance.UserID] = &c
		return nil
	})
}

type portfolioRepo struct{ r runner }

func (r portfolioRepo) Find(ctx context.Context, userID uint, symbol string) (*models.Portfolio, error) {
	var found *models.Portfolio
	err := r.r.do(func(st *state) error {
		if p, ok := st.portfolios[portfolioKey(userID, symbol)]; ok {
			c := *p
			found = &c
		}
		return nil
	})
	return found, err
}

func (r portfolioRepo) FindByUser(ctx context.Context, userID uint) ([]models.Portfolio, error) {
	var out []models.Portfolio
	err := r.r.do(func(st *state) error {
		for _, p := range st.portfolios {
			if p.UserID == userID {
				out = append(out, *p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out, err
}

func (r portfolioRepo) Create(ctx context.Context, position *models.Portfolio) error {
	return r.r.do(func(st *state) error {
		key := portfolioKey(position.UserID, position.Symbol)
		if _, ok := st.portfolios[key]; ok {
			return fmt.Errorf("duplicate portfolio row for %s", key)
		}
		position.ID = st.nextID("portfolios")
		position.UpdatedAt = time.Now()
		c := *position
		st.portfolios[key] = &c
		return nil
	})
}

func (r portfolioRepo) Update(ctx context.Context, position *models.Portfolio) error {
	return r.r.do(func(st *state) error {
		position.UpdatedAt = time.Now()
		c := *position
		st.portfolios[portfolioKey(position.UserID, position.Symbol)] = &c
		return nil
	})
}

func (r portfolioRepo) DecrementQuantity(ctx context.Context, userID uint, symbol string, qty int64) (bool, error) {
	var ok bool
	err := r.r.do(func(st *state) error {
		p, exists := st.portfolios[portfolioKey(userID, symbol)]
		if !exists || p.Quantity < qty {
			return nil
		}
		p.Quantity -= qty
		p.UpdatedAt = time.Now()
		ok = true
		return nil
	})
	return ok, err
}

func (r portfolioRepo) Delete(ctx context.Context, userID uint, symbol string) error {
	return r.r.do(func(st *state) error {
		delete(st.portfolios, portfolioKey(userID, symbol))
		return nil
	})
}

type priceRepo struct{ r runner }

func (r priceRepo) Create(ctx context.Context, price *models.Price) error {
	return r.r.do(func(st *state) error {
		price.ID = st.nextID("prices")
		c := *price
		st.prices = append(st.prices, &c)
		return nil
	})
}

func (r priceRepo) GetPricesByTimeFrame(ctx context.Context, symbol, timeFrame string, start, end time.Time) ([]models.Price, error) {
	var out []models.Price
	err := r.r.do(func(st *state) error {
		for _, p := range st.prices {
			if p.Symbol != symbol || p.TimeFrame != timeFrame {
				continue
			}
			if p.OpenTime.Before(start) || p.OpenTime.After(end) {
				continue
			}
			out = append(out, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenTime.Before(out[j].OpenTime)
	})
	return out, nil
}
