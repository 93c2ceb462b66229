package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/operations/execution"
	"StockTradeSim/internal/repositories"
	"StockTradeSim/internal/repositories/memory"
	"StockTradeSim/internal/services/strategy"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// backtestUserID is the single simulated account a run trades on.
const backtestUserID uint = 1

// Engine replays recorded candles through the strategy and submits the
// resulting orders to the real execution engine, wired over a fresh
// in-memory store per run. Fills, balances and cost basis therefore follow
// exactly the same ledger rules as live order placement.
type Engine struct {
	priceRepo repositories.PriceRepository
	strat     *strategy.CrossStrategy
	config    Config
	log       *logrus.Logger
}

// NewEngine creates a new instance of Engine
func NewEngine(priceRepo repositories.PriceRepository, strat *strategy.CrossStrategy, config Config, log *logrus.Logger) *Engine {
	if config.PositionFraction.IsZero() {
		config.PositionFraction = decimal.NewFromFloat(0.1)
	}
	return &Engine{
		priceRepo: priceRepo,
		strat:     strat,
		config:    config,
		log:       log,
	}
}

// Run executes the backtest over the configured symbols and time range.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	e.log.Infof("running backtest from %s to %s",
		e.config.StartTime.Format("2006-01-02 15:04:05"),
		e.config.EndTime.Format("2006-01-02 15:04:05"))

	store := memory.NewStore()
	if err := e.seedCatalog(ctx, store); err != nil {
		return nil, err
	}
	exec := execution.NewEngine(store, e.config.InitialBalance, e.log)

	run := &runState{
		store: store,
		exec:  exec,
		open:  make(map[string]*Trade),
	}
	for _, symbol := range e.config.Symbols {
		if err := e.runSymbol(ctx, run, symbol); err != nil {
			return nil, err
		}
	}

	return e.calculateResults(ctx, run)
}

type runState struct {
	store *memory.Store
	exec  *execution.Engine
	open  map[string]*Trade

	trades      []Trade
	equityCurve []EquityPoint
	lastClose   map[string]decimal.Decimal
}

func (e *Engine) seedCatalog(ctx context.Context, store *memory.Store) error {
	repos := store.Repos()
	for _, symbol := range e.config.Symbols {
		stock := &models.Stock{Symbol: symbol, Name: symbol}
		if err := repos.Stocks.Create(ctx, stock); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}
	return nil
}

func (e *Engine) runSymbol(ctx context.Context, run *runState, symbol string) error {
	prices, err := e.priceRepo.GetPricesByTimeFrame(ctx, symbol, e.config.TimeFrame, e.config.StartTime, e.config.EndTime)
	if err != nil {
		return err
	}
	e.log.Infof("loaded %d %s candles for %s", len(prices), e.config.TimeFrame, symbol)

	if run.lastClose == nil {
		run.lastClose = make(map[string]decimal.Decimal)
	}

	for i := e.strat.MinCandles(); i < len(prices); i++ {
		candle := prices[i]
		closePrice := decimal.NewFromFloat(candle.Close)
		if !closePrice.IsPositive() {
			continue
		}
		run.lastClose[symbol] = closePrice

		position, err := run.store.Repos().Portfolios.Find(ctx, backtestUserID, symbol)
		if err != nil {
			return err
		}
		holding := position != nil && position.Quantity > 0

		result, err := e.strat.Analyze(prices[:i+1], holding)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", symbol, err)
		}

		switch result.Signal {
		case strategy.SignalBuy:
			if err := e.enter(ctx, run, symbol, closePrice, candle.OpenTime); err != nil {
				return err
			}
		case strategy.SignalSell:
			if err := e.exit(ctx, run, symbol, position, closePrice, candle.OpenTime, result.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) enter(ctx context.Context, run *runState, symbol string, price decimal.Decimal, at time.Time) error {
	summaryBalance, err := run.store.Repos().Balances.GetOrCreate(ctx, backtestUserID, e.config.InitialBalance)
	if err != nil {
		return err
	}
	budget := summaryBalance.AvailableBalance.Mul(e.config.PositionFraction)
	qty := budget.Div(price).IntPart()
	if qty < 1 {
		return nil
	}

	order, err := run.exec.PlaceOrder(ctx, execution.OrderIntent{
		UserID:      backtestUserID,
		Symbol:      symbol,
		OrderType:   models.OrderTypeMarket,
		Side:        models.OrderSideBuy,
		Quantity:    qty,
		Price:       &price,
		Status:      models.OrderStatusFilled,
		FilledPrice: &price,
		FilledAt:    &at,
	})
	if err != nil {
		if errors.Is(err, execution.ErrInsufficientFunds) {
			e.log.Debugf("skipping entry for %s: %v", symbol, err)
			return nil
		}
		return err
	}

	run.open[symbol] = &Trade{
		Symbol:     symbol,
		EntryTime:  at,
		EntryPrice: price,
		Quantity:   order.EffectiveQuantity(),
	}
	e.recordEquity(ctx, run, at)
	return nil
}

func (e *Engine) exit(ctx context.Context, run *runState, symbol string, position *models.Portfolio, price decimal.Decimal, at time.Time, reason string) error {
	if position == nil || position.Quantity <= 0 {
		return nil
	}

	_, err := run.exec.PlaceOrder(ctx, execution.OrderIntent{
		UserID:      backtestUserID,
		Symbol:      symbol,
		OrderType:   models.OrderTypeMarket,
		Side:        models.OrderSideSell,
		Quantity:    position.Quantity,
		Price:       &price,
		Status:      models.OrderStatusFilled,
		FilledPrice: &price,
		FilledAt:    &at,
	})
	if err != nil {
		return err
	}

	trade := run.open[symbol]
	if trade == nil {
		trade = &Trade{Symbol: symbol, EntryPrice: position.AvgPrice, Quantity: position.Quantity}
	}
	trade.ExitTime = at
	trade.ExitPrice = price
	trade.Reason = reason
	trade.PnL = price.Sub(position.AvgPrice).Mul(decimal.NewFromInt(position.Quantity))
	run.trades = append(run.trades, *trade)
	delete(run.open, symbol)

	e.recordEquity(ctx, run, at)
	return nil
}

// recordEquity marks cash plus open holdings at their latest close.
func (e *Engine) recordEquity(ctx context.Context, run *runState, at time.Time) {
	equity, err := e.accountEquity(ctx, run)
	if err != nil {
		e.log.Warnf("error computing equity: %v", err)
		return
	}
	run.equityCurve = append(run.equityCurve, EquityPoint{Timestamp: at, Equity: equity})
}

func (e *Engine) accountEquity(ctx context.Context, run *runState) (decimal.Decimal, error) {
	repos := run.store.Repos()
	balance, err := repos.Balances.GetOrCreate(ctx, backtestUserID, e.config.InitialBalance)
	if err != nil {
		return decimal.Zero, err
	}
	equity := balance.AvailableBalance
	positions, err := repos.Portfolios.FindByUser(ctx, backtestUserID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, position := range positions {
		last, ok := run.lastClose[position.Symbol]
		if !ok {
			last = position.AvgPrice
		}
		equity = equity.Add(last.Mul(decimal.NewFromInt(position.Quantity)))
	}
	return equity, nil
}

func (e *Engine) calculateResults(ctx context.Context, run *runState) (*Results, error) {
	balance, err := run.store.Repos().Balances.GetOrCreate(ctx, backtestUserID, e.config.InitialBalance)
	if err != nil {
		return nil, err
	}
	finalEquity, err := e.accountEquity(ctx, run)
	if err != nil {
		return nil, err
	}

	results := &Results{
		TotalTrades:  len(run.trades),
		FinalEquity:  finalEquity,
		RealizedPnl:  balance.TotalPnl,
		FinalBalance: balance.AvailableBalance,
		Trades:       run.trades,
		EquityCurve:  run.equityCurve,
	}

	for _, trade := range run.trades {
		if trade.PnL.IsPositive() {
			results.WinningTrades++
		} else {
			results.LosingTrades++
		}
	}
	if results.TotalTrades > 0 {
		results.WinRate = float64(results.WinningTrades) / float64(results.TotalTrades)
	}

	maxDrawdown := 0.0
	peak := e.config.InitialBalance
	for _, point := range run.equityCurve {
		if point.Equity.GreaterThan(peak) {
			peak = point.Equity
		}
		if peak.IsPositive() {
			drawdown, _ := peak.Sub(point.Equity).Div(peak).Float64()
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	results.MaxDrawdown = maxDrawdown

	return results, nil
}
