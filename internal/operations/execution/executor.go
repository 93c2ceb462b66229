package execution

import (
	"context"
	"time"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Engine turns a validated trade intent into a persisted order and, for
// filled orders, the matching ledger mutation — all as one atomic unit of
// work. No order row ever commits without its financial effect having
// either fully succeeded or never been attempted.
type Engine struct {
	uow    repositories.UnitOfWork
	ledger Ledger
	log    *logrus.Logger
	now    func() time.Time
}

// NewEngine creates a new instance of Engine
func NewEngine(uow repositories.UnitOfWork, initialBalance decimal.Decimal, log *logrus.Logger) *Engine {
	return &Engine{
		uow:    uow,
		ledger: Ledger{InitialBalance: initialBalance},
		log:    log,
		now:    time.Now,
	}
}

// PlaceOrder validates the intent, then inside one transaction resolves the
// session, checks the catalog, persists the order and applies the ledger
// mutation for filled orders. Any failure past validation rolls back
// everything and surfaces a typed error.
func (e *Engine) PlaceOrder(ctx context.Context, intent OrderIntent) (*models.Order, error) {
	intent, err := ValidateIntent(intent)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = e.uow.Transact(ctx, func(r repositories.Repos) error {
		stock, err := r.Stocks.FindBySymbol(ctx, intent.Symbol)
		if err != nil {
			return err
		}
		if stock == nil {
			return &NotFoundError{Resource: "stock", Key: intent.Symbol}
		}

		sessionID, err := ResolveSession(ctx, r, intent.SessionID, e.now())
		if err != nil {
			return err
		}

		order = newOrder(intent, sessionID)
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}

		if order.Status != models.OrderStatusFilled {
			return nil
		}

		qty := order.EffectiveQuantity()
		price := order.EffectivePrice()
		if qty <= 0 || !price.IsPositive() {
			// filled on paper but without usable fill data: no financial effect
			return nil
		}

		switch order.Side {
		case models.OrderSideBuy:
			_, err = e.ledger.ApplyBuy(ctx, r, order.UserID, order.Symbol, qty, price, order.Commission)
		case models.OrderSideSell:
			_, err = e.ledger.ApplySell(ctx, r, order.UserID, order.Symbol, qty, price, order.Commission)
		}
		return err
	})
	if err != nil {
		if !isBusinessError(err) {
			err = &StoreError{Err: err}
		}
		e.log.WithFields(logrus.Fields{
			"user":   intent.UserID,
			"symbol": intent.Symbol,
			"side":   intent.Side,
		}).Warnf("order rejected: %v", err)
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"order":  order.ID,
		"user":   order.UserID,
		"symbol": order.Symbol,
		"side":   order.Side,
		"status": order.Status,
	}).Info("order placed")
	return order, nil
}

func newOrder(intent OrderIntent, sessionID uint) *models.Order {
	order := &models.Order{
		SessionID:      sessionID,
		UserID:         intent.UserID,
		BotID:          intent.BotID,
		Symbol:         intent.Symbol,
		OrderType:      intent.OrderType,
		Side:           intent.Side,
		Quantity:       intent.Quantity,
		Price:          intent.Price,
		Status:         intent.Status,
		FilledQuantity: intent.FilledQuantity,
		FilledPrice:    intent.FilledPrice,
		Commission:     intent.Commission,
		FilledAt:       intent.FilledAt,
	}
	if order.FilledPrice == nil && intent.Price != nil {
		price := *intent.Price
		order.FilledPrice = &price
	}
	return order
}
