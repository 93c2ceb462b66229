package execution

import (
	"context"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/repositories"

	"github.com/shopspring/decimal"
)

// Ledger owns the financial core: per-user cash balances and per-(user,
// symbol) holdings. Both operations must run inside the caller's
// transaction; every partial write is rolled back when they fail.
type Ledger struct {
	// InitialBalance seeds a balance row the first time a user trades.
	InitialBalance decimal.Decimal
}

// ApplyBuy charges cost = price*qty + commission against the user's cash and
// folds qty shares into the holding at the weighted average price.
func (l Ledger) ApplyBuy(ctx context.Context, r repositories.Repos, userID uint, symbol string, qty int64, price, commission decimal.Decimal) (*models.Portfolio, error) {
	qtyDec := decimal.NewFromInt(qty)
	cost := price.Mul(qtyDec).Add(commission)

	balance, err := r.Balances.GetOrCreate(ctx, userID, l.InitialBalance)
	if err != nil {
		return nil, err
	}
	newAvailable := balance.AvailableBalance.Sub(cost)
	if newAvailable.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	balance.AvailableBalance = newAvailable
	balance.TotalInvested = balance.TotalInvested.Add(cost)
	if err := r.Balances.Update(ctx, balance); err != nil {
		return nil, err
	}

	position, err := r.Portfolios.Find(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if position == nil {
		position = &models.Portfolio{
			UserID:        userID,
			Symbol:        symbol,
			Quantity:      qty,
			AvgPrice:      price,
			TotalValue:    price.Mul(qtyDec),
			UnrealizedPnl: decimal.Zero,
		}
		if err := r.Portfolios.Create(ctx, position); err != nil {
			return nil, err
		}
		return position, nil
	}

	oldQtyDec := decimal.NewFromInt(position.Quantity)
	newQty := position.Quantity + qty
	newQtyDec := decimal.NewFromInt(newQty)
	newAvg := position.AvgPrice.Mul(oldQtyDec).Add(price.Mul(qtyDec)).Div(newQtyDec)

	position.Quantity = newQty
	position.AvgPrice = newAvg
	position.TotalValue = price.Mul(newQtyDec)
	position.UnrealizedPnl = position.TotalValue.Sub(newAvg.Mul(newQtyDec))
	if err := r.Portfolios.Update(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

// ApplySell credits revenue = price*qty - commission, books realized PnL
// against the average cost, and removes qty shares through the conditional
// decrement. Returns (nil, nil) when the sell zeroed and deleted the
// holding. AvgPrice is never touched by a sell.
func (l Ledger) ApplySell(ctx context.Context, r repositories.Repos, userID uint, symbol string, qty int64, price, commission decimal.Decimal) (*models.Portfolio, error) {
	position, err := r.Portfolios.Find(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if position == nil || position.Quantity < qty {
		return nil, ErrInsufficientShares
	}
	avgPrice := position.AvgPrice

	qtyDec := decimal.NewFromInt(qty)
	revenue := price.Mul(qtyDec).Sub(commission)
	realizedPnl := price.Sub(avgPrice).Mul(qtyDec)

	balance, err := r.Balances.GetOrCreate(ctx, userID, l.InitialBalance)
	if err != nil {
		return nil, err
	}
	balance.AvailableBalance = balance.AvailableBalance.Add(revenue)
	newInvested := balance.TotalInvested.Sub(avgPrice.Mul(qtyDec))
	if newInvested.IsNegative() {
		newInvested = decimal.Zero
	}
	balance.TotalInvested = newInvested
	balance.TotalPnl = balance.TotalPnl.Add(realizedPnl)
	if err := r.Balances.Update(ctx, balance); err != nil {
		return nil, err
	}

	// The guard re-checks the quantity at write time; losing here means a
	// concurrent sell consumed the shares after our read, and the whole
	// transaction (balance credit included) must roll back.
	ok, err := r.Portfolios.DecrementQuantity(ctx, userID, symbol, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRaceLost
	}

	remaining, err := r.Portfolios.Find(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if remaining == nil {
		return nil, nil
	}
	if remaining.Quantity <= 0 {
		if err := r.Portfolios.Delete(ctx, userID, symbol); err != nil {
			return nil, err
		}
		return nil, nil
	}

	remainingDec := decimal.NewFromInt(remaining.Quantity)
	remaining.TotalValue = price.Mul(remainingDec)
	remaining.UnrealizedPnl = remaining.TotalValue.Sub(avgPrice.Mul(remainingDec))
	if err := r.Portfolios.Update(ctx, remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}
