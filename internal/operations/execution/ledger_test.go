package execution

import (
	"context"
	"errors"
	"testing"

	"StockTradeSim/internal/repositories"
	"StockTradeSim/internal/repositories/memory"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestLedger() (Ledger, *memory.Store) {
	return Ledger{InitialBalance: dec("1000000")}, memory.NewStore()
}

// Scenario from the ledger's accounting rules: two buys at different prices
// average to 1100, a partial sell realizes (1300-1100)*150 and leaves the
// average untouched.
func TestLedger_BuySellScenario(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	pos, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 100, dec("1000"), decimal.Zero)
	if err != nil {
		t.Fatalf("first buy: %v", err)
	}
	if !pos.AvgPrice.Equal(dec("1000")) || pos.Quantity != 100 {
		t.Fatalf("after first buy: qty=%d avg=%s", pos.Quantity, pos.AvgPrice)
	}

	balance, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.AvailableBalance.Equal(dec("900000")) {
		t.Errorf("expected balance 900000, got %s", balance.AvailableBalance)
	}

	pos, err = ledger.ApplyBuy(ctx, repos, 1, "AAPL", 100, dec("1200"), decimal.Zero)
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}
	if !pos.AvgPrice.Equal(dec("1100")) {
		t.Errorf("expected avg 1100, got %s", pos.AvgPrice)
	}
	if pos.Quantity != 200 {
		t.Errorf("expected qty 200, got %d", pos.Quantity)
	}

	balance, _ = repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.AvailableBalance.Equal(dec("780000")) {
		t.Errorf("expected balance 780000, got %s", balance.AvailableBalance)
	}

	pos, err = ledger.ApplySell(ctx, repos, 1, "AAPL", 150, dec("1300"), decimal.Zero)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if pos == nil {
		t.Fatal("expected remaining position")
	}
	if pos.Quantity != 50 {
		t.Errorf("expected qty 50, got %d", pos.Quantity)
	}
	if !pos.AvgPrice.Equal(dec("1100")) {
		t.Errorf("sell must not move avg price, got %s", pos.AvgPrice)
	}

	balance, _ = repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.AvailableBalance.Equal(dec("975000")) {
		t.Errorf("expected balance 975000, got %s", balance.AvailableBalance)
	}
	if !balance.TotalPnl.Equal(dec("30000")) {
		t.Errorf("expected total pnl 30000, got %s", balance.TotalPnl)
	}
}

func TestLedger_BuyChargesCommission(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), dec("25")); err != nil {
		t.Fatalf("buy: %v", err)
	}
	balance, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.AvailableBalance.Equal(dec("998975")) {
		t.Errorf("expected balance 998975, got %s", balance.AvailableBalance)
	}
	if !balance.TotalInvested.Equal(dec("1025")) {
		t.Errorf("expected invested 1025, got %s", balance.TotalInvested)
	}
}

func TestLedger_SellDeductsCommissionFromRevenue(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := ledger.ApplySell(ctx, repos, 1, "AAPL", 5, dec("110"), dec("10")); err != nil {
		t.Fatalf("sell: %v", err)
	}

	balance, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	// 1000000 - 1000 + (550 - 10)
	if !balance.AvailableBalance.Equal(dec("999540")) {
		t.Errorf("expected balance 999540, got %s", balance.AvailableBalance)
	}
	// realized pnl ignores commission: (110-100)*5
	if !balance.TotalPnl.Equal(dec("50")) {
		t.Errorf("expected pnl 50, got %s", balance.TotalPnl)
	}
}

func TestLedger_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()

	// run through a transaction so the rejection rolls everything back
	err := store.Transact(ctx, func(r repositories.Repos) error {
		_, err := ledger.ApplyBuy(ctx, r, 1, "AAPL", 2000, dec("1000"), decimal.Zero)
		return err
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	repos := store.Repos()
	balance, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.AvailableBalance.Equal(dec("1000000")) {
		t.Errorf("balance mutated by rejected buy: %s", balance.AvailableBalance)
	}
	if !balance.TotalInvested.Equal(decimal.Zero) {
		t.Errorf("invested mutated by rejected buy: %s", balance.TotalInvested)
	}
	pos, _ := repos.Portfolios.Find(ctx, 1, "AAPL")
	if pos != nil {
		t.Error("position created by rejected buy")
	}
}

func TestLedger_BuySpendingExactBalanceSucceeds(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 1000, dec("1000"), decimal.Zero); err != nil {
		t.Fatalf("buy of exact balance rejected: %v", err)
	}
	balance, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.AvailableBalance.Equal(decimal.Zero) {
		t.Errorf("expected zero balance, got %s", balance.AvailableBalance)
	}
}

func TestLedger_SellWithoutPosition(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()

	_, err := ledger.ApplySell(ctx, store.Repos(), 1, "AAPL", 10, dec("100"), decimal.Zero)
	if !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestLedger_OverSell(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}
	_, err := ledger.ApplySell(ctx, repos, 1, "AAPL", 11, dec("100"), decimal.Zero)
	if !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestLedger_SellToZeroDeletesPosition(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}
	pos, err := ledger.ApplySell(ctx, repos, 1, "AAPL", 10, dec("120"), decimal.Zero)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if pos != nil {
		t.Errorf("expected deleted position, got %+v", pos)
	}
	stored, _ := repos.Portfolios.Find(ctx, 1, "AAPL")
	if stored != nil {
		t.Error("position row still present after selling to zero")
	}
}

func TestLedger_TotalInvestedFlooredAtZero(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), dec("50")); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// cost basis removed on sell (avg*qty = 1000) is less than invested
	// (1050, commission included), so invested stays positive here...
	if _, err := ledger.ApplySell(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("sell: %v", err)
	}
	balance, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balance.TotalInvested.Equal(dec("50")) {
		t.Errorf("expected invested 50, got %s", balance.TotalInvested)
	}
	if balance.TotalInvested.IsNegative() {
		t.Error("total invested went negative")
	}
}

// raceyPortfolios forces the conditional decrement to report a lost race,
// as if a concurrent sell consumed the shares between read and write.
type raceyPortfolios struct {
	repositories.PortfolioRepository
}

func (r raceyPortfolios) DecrementQuantity(ctx context.Context, userID uint, symbol string, qty int64) (bool, error) {
	return false, nil
}

func TestLedger_RaceLostRollsBackBalanceLeg(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}
	balanceBefore, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))

	err := store.Transact(ctx, func(r repositories.Repos) error {
		r.Portfolios = raceyPortfolios{r.Portfolios}
		_, err := ledger.ApplySell(ctx, r, 1, "AAPL", 5, dec("110"), decimal.Zero)
		return err
	})
	if !errors.Is(err, ErrRaceLost) {
		t.Fatalf("expected ErrRaceLost, got %v", err)
	}

	balanceAfter, _ := repos.Balances.GetOrCreate(ctx, 1, dec("1000000"))
	if !balanceAfter.AvailableBalance.Equal(balanceBefore.AvailableBalance) {
		t.Errorf("balance credit survived a lost race: %s != %s",
			balanceAfter.AvailableBalance, balanceBefore.AvailableBalance)
	}
	if !balanceAfter.TotalPnl.Equal(balanceBefore.TotalPnl) {
		t.Errorf("pnl survived a lost race: %s != %s", balanceAfter.TotalPnl, balanceBefore.TotalPnl)
	}
	pos, _ := repos.Portfolios.Find(ctx, 1, "AAPL")
	if pos == nil || pos.Quantity != 10 {
		t.Errorf("position mutated by lost race: %+v", pos)
	}
}

func TestLedger_ConcurrentSellsNeverOversell(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()

	if _, err := ledger.ApplyBuy(ctx, store.Repos(), 1, "AAPL", 100, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// 5 concurrent sells of 30 against 100 held: at most 3 can fit
	const sellers = 5
	errs := make(chan error, sellers)
	for i := 0; i < sellers; i++ {
		go func() {
			errs <- store.Transact(ctx, func(r repositories.Repos) error {
				_, err := ledger.ApplySell(ctx, r, 1, "AAPL", 30, dec("110"), decimal.Zero)
				return err
			})
		}()
	}

	succeeded := 0
	for i := 0; i < sellers; i++ {
		err := <-errs
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientShares), errors.Is(err, ErrRaceLost):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Errorf("expected exactly 3 sells to fit, got %d", succeeded)
	}

	pos, _ := store.Repos().Portfolios.Find(ctx, 1, "AAPL")
	if pos == nil {
		t.Fatal("position unexpectedly deleted")
	}
	if pos.Quantity != 10 {
		t.Errorf("expected 10 shares left, got %d", pos.Quantity)
	}
	if pos.Quantity < 0 {
		t.Error("quantity went negative")
	}
}

func TestLedger_UnrealizedPnlTracksReferencePrice(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}
	pos, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("120"), decimal.Zero)
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}

	// total_value = 120*20, unrealized = total_value - avg*20
	if !pos.TotalValue.Equal(dec("2400")) {
		t.Errorf("expected total value 2400, got %s", pos.TotalValue)
	}
	if !pos.UnrealizedPnl.Equal(dec("200")) {
		t.Errorf("expected unrealized 200, got %s", pos.UnrealizedPnl)
	}

	pos, err = ledger.ApplySell(ctx, repos, 1, "AAPL", 5, dec("130"), decimal.Zero)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !pos.TotalValue.Equal(dec("1950")) {
		t.Errorf("expected total value 1950, got %s", pos.TotalValue)
	}
	if !pos.UnrealizedPnl.Equal(dec("300")) {
		t.Errorf("expected unrealized 300, got %s", pos.UnrealizedPnl)
	}
}

func TestLedger_SeparateUsersAndSymbolsAreIsolated(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()
	repos := store.Repos()

	if _, err := ledger.ApplyBuy(ctx, repos, 1, "AAPL", 10, dec("100"), decimal.Zero); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := ledger.ApplyBuy(ctx, repos, 2, "AAPL", 5, dec("200"), decimal.Zero); err != nil {
		t.Fatalf("buy user 2: %v", err)
	}
	if _, err := ledger.ApplyBuy(ctx, repos, 1, "MSFT", 7, dec("300"), decimal.Zero); err != nil {
		t.Fatalf("buy MSFT: %v", err)
	}

	pos, _ := repos.Portfolios.Find(ctx, 1, "AAPL")
	if pos.Quantity != 10 || !pos.AvgPrice.Equal(dec("100")) {
		t.Errorf("user 1 AAPL cross-contaminated: %+v", pos)
	}
	pos, _ = repos.Portfolios.Find(ctx, 2, "AAPL")
	if pos.Quantity != 5 || !pos.AvgPrice.Equal(dec("200")) {
		t.Errorf("user 2 AAPL cross-contaminated: %+v", pos)
	}
	pos, _ = repos.Portfolios.Find(ctx, 1, "MSFT")
	if pos.Quantity != 7 || !pos.AvgPrice.Equal(dec("300")) {
		t.Errorf("user 1 MSFT cross-contaminated: %+v", pos)
	}
}
