package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockTradeSim/config"
	"StockTradeSim/internal/handlers"
	"StockTradeSim/internal/models"
	"StockTradeSim/internal/operations/backtest"
	"StockTradeSim/internal/repositories"
	"StockTradeSim/internal/services/strategy"

	"github.com/adshao/go-binance/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := setupDatabase(log, cfg.Database)
	manager := repositories.NewManager(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedCatalog(ctx, manager, cfg.Symbols); err != nil {
		log.Fatalf("failed to seed stock catalog: %v", err)
	}

	client := binance.NewClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey)
	repos := manager.Repos()
	priceHandler := handlers.NewPriceHandler(client, repos.Prices, repos.Stocks, cfg.Symbols, log)
	if err := priceHandler.Start(ctx); err != nil {
		log.Fatalf("failed to start price handler: %v", err)
	}
	log.Info("price recording started")

	backtestConfig := backtest.NewConfig()
	backtestConfig.InitialBalance = cfg.Trading.InitialBalance
	backtestConfig.Symbols = cfg.Symbols
	backtestConfig.EndTime = time.Now()
	backtestConfig.StartTime = backtestConfig.EndTime.AddDate(0, 0, -7)

	engine := backtest.NewEngine(repos.Prices, strategy.NewCrossStrategy(), backtestConfig, log)
	results, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	fmt.Println("\n=== Backtest Results ===")
	fmt.Printf("Total Trades: %d\n", results.TotalTrades)
	fmt.Printf("Winning Trades: %d (%.2f%%)\n", results.WinningTrades, results.WinRate*100)
	fmt.Printf("Realized PnL: %s\n", results.RealizedPnl.StringFixed(2))
	fmt.Printf("Max Drawdown: %.2f%%\n", results.MaxDrawdown*100)
	fmt.Printf("Final Equity: %s\n", results.FinalEquity.StringFixed(2))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("shutting down")
	cancel()
	time.Sleep(time.Second * 2) // give the recorder goroutines time to stop
	log.Info("shutdown complete")
}

func setupDatabase(log *logrus.Logger, dbConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Stock{},
		&models.MarketSession{},
		&models.Order{},
		&models.Balance{},
		&models.Portfolio{},
		&models.Price{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// seedCatalog makes sure every configured symbol has a catalog row; orders
// for unknown symbols are rejected.
func seedCatalog(ctx context.Context, manager *repositories.Manager, symbols []string) error {
	repos := manager.Repos()
	for _, symbol := range symbols {
		stock, err := repos.Stocks.FindBySymbol(ctx, symbol)
		if err != nil {
			return err
		}
		if stock != nil {
			continue
		}
		if err := repos.Stocks.Create(ctx, &models.Stock{Symbol: symbol, Name: symbol}); err != nil {
			return err
		}
	}
	return nil
}
