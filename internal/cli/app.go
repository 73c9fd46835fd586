package cli

import (
	"context"
	"fmt"

	"payway-adapter/config"
	"payway-adapter/internal/database"
	"payway-adapter/internal/payment"
	"payway-adapter/internal/payment/payway"
	"payway-adapter/internal/services"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired services shared by every command.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	Redis        *redis.Client
	Transactions *services.TransactionStore
	Providers    *services.ProviderStore
	Payments     *services.PaymentService
	Denylist     *services.TokenDenylist
}

// NewApp connects storage, migrates the schema and builds the payment service.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	var locker services.Locker = services.NoopLocker{}
	if rdb != nil {
		locker = services.NewRedisLocker(rdb, cfg.PayWay.LockTTL, log)
	} else {
		log.Warn("redis not configured, reconciliation relies on conditional updates only")
	}

	driver := payway.NewDriver(payway.Options{
		ProductionURL: cfg.PayWay.ProductionURL,
		SandboxURL:    cfg.PayWay.SandboxURL,
		PublicBaseURL: cfg.PublicBaseURL,
		Timeout:       cfg.PayWay.Timeout,
		Logger:        log,
	})

	transactions := services.NewTransactionStore(db)
	providers := services.NewProviderStore(db)
	payments := services.NewPaymentService(
		transactions,
		providers,
		services.NewNotificationLogStore(db),
		payment.NewRegistry(driver),
		locker,
		log,
	)

	if _, err := providers.EnsureBootstrap(ctx, payway.Code, cfg.PayWay, log); err != nil {
		return nil, fmt.Errorf("failed to bootstrap provider: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Redis:        rdb,
		Transactions: transactions,
		Providers:    providers,
		Payments:     payments,
		Denylist:     services.NewTokenDenylist(rdb),
	}, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Logger.Sync()
}
