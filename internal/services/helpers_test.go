package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"
	"payway-adapter/internal/payment/payway"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakePayWay answers check-transaction-2 with whatever body is set.
type fakePayWay struct {
	mu     sync.Mutex
	status int
	body   string
	calls  int
}

func (f *fakePayWay) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakePayWay) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakePayWay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	w.Write([]byte(f.body))
}

type testEnv struct {
	db            *gorm.DB
	gateway       *fakePayWay
	transactions  *TransactionStore
	providers     *ProviderStore
	notifications *NotificationLogStore
	service       *PaymentService
	provider      *models.ProviderConfig
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ProviderConfig{}, &models.Transaction{}, &models.NotificationLog{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T, locker Locker) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	gw := &fakePayWay{status: http.StatusOK, body: `{"status":{"code":"00"},"data":{"payment_status_code":"0","apv":"REF123"}}`}
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	driver := payway.NewDriver(payway.Options{
		SandboxURL:    srv.URL,
		PublicBaseURL: "https://shop.example.com",
		Timeout:       2 * time.Second,
	})

	env := &testEnv{
		db:            db,
		gateway:       gw,
		transactions:  NewTransactionStore(db),
		providers:     NewProviderStore(db),
		notifications: NewNotificationLogStore(db),
	}
	env.service = NewPaymentService(env.transactions, env.providers, env.notifications,
		payment.NewRegistry(driver), locker, zap.NewNop())

	provider, err := env.providers.Create(context.Background(), CreateProviderInput{
		Code:       payway.Code,
		MerchantID: "M1",
		PublicKey:  "k",
		State:      models.ProviderStateTest,
		Currencies: []string{"usd"},
	})
	require.NoError(t, err)
	env.provider = provider
	return env
}

func (e *testEnv) createTransaction(t *testing.T) *models.Transaction {
	t.Helper()
	tx, err := e.service.CreateTransaction(context.Background(), CreateTransactionRequest{
		ProviderUUID:      e.provider.UUID,
		Amount:            decimal.RequireFromString("10.00"),
		PartnerName:       "Sok Dara",
		PartnerEmail:      "dara@example.com",
		PaymentMethodCode: "card",
	})
	require.NoError(t, err)
	return tx
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Transaction {
	t.Helper()
	tx, err := e.transactions.Get(context.Background(), id)
	require.NoError(t, err)
	return tx
}
