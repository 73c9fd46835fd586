package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"payway-adapter/internal/metrics"
	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Acknowledgement is the body returned to the gateway for every notification
// that could be parsed.
const Acknowledgement = "OK"

var (
	ErrInvalidTransactionState = errors.New("transaction is not in draft state")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrCurrencyMismatch        = errors.New("currency is not accepted by the provider")
)

type CreateTransactionRequest struct {
	ProviderUUID      string
	Amount            decimal.Decimal
	Currency          string
	PartnerName       string
	PartnerFirstName  string
	PartnerLastName   string
	PartnerEmail      string
	PaymentMethodCode string
}

// PaymentService drives checkout and reconciliation for every registered gateway.
type PaymentService struct {
	transactions  *TransactionStore
	providers     *ProviderStore
	notifications *NotificationLogStore
	gateways      *payment.Registry
	locker        Locker
	logger        *zap.Logger
}

func NewPaymentService(
	transactions *TransactionStore,
	providers *ProviderStore,
	notifications *NotificationLogStore,
	gateways *payment.Registry,
	locker Locker,
	logger *zap.Logger,
) *PaymentService {
	if locker == nil {
		locker = NoopLocker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		transactions:  transactions,
		providers:     providers,
		notifications: notifications,
		gateways:      gateways,
		locker:        locker,
		logger:        logger,
	}
}

// CreateTransaction stores a draft transaction against an active provider.
func (s *PaymentService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	provider, err := s.providers.GetByUUID(ctx, req.ProviderUUID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gateways.Get(provider.Code); err != nil {
		return nil, err
	}
	currency, err := provider.Currency()
	if err != nil {
		return nil, err
	}
	if req.Currency != "" && !strings.EqualFold(req.Currency, currency) {
		return nil, fmt.Errorf("%w: %s", ErrCurrencyMismatch, req.Currency)
	}

	first, last := req.PartnerFirstName, req.PartnerLastName
	if first == "" && last == "" {
		first, last = models.SplitPartnerName(req.PartnerName)
	}

	tx := &models.Transaction{
		Reference:         strings.ReplaceAll(uuid.New().String(), "-", ""),
		ProviderID:        provider.ID,
		ProviderCode:      provider.Code,
		Amount:            req.Amount,
		Currency:          currency,
		PartnerFirstName:  first,
		PartnerLastName:   last,
		PartnerEmail:      req.PartnerEmail,
		PaymentMethodCode: req.PaymentMethodCode,
		State:             models.StateDraft,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.Uint("id", tx.ID),
		zap.String("reference", tx.Reference),
		zap.String("provider", tx.ProviderCode),
		zap.String("amount", tx.Amount.StringFixed(2)),
		zap.String("currency", tx.Currency),
	)
	return tx, nil
}

func (s *PaymentService) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	return s.transactions.Get(ctx, id)
}

// Checkout returns the signed purchase form for a draft transaction.
// The transaction itself is not modified.
func (s *PaymentService) Checkout(ctx context.Context, id uint) (*payment.SignedRequest, error) {
	tx, err := s.transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.State != models.StateDraft {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransactionState, tx.State)
	}

	provider, err := s.providers.GetByID(ctx, tx.ProviderID)
	if err != nil {
		return nil, err
	}
	gateway, err := s.gateways.Get(tx.ProviderCode)
	if err != nil {
		return nil, err
	}

	return gateway.BuildCheckoutRequest(tx, provider)
}

// ReceiveNotification handles an inbound gateway notification. The
// acknowledgement is returned on every outcome. Domain errors are logged and
// swallowed; infrastructure errors are returned alongside the acknowledgement
// so the caller can decide whether to ask for redelivery.
func (s *PaymentService) ReceiveNotification(ctx context.Context, providerCode string, n payment.Notification) (string, error) {
	log := s.logger.With(zap.String("provider", providerCode))

	entry, err := s.notifications.Record(ctx, providerCode, n)
	if err != nil {
		log.Error("failed to record notification", zap.Error(err))
		metrics.NotificationsTotal.WithLabelValues(providerCode, "infrastructure_error").Inc()
		return Acknowledgement, err
	}

	handleErr := s.handleNotification(ctx, providerCode, n)

	if err := s.notifications.Finish(ctx, entry, handleErr); err != nil {
		log.Warn("failed to update notification log", zap.String("id", entry.ID), zap.Error(err))
	}

	switch {
	case handleErr == nil:
		metrics.NotificationsTotal.WithLabelValues(providerCode, "handled").Inc()
		return Acknowledgement, nil
	case payment.IsDomainError(handleErr):
		log.Warn("notification acknowledged with error",
			zap.String("tran_id", entry.TranID),
			zap.Error(handleErr),
		)
		metrics.NotificationsTotal.WithLabelValues(providerCode, "acknowledged_error").Inc()
		return Acknowledgement, nil
	default:
		log.Error("notification handling failed",
			zap.String("tran_id", entry.TranID),
			zap.Error(handleErr),
		)
		metrics.NotificationsTotal.WithLabelValues(providerCode, "infrastructure_error").Inc()
		return Acknowledgement, handleErr
	}
}

func (s *PaymentService) handleNotification(ctx context.Context, providerCode string, n payment.Notification) error {
	if _, err := s.gateways.Get(providerCode); err != nil {
		return err
	}
	tranID, ok := n.Get("tran_id")
	if !ok {
		return &payment.MissingFieldError{Field: "tran_id"}
	}
	tx, err := s.transactions.FindByTranID(ctx, providerCode, tranID)
	if err != nil {
		return err
	}
	_, err = s.reconcile(ctx, tx, n)
	return err
}

// ReconcileTransaction re-checks a transaction against its gateway without a
// notification, as an administrator or the poller would.
func (s *PaymentService) ReconcileTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	tx, err := s.transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, tx, payment.Notification{"tran_id": tx.TranID()})
}

func (s *PaymentService) reconcile(ctx context.Context, found *models.Transaction, n payment.Notification) (*models.Transaction, error) {
	release, err := s.locker.Acquire(ctx, reconcileLockKey(found.ProviderCode, found.TranID()))
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock; a concurrent call may have finished first.
	tx, err := s.transactions.Get(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(
		zap.String("provider", tx.ProviderCode),
		zap.String("tran_id", tx.TranID()),
		zap.String("reference", tx.Reference),
	)
	if tx.State.IsTerminal() {
		log.Info("transaction already final, reconciliation skipped", zap.String("state", string(tx.State)))
		return tx, nil
	}

	provider, err := s.providers.GetByID(ctx, tx.ProviderID)
	if err != nil {
		return nil, err
	}
	gateway, err := s.gateways.Get(tx.ProviderCode)
	if err != nil {
		return nil, err
	}

	prev := tx.State
	if err := gateway.Reconcile(ctx, tx, n, provider); err != nil {
		return nil, err
	}
	if err := s.transactions.SaveReconciled(ctx, tx, prev); err != nil {
		return nil, err
	}

	metrics.ReconciliationsTotal.WithLabelValues(tx.ProviderCode, string(tx.State)).Inc()
	log.Info("transaction saved",
		zap.String("from", string(prev)),
		zap.String("to", string(tx.State)),
		zap.String("provider_reference", tx.ProviderReference),
	)
	return tx, nil
}
