package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"gorm.io/gorm"
)

// TransactionStore persists payment transactions. State writes are
// conditional on the state read before reconciliation, so overlapping
// reconciliations cannot overwrite each other.
type TransactionStore struct {
	db *gorm.DB
}

func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

func (s *TransactionStore) Get(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByTranID resolves a gateway tran_id to exactly one transaction of the
// given provider code.
func (s *TransactionStore) FindByTranID(ctx context.Context, providerCode, tranID string) (*models.Transaction, error) {
	id, err := strconv.ParseUint(tranID, 10, 64)
	if err != nil {
		return nil, payment.ErrTransactionNotFound
	}

	var txs []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("id = ? AND provider_code = ?", id, providerCode).
		Limit(2).
		Find(&txs).Error; err != nil {
		return nil, err
	}

	switch len(txs) {
	case 0:
		return nil, payment.ErrTransactionNotFound
	case 1:
		return &txs[0], nil
	default:
		return nil, payment.ErrAmbiguousTransaction
	}
}

// SaveReconciled writes the reconciled fields of tx if its stored state is
// still prevState.
func (s *TransactionStore) SaveReconciled(ctx context.Context, tx *models.Transaction, prevState models.TransactionState) error {
	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND state = ?", tx.ID, prevState).
		Updates(map[string]interface{}{
			"state":              tx.State,
			"state_message":      tx.StateMessage,
			"provider_reference": tx.ProviderReference,
			"last_state_change":  tx.LastStateChange,
			"updated_at":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payment.ErrStaleTransaction
	}
	tx.UpdatedAt = now
	return nil
}

// ListStale returns transactions in one of states not updated since before.
func (s *TransactionStore) ListStale(ctx context.Context, states []models.TransactionState, before time.Time, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("state IN ? AND updated_at < ?", states, before).
		Order("updated_at").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
