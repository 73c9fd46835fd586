package services

import (
	"context"
	"encoding/json"
	"time"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationLogStore records inbound notifications and their outcome.
type NotificationLogStore struct {
	db *gorm.DB
}

func NewNotificationLogStore(db *gorm.DB) *NotificationLogStore {
	return &NotificationLogStore{db: db}
}

func (s *NotificationLogStore) Record(ctx context.Context, providerCode string, n payment.Notification) (*models.NotificationLog, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	tranID, _ := n.Get("tran_id")

	entry := &models.NotificationLog{
		ID:           uuid.New().String(),
		ProviderCode: providerCode,
		TranID:       tranID,
		Payload:      datatypes.JSON(payload),
		Status:       models.NotificationStatusReceived,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *NotificationLogStore) Finish(ctx context.Context, entry *models.NotificationLog, handleErr error) error {
	entry.Status = models.NotificationStatusHandled
	entry.Error = ""
	if handleErr != nil {
		entry.Status = models.NotificationStatusHandleFailed
		entry.Error = handleErr.Error()
	}
	entry.UpdatedAt = time.Now()

	return s.db.WithContext(ctx).Model(entry).Updates(map[string]interface{}{
		"status":     entry.Status,
		"error":      entry.Error,
		"updated_at": entry.UpdatedAt,
	}).Error
}

func (s *NotificationLogStore) ListByTranID(ctx context.Context, tranID string) ([]models.NotificationLog, error) {
	var entries []models.NotificationLog
	err := s.db.WithContext(ctx).Where("tran_id = ?", tranID).Order("created_at").Find(&entries).Error
	return entries, err
}
