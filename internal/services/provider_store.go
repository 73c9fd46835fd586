package services

import (
	"context"
	"errors"
	"time"

	"payway-adapter/config"
	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateProviderInput carries the administrator-supplied provider settings.
type CreateProviderInput struct {
	Code       string
	Name       string
	MerchantID string
	PublicKey  string
	State      models.ProviderState
	Currencies []string
}

// UpdateProviderInput leaves nil fields unchanged.
type UpdateProviderInput struct {
	Name       *string
	MerchantID *string
	PublicKey  *string
	State      *models.ProviderState
	Currencies []string
}

// ProviderStore persists provider configurations.
type ProviderStore struct {
	db *gorm.DB
}

func NewProviderStore(db *gorm.DB) *ProviderStore {
	return &ProviderStore{db: db}
}

func (s *ProviderStore) List(ctx context.Context) ([]models.ProviderConfig, error) {
	var providers []models.ProviderConfig
	if err := s.db.WithContext(ctx).Order("id").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (s *ProviderStore) GetByUUID(ctx context.Context, id string) (*models.ProviderConfig, error) {
	var provider models.ProviderConfig
	if err := s.db.WithContext(ctx).Where("uuid = ?", id).First(&provider).Error; err != nil {
		return nil, notFound(err)
	}
	return &provider, nil
}

func (s *ProviderStore) GetByID(ctx context.Context, id uint) (*models.ProviderConfig, error) {
	var provider models.ProviderConfig
	if err := s.db.WithContext(ctx).First(&provider, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &provider, nil
}

func (s *ProviderStore) Create(ctx context.Context, in CreateProviderInput) (*models.ProviderConfig, error) {
	provider := &models.ProviderConfig{
		UUID:       uuid.New().String(),
		Code:       in.Code,
		Name:       in.Name,
		MerchantID: in.MerchantID,
		PublicKey:  in.PublicKey,
		State:      in.State,
		Currencies: models.CurrencySet(in.Currencies).Normalize(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if provider.Name == "" {
		provider.Name = "PayWay"
	}
	if provider.State == "" {
		provider.State = models.ProviderStateTest
	}
	if err := provider.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(provider).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

func (s *ProviderStore) Update(ctx context.Context, id string, in UpdateProviderInput) (*models.ProviderConfig, error) {
	provider, err := s.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		provider.Name = *in.Name
	}
	if in.MerchantID != nil {
		provider.MerchantID = *in.MerchantID
	}
	if in.PublicKey != nil {
		provider.PublicKey = *in.PublicKey
	}
	if in.State != nil {
		provider.State = *in.State
	}
	if in.Currencies != nil {
		provider.Currencies = models.CurrencySet(in.Currencies).Normalize()
	}
	if err := provider.Validate(); err != nil {
		return nil, err
	}

	provider.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(provider).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

func (s *ProviderStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("uuid = ?", id).Delete(&models.ProviderConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payment.ErrProviderNotFound
	}
	return nil
}

// EnsureBootstrap creates the provider described by the environment when no
// provider with that merchant id exists yet.
func (s *ProviderStore) EnsureBootstrap(ctx context.Context, code string, cfg config.PayWayConfig, logger *zap.Logger) (*models.ProviderConfig, error) {
	if !cfg.HasBootstrapProvider() {
		return nil, nil
	}

	var existing models.ProviderConfig
	err := s.db.WithContext(ctx).Where("code = ? AND merchant_id = ?", code, cfg.MerchantID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var currencies []string
	if cfg.Currency != "" {
		currencies = []string{cfg.Currency}
	}
	provider, err := s.Create(ctx, CreateProviderInput{
		Code:       code,
		MerchantID: cfg.MerchantID,
		PublicKey:  cfg.PublicKey,
		State:      models.ProviderState(cfg.State),
		Currencies: currencies,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("bootstrap provider created",
		zap.String("uuid", provider.UUID),
		zap.String("merchant_id", provider.MerchantID),
		zap.String("state", string(provider.State)),
	)
	return provider, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payment.ErrProviderNotFound
	}
	return err
}
