package models

import (
	"errors"
	"time"
)

var (
	ErrMerchantIDRequired   = errors.New("merchant id is required")
	ErrPublicKeyRequired    = errors.New("public key is required")
	ErrInvalidProviderState = errors.New("provider state must be one of enabled, test, disabled")
	ErrCurrencyRequired     = errors.New("a currency must be selected for this provider")
	ErrTooManyCurrencies    = errors.New("only one currency can be selected by PayWay account")
	ErrProviderDisabled     = errors.New("payment provider is disabled")
)

// ProviderState mirrors the provider lifecycle: enabled uses production,
// test uses the sandbox and disabled blocks checkout.
type ProviderState string

const (
	ProviderStateEnabled  ProviderState = "enabled"
	ProviderStateTest     ProviderState = "test"
	ProviderStateDisabled ProviderState = "disabled"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentSandbox    Environment = "sandbox"
)

type ProviderConfig struct {
	ID         uint          `gorm:"primarykey" json:"id"`
	UUID       string        `gorm:"uniqueIndex;type:varchar(36);not null" json:"uuid"`
	Code       string        `gorm:"type:varchar(50);not null;index" json:"code"` // e.g., "payway"
	Name       string        `gorm:"type:varchar(100);not null;default:'PayWay'" json:"name"`
	MerchantID string        `gorm:"type:varchar(64);not null" json:"merchant_id"`
	PublicKey  string        `gorm:"type:varchar(255);not null" json:"-"` // HMAC key, never serialized
	State      ProviderState `gorm:"type:varchar(20);not null;default:'test'" json:"state"`
	Currencies CurrencySet   `gorm:"type:text" json:"currencies"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (ProviderConfig) TableName() string {
	return "payment_providers"
}

// Environment derives the gateway environment from the provider state.
func (p *ProviderConfig) Environment() Environment {
	if p.State == ProviderStateEnabled {
		return EnvironmentProduction
	}
	return EnvironmentSandbox
}

// Validate enforces required credentials and the single active currency rule.
func (p *ProviderConfig) Validate() error {
	switch p.State {
	case ProviderStateEnabled, ProviderStateTest, ProviderStateDisabled:
	default:
		return ErrInvalidProviderState
	}
	if p.MerchantID == "" {
		return ErrMerchantIDRequired
	}
	if p.PublicKey == "" {
		return ErrPublicKeyRequired
	}
	if p.State == ProviderStateDisabled {
		return nil
	}
	switch n := len(p.Currencies.Normalize()); {
	case n == 0:
		return ErrCurrencyRequired
	case n > 1:
		return ErrTooManyCurrencies
	}
	return nil
}

// Currency returns the single settlement currency of an active provider.
func (p *ProviderConfig) Currency() (string, error) {
	if p.State == ProviderStateDisabled {
		return "", ErrProviderDisabled
	}
	codes := p.Currencies.Normalize()
	switch len(codes) {
	case 0:
		return "", ErrCurrencyRequired
	case 1:
		return codes[0], nil
	default:
		return "", ErrTooManyCurrencies
	}
}
