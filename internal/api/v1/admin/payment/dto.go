package payment

import (
	"time"

	"payway-adapter/internal/models"
)

type CreateProviderRequest struct {
	Name       string   `json:"name"`
	MerchantID string   `json:"merchant_id" binding:"required"`
	PublicKey  string   `json:"public_key" binding:"required"`
	State      string   `json:"state" binding:"omitempty,oneof=enabled test disabled"`
	Currencies []string `json:"currencies" binding:"dive,len=3"`
}

type UpdateProviderRequest struct {
	Name       *string  `json:"name"`
	MerchantID *string  `json:"merchant_id"`
	PublicKey  *string  `json:"public_key"` // Pointer so an omitted key keeps the stored one
	State      *string  `json:"state" binding:"omitempty,oneof=enabled test disabled"`
	Currencies []string `json:"currencies" binding:"omitempty,dive,len=3"`
}

// ProviderResponse never includes the public key.
type ProviderResponse struct {
	ID          uint     `json:"id"`
	UUID        string   `json:"uuid"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	MerchantID  string   `json:"merchant_id"`
	State       string   `json:"state"`
	Environment string   `json:"environment"`
	Currencies  []string `json:"currencies"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func NewProviderResponse(p *models.ProviderConfig) ProviderResponse {
	currencies := p.Currencies.Normalize()
	if currencies == nil {
		currencies = []string{}
	}
	return ProviderResponse{
		ID:          p.ID,
		UUID:        p.UUID,
		Code:        p.Code,
		Name:        p.Name,
		MerchantID:  p.MerchantID,
		State:       string(p.State),
		Environment: string(p.Environment()),
		Currencies:  currencies,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}
