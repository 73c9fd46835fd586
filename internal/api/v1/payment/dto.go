package payment

import (
	"time"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	ProviderUUID      string          `json:"provider_uuid" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency,omitempty" binding:"omitempty,len=3"`
	PartnerName       string          `json:"partner_name,omitempty"`
	PartnerFirstName  string          `json:"partner_first_name,omitempty"`
	PartnerLastName   string          `json:"partner_last_name,omitempty"`
	PartnerEmail      string          `json:"partner_email" binding:"required,email"`
	PaymentMethodCode string          `json:"payment_method_code" binding:"required,oneof=card abapay bakong"`
}

type TransactionResponse struct {
	ID                uint       `json:"id"`
	Reference         string     `json:"reference"`
	TranID            string     `json:"tran_id"`
	ProviderCode      string     `json:"provider_code"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	PaymentMethodCode string     `json:"payment_method_code"`
	ProviderReference string     `json:"provider_reference"`
	State             string     `json:"state"`
	StateMessage      string     `json:"state_message"`
	LastStateChange   *time.Time `json:"last_state_change,omitempty"`
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                tx.ID,
		Reference:         tx.Reference,
		TranID:            tx.TranID(),
		ProviderCode:      tx.ProviderCode,
		Amount:            tx.Amount.StringFixed(2),
		Currency:          tx.Currency,
		PaymentMethodCode: tx.PaymentMethodCode,
		ProviderReference: tx.ProviderReference,
		State:             string(tx.State),
		StateMessage:      tx.StateMessage,
		LastStateChange:   tx.LastStateChange,
		CreatedAt:         tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         tx.UpdatedAt.Format(time.RFC3339),
	}
}

// CheckoutResponse is what the storefront needs to post the payer to the gateway.
type CheckoutResponse struct {
	APIURL string            `json:"api_url"`
	Method string            `json:"method"`
	Fields map[string]string `json:"fields"`
	Order  []string          `json:"order"`
}

func NewCheckoutResponse(req *payment.SignedRequest) CheckoutResponse {
	form := req.Form()
	fields := make(map[string]string, len(form))
	for k := range form {
		fields[k] = form.Get(k)
	}
	return CheckoutResponse{
		APIURL: req.APIURL,
		Method: "POST",
		Fields: fields,
		Order:  req.Order,
	}
}
