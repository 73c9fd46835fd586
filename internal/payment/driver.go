package payment

import (
	"context"
	"net/url"

	"payway-adapter/internal/models"
)

// Notification is the raw, untrusted key-value payload posted by a gateway.
type Notification map[string]string

// Get returns the value for key and whether it was present and non-empty.
func (n Notification) Get(key string) (string, bool) {
	v, ok := n[key]
	return v, ok && v != ""
}

// NotificationFromValues keeps the first value of every form/query key.
func NotificationFromValues(values url.Values) Notification {
	n := make(Notification, len(values))
	for k, v := range values {
		if len(v) > 0 {
			n[k] = v[0]
		}
	}
	return n
}

// SignedRequest is an ordered field set plus its computed secure hash.
type SignedRequest struct {
	APIURL     string            `json:"api_url"`
	Fields     map[string]string `json:"fields"`
	Order      []string          `json:"order"`
	HashField  string            `json:"hash_field"`
	SecureHash string            `json:"secure_hash"`
}

// Form returns the fields plus the hash, ready to post to APIURL.
func (r *SignedRequest) Form() url.Values {
	form := url.Values{}
	for k, v := range r.Fields {
		form.Set(k, v)
	}
	form.Set(r.HashField, r.SecureHash)
	return form
}

// Gateway is implemented once per payment gateway.
type Gateway interface {
	// Code identifies the gateway in provider configs and transactions.
	Code() string

	// BuildCheckoutRequest assembles and signs the fields used to redirect
	// the payer to the gateway. It does not send anything.
	BuildCheckoutRequest(tx *models.Transaction, provider *models.ProviderConfig) (*SignedRequest, error)

	// Reconcile re-derives the transaction status from the gateway and
	// applies it to tx in memory. The caller persists tx.
	Reconcile(ctx context.Context, tx *models.Transaction, notification Notification, provider *models.ProviderConfig) error
}
