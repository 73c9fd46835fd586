package payway

import (
	"fmt"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"
)

// requiredPurchaseValues count as absent when blank. First and last name may
// be blank when the payer gave a single name.
var requiredPurchaseValues = []string{
	"merchant_id",
	"tran_id",
	"amount",
	"email",
	"payment_option",
	"currency",
}

// BuildCheckoutRequest assembles the twelve purchase fields for tx and signs them.
func (d *Driver) BuildCheckoutRequest(tx *models.Transaction, provider *models.ProviderConfig) (*payment.SignedRequest, error) {
	option, ok := PaymentOption(tx.PaymentMethodCode)
	if !ok {
		return nil, &payment.UnsupportedPaymentMethodError{Code: tx.PaymentMethodCode}
	}

	currency, err := provider.Currency()
	if err != nil {
		return nil, err
	}
	if tx.Currency != "" && tx.Currency != currency {
		return nil, fmt.Errorf("transaction currency %s does not match provider currency %s", tx.Currency, currency)
	}

	tranID := ""
	if tx.ID != 0 {
		tranID = tx.TranID()
	}

	returnURL := d.publicBaseURL + ReturnPath
	fields := map[string]string{
		"req_time":             d.requestTime(),
		"merchant_id":          provider.MerchantID,
		"tran_id":              tranID,
		"amount":               tx.Amount.StringFixed(2),
		"firstname":            tx.PartnerFirstName,
		"lastname":             tx.PartnerLastName,
		"email":                tx.PartnerEmail,
		"payment_option":       option,
		"return_url":           d.publicBaseURL + WebhookPath,
		"cancel_url":           returnURL,
		"continue_success_url": returnURL,
		"currency":             currency,
	}
	for _, k := range requiredPurchaseValues {
		if fields[k] == "" {
			delete(fields, k)
		}
	}

	hash, err := SignFields(fields, PurchaseHashKeys[:], []byte(provider.PublicKey))
	if err != nil {
		return nil, err
	}

	return &payment.SignedRequest{
		APIURL:     d.APIURL(provider) + PurchasePath,
		Fields:     fields,
		Order:      append([]string(nil), PurchaseHashKeys[:]...),
		HashField:  HashField,
		SecureHash: hash,
	}, nil
}
