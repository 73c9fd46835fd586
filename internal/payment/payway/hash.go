package payway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"strings"

	"payway-adapter/internal/payment"
)

// PurchaseHashKeys is the signing order of the purchase request. Reordering
// changes the signature.
var PurchaseHashKeys = [...]string{
	"req_time",
	"merchant_id",
	"tran_id",
	"amount",
	"firstname",
	"lastname",
	"email",
	"payment_option",
	"return_url",
	"cancel_url",
	"continue_success_url",
	"currency",
}

// CheckTransactionHashKeys is the signing order of the check-transaction request.
var CheckTransactionHashKeys = [...]string{
	"req_time",
	"merchant_id",
	"tran_id",
}

// ComputeHash concatenates values without separators and returns the base64
// encoded HMAC-SHA512 of the result keyed with secretKey.
func ComputeHash(values []string, secretKey []byte) string {
	mac := hmac.New(sha512.New, secretKey)
	mac.Write([]byte(strings.Join(values, "")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignFields hashes fields in the order given by keys. A key absent from
// fields is a MissingFieldError.
func SignFields(fields map[string]string, keys []string, secretKey []byte) (string, error) {
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			return "", &payment.MissingFieldError{Field: k}
		}
		values = append(values, v)
	}
	return ComputeHash(values, secretKey), nil
}
