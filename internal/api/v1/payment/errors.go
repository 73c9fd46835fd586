package payment

import (
	"errors"
	"net/http"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"
	"payway-adapter/internal/services"
)

// ErrorStatus maps service errors onto HTTP status codes for the JSON API.
func ErrorStatus(err error) int {
	var (
		missing     *payment.MissingFieldError
		unsupported *payment.UnsupportedPaymentMethodError
		protocol    *payment.ProtocolError
	)
	switch {
	case errors.Is(err, payment.ErrTransactionNotFound), errors.Is(err, payment.ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransactionState),
		errors.Is(err, payment.ErrReconciliationInProgress),
		errors.Is(err, payment.ErrStaleTransaction):
		return http.StatusConflict
	case errors.As(err, &missing), errors.As(err, &unsupported),
		errors.Is(err, payment.ErrUnsupportedGateway),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrCurrencyMismatch),
		errors.Is(err, models.ErrMerchantIDRequired),
		errors.Is(err, models.ErrPublicKeyRequired),
		errors.Is(err, models.ErrInvalidProviderState),
		errors.Is(err, models.ErrCurrencyRequired),
		errors.Is(err, models.ErrTooManyCurrencies),
		errors.Is(err, models.ErrProviderDisabled):
		return http.StatusBadRequest
	case errors.As(err, &protocol):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
