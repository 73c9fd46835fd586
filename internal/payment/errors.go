package payment

import (
	"errors"
	"fmt"
)

var (
	ErrTransactionNotFound      = errors.New("no transaction found matching tran_id")
	ErrAmbiguousTransaction     = errors.New("more than one transaction matches tran_id")
	ErrReconciliationInProgress = errors.New("reconciliation already in progress for this transaction")
	ErrStaleTransaction         = errors.New("transaction changed while it was being reconciled")
	ErrUnsupportedGateway       = errors.New("unsupported payment gateway")
	ErrProviderNotFound         = errors.New("payment provider not found")
)

// MissingFieldError reports a required signing or notification field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// UnsupportedPaymentMethodError reports a local payment method with no gateway mapping.
type UnsupportedPaymentMethodError struct {
	Code string
}

func (e *UnsupportedPaymentMethodError) Error() string {
	return fmt.Sprintf("payment method %q is not supported by the gateway", e.Code)
}

// ProtocolError reports a gateway response with an unexpected shape.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway protocol error: %s: %v", e.Reason, e.Err)
	}
	return "gateway protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsDomainError reports whether err is a validation or identity failure that
// the webhook boundary acknowledges and logs. Anything else is infrastructure.
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	var (
		missing     *MissingFieldError
		unsupported *UnsupportedPaymentMethodError
		protocol    *ProtocolError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &unsupported), errors.As(err, &protocol):
		return true
	case errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrAmbiguousTransaction),
		errors.Is(err, ErrReconciliationInProgress),
		errors.Is(err, ErrStaleTransaction),
		errors.Is(err, ErrUnsupportedGateway),
		errors.Is(err, ErrProviderNotFound):
		return true
	}
	return false
}
