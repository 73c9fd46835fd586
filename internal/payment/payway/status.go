package payway

import (
	"fmt"

	"payway-adapter/internal/models"
)

// statusCodeMapping holds the PayWay payment status codes and their meaning.
var statusCodeMapping = map[int]string{
	0:  "Approved",
	1:  "Created",
	2:  "Pending",
	3:  "Declined",
	4:  "Refunded",
	5:  "Wrong Hash",
	6:  "tran_id not Found",
	11: "Other Server side Error",
}

// StatusDescription returns the table description of a payment status code.
func StatusDescription(code int) (string, bool) {
	d, ok := statusCodeMapping[code]
	return d, ok
}

// MapStatus maps a PayWay payment status code to the local target state.
func MapStatus(code int) (models.TransactionState, string) {
	description, ok := statusCodeMapping[code]
	if !ok {
		return models.StateError, fmt.Sprintf("Unknown payment code: %d", code)
	}
	switch code {
	case 0:
		return models.StateDone, description
	case 1, 2:
		return models.StatePending, description
	default:
		return models.StateError, description
	}
}

// StatusMessage builds the state message stored on the transaction. A
// gateway-supplied description wins over the table text.
func StatusMessage(code int, gatewayDescription, reference string) string {
	state, description := MapStatus(code)
	if _, known := statusCodeMapping[code]; !known {
		return fmt.Sprintf("%s (payway reference %s)", description, reference)
	}
	if gatewayDescription != "" {
		description = gatewayDescription
	}

	switch state {
	case models.StateDone:
		return fmt.Sprintf("%s (payment code %d; payway reference %s)", description, code, reference)
	case models.StatePending:
		return fmt.Sprintf("Your payment is being processed (payment code %d; message = %s; payway reference %s)",
			code, description, reference)
	default:
		return fmt.Sprintf("An error occurred during the processing of your payment (payment code %d; message = %s; "+
			"payway reference %s). Please try again.", code, description, reference)
	}
}
