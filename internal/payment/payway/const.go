package payway

// Code identifies PayWay in provider configs and transactions.
const Code = "payway"

const (
	PurchasePath         = "/api/payment-gateway/v1/payments/purchase"
	CheckTransactionPath = "/api/payment-gateway/v1/payments/check-transaction-2"

	// Public routes the gateway calls back into.
	WebhookPath = "/payment/payway/webhook"
	ReturnPath  = "/payment/payway/return"

	// StatusPagePath is where the return route sends the payer.
	StatusPagePath = "/payment/status"

	DefaultProductionURL = "https://checkout.payway.com.kh"
	DefaultSandboxURL    = "https://checkout-sandbox.payway.com.kh"

	requestTimeLayout = "20060102150405"

	// HashField is the form key carrying the secure hash.
	HashField = "hash"

	statusCodeOK = "00"
)

// DefaultPaymentMethodCodes are activated with the provider.
var DefaultPaymentMethodCodes = []string{"card", "abapay", "bakong"}

// paymentMethodsMapping maps local payment method codes to PayWay payment options.
var paymentMethodsMapping = map[string]string{
	"card":   "cards",
	"abapay": "abapay",
	"bakong": "bakong",
}

// PaymentOption returns the PayWay payment option for a local method code.
func PaymentOption(methodCode string) (string, bool) {
	option, ok := paymentMethodsMapping[methodCode]
	return option, ok
}
