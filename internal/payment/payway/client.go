package payway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"payway-adapter/internal/metrics"
	"payway-adapter/internal/payment"
	"payway-adapter/internal/utils"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 30 * time.Second

	breakerName = "payway-check-transaction"
)

// CheckTransactionResponse is the check-transaction-2 response body.
type CheckTransactionResponse struct {
	Status *struct {
		Code    *flexString `json:"code"`
		Message string      `json:"message"`
	} `json:"status"`
	Data *struct {
		PaymentStatusCode *flexString `json:"payment_status_code"`
		PaymentStatus     string      `json:"payment_status"`
		APV               flexString  `json:"apv"`
	} `json:"data"`
}

// StatusCode returns status.code or a ProtocolError when it is absent.
func (r *CheckTransactionResponse) StatusCode() (string, string, error) {
	if r.Status == nil || r.Status.Code == nil {
		return "", "", &payment.ProtocolError{Reason: "response has no status.code"}
	}
	return string(*r.Status.Code), r.Status.Message, nil
}

// PaymentStatus returns data.payment_status_code, data.payment_status and data.apv.
func (r *CheckTransactionResponse) PaymentStatus() (int, string, string, error) {
	if r.Data == nil || r.Data.PaymentStatusCode == nil {
		return 0, "", "", &payment.ProtocolError{Reason: "response has no data.payment_status_code"}
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(*r.Data.PaymentStatusCode)))
	if err != nil {
		return 0, "", "", &payment.ProtocolError{Reason: "data.payment_status_code is not an integer", Err: err}
	}
	return code, r.Data.PaymentStatus, string(r.Data.APV), nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Client posts signed requests to PayWay. Transport failures are returned
// as-is; unexpected bodies become ProtocolErrors.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.NewWithClient(utils.NewHTTPClient(timeout, logger, HashField)).
		SetTimeout(timeout).
		SetRetryCount(0). // redelivery of the notification is the retry
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		breaker: newBreaker(logger),
		logger:  logger,
	}
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(state)
			logger.Warn("circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// CheckTransaction posts form to url and decodes the JSON response.
func (c *Client) CheckTransaction(ctx context.Context, url string, form map[string]string) (*CheckTransactionResponse, error) {
	start := time.Now()
	body, err := c.post(ctx, url, form)
	metrics.GatewayRequestDuration.WithLabelValues(Code, "check_transaction").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(Code, "check_transaction", "transport_error").Inc()
		return nil, err
	}

	var resp CheckTransactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(Code, "check_transaction", "protocol_error").Inc()
		return nil, &payment.ProtocolError{Reason: "malformed check-transaction response", Err: err}
	}
	metrics.GatewayRequestsTotal.WithLabelValues(Code, "check_transaction", "ok").Inc()
	return &resp, nil
}

func (c *Client) post(ctx context.Context, url string, form map[string]string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(form).
			Post(url)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", url, err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("post %s: gateway returned %s", url, resp.Status())
		}
		return resp.Body(), nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("circuit breaker %s: %w", breakerName, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}
