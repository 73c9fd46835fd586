package utils

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const maxLoggedBody = 2000

// LoggingTransport implements http.RoundTripper and logs requests and responses.
// Form fields listed in Redact are masked in the request log.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *zap.Logger
	Redact    []string
}

// RoundTrip executes a single HTTP transaction and logs the request and response
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := t.Logger
	if log == nil {
		log = zap.NewNop()
	}

	reqBodyLog := "empty"
	if req.Body != nil {
		bodyBytes, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Restore body
		if len(bodyBytes) > 0 {
			reqBodyLog = t.redact(string(bodyBytes))
		}
	}
	log.Debug("gateway request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("body", reqBodyLog),
	)

	start := time.Now()

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	resp, err := transport.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Warn("gateway request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	respBodyLog := "empty"
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Restore body
		if len(bodyBytes) > maxLoggedBody {
			respBodyLog = string(bodyBytes[:maxLoggedBody]) + "...(truncated)"
		} else if len(bodyBytes) > 0 {
			respBodyLog = string(bodyBytes)
		}
	}

	log.Debug("gateway response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("body", respBodyLog),
	)

	return resp, nil
}

// redact masks the configured keys when body is form encoded.
func (t *LoggingTransport) redact(body string) string {
	if len(t.Redact) == 0 {
		return body
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		return body
	}
	masked := false
	for _, key := range t.Redact {
		if _, ok := values[key]; ok {
			values.Set(key, "***")
			masked = true
		}
	}
	if !masked {
		return body
	}
	return values.Encode()
}

// NewHTTPClient returns a new http.Client with logging enabled
func NewHTTPClient(timeout time.Duration, logger *zap.Logger, redact ...string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &LoggingTransport{
			Transport: http.DefaultTransport,
			Logger:    logger,
			Redact:    redact,
		},
	}
}
