// Package payway implements the ABA PayWay gateway: purchase request
// signing, the check-transaction round trip and status mapping.
package payway

import (
	"strings"
	"time"

	"payway-adapter/internal/models"

	"go.uber.org/zap"
)

type Options struct {
	ProductionURL string
	SandboxURL    string
	// PublicBaseURL is the externally reachable base of this service, used
	// to build return, cancel and continue URLs.
	PublicBaseURL string
	Timeout       time.Duration
	Logger        *zap.Logger
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

type Driver struct {
	productionURL string
	sandboxURL    string
	publicBaseURL string
	client        *Client
	logger        *zap.Logger
	now           func() time.Time
}

func NewDriver(opts Options) *Driver {
	if opts.ProductionURL == "" {
		opts.ProductionURL = DefaultProductionURL
	}
	if opts.SandboxURL == "" {
		opts.SandboxURL = DefaultSandboxURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Driver{
		productionURL: strings.TrimRight(opts.ProductionURL, "/"),
		sandboxURL:    strings.TrimRight(opts.SandboxURL, "/"),
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		client:        NewClient(opts.Timeout, opts.Logger),
		logger:        opts.Logger.With(zap.String("provider", Code)),
		now:           opts.Now,
	}
}

func (d *Driver) Code() string {
	return Code
}

// APIURL returns the gateway base URL for the provider's environment.
func (d *Driver) APIURL(provider *models.ProviderConfig) string {
	if provider.Environment() == models.EnvironmentProduction {
		return d.productionURL
	}
	return d.sandboxURL
}

func (d *Driver) requestTime() string {
	return d.now().UTC().Format(requestTimeLayout)
}
