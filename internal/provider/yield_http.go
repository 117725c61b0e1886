package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPYieldProvider calls an external estimate service:
//
//	GET <endpoint>?crop=&district=&state=&soil_type=&season=&irrigation_type=
//
// and expects JSON with a numeric yield_quintals_per_acre and an optional
// source string. Each call is a single attempt bounded by the client timeout.
type HTTPYieldProvider struct {
	client   *resty.Client
	endpoint string
}

type quoteResponse struct {
	YieldQuintalsPerAcre *float64 `json:"yield_quintals_per_acre"`
	Source               any      `json:"source"`
}

// NewHTTPYieldProvider builds a provider for endpoint with the given
// per-request timeout.
func NewHTTPYieldProvider(endpoint string, timeout time.Duration) *HTTPYieldProvider {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &HTTPYieldProvider{
		client:   client,
		endpoint: strings.TrimSpace(endpoint),
	}
}

// Endpoint returns the configured URL.
func (p *HTTPYieldProvider) Endpoint() string {
	return p.endpoint
}

// QuoteYield implements YieldProvider.
func (p *HTTPYieldProvider) QuoteYield(ctx context.Context, q YieldQuery) (YieldQuote, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"crop":            q.Crop,
			"district":        q.District,
			"state":           q.State,
			"soil_type":       q.SoilType,
			"season":          q.Season,
			"irrigation_type": q.IrrigationType,
		}).
		Get(p.endpoint)
	if err != nil {
		return YieldQuote{}, fmt.Errorf("call yield provider: %w", err)
	}
	if !resp.IsSuccess() {
		return YieldQuote{}, fmt.Errorf("yield provider returned status %d", resp.StatusCode())
	}

	var body quoteResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return YieldQuote{}, fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}
	if body.YieldQuintalsPerAcre == nil {
		return YieldQuote{}, ErrMalformedQuote
	}
	v := *body.YieldQuintalsPerAcre
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return YieldQuote{}, fmt.Errorf("%w: %v", ErrMalformedQuote, v)
	}

	return YieldQuote{YieldPerAcre: v, Source: p.sourceFor(body.Source)}, nil
}

func (p *HTTPYieldProvider) sourceFor(reported any) string {
	if s, ok := reported.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	if p.endpoint != "" {
		return p.endpoint
	}
	return DefaultYieldSource
}
