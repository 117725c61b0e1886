// Package provider holds clients for systems AgroPlan consumes but does not
// own. Callers depend on the interfaces; the HTTP implementations live next
// to them.
package provider

import (
	"context"
	"errors"
)

// DefaultYieldSource tags external estimates when the provider names no
// source and no endpoint is known.
const DefaultYieldSource = "external_api"

// ErrMalformedQuote is returned when the provider answers 2xx without a
// usable yield figure.
var ErrMalformedQuote = errors.New("yield provider returned no usable yield_quintals_per_acre")

// YieldQuery identifies the crop and growing conditions to quote.
type YieldQuery struct {
	Crop           string
	District       string
	State          string
	SoilType       string
	Season         string
	IrrigationType string
}

// YieldQuote is an accepted provider answer.
type YieldQuote struct {
	YieldPerAcre float64
	Source       string
}

// YieldProvider returns an expected yield in quintals per acre. Errors are
// expected and callers are meant to degrade, not fail.
type YieldProvider interface {
	QuoteYield(ctx context.Context, q YieldQuery) (YieldQuote, error)
}
