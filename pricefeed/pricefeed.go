package pricefeed

import (
	"context"
	"io"
	"log/slog"
)

// FallbackPrice is returned on any resolution failure.
// It is deliberately 1 (not 0) so that downstream deviation math,
// which divides by the reference price, stays safe. Deviation values
// computed against it are knowingly wrong, which is why degraded
// results are tagged and logged
const FallbackPrice = 1

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Result is the outcome of a reference price resolution
type Result struct {
	Price    int  `json:"price"`
	Degraded bool `json:"degraded"`
}

// Source is a single upstream BTC reference price source
type Source interface {
	// FetchReferencePrice fetches the BTC price for the given fiat code
	FetchReferencePrice(ctx context.Context, fiat string) (int, error)
}

// Resolver resolves the per-query reference price, degrading to a
// safe fallback instead of failing the query
type Resolver struct {
	source Source
	logger *slog.Logger
}

// NewResolver creates a new reference price resolver
func NewResolver(source Source, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		logger: noopLogger,
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve resolves the reference BTC price for the given fiat code.
// It never fails; on upstream failure it returns the fallback price,
// tagged as degraded
func (r *Resolver) Resolve(ctx context.Context, fiat string) Result {
	price, err := r.source.FetchReferencePrice(ctx, fiat)
	if err != nil {
		r.logger.Error(
			"unable to resolve reference price, degrading",
			"fiat", fiat,
			"fallback", FallbackPrice,
			"err", err,
		)

		return Result{
			Price:    FallbackPrice,
			Degraded: true,
		}
	}

	if price <= 0 {
		r.logger.Error(
			"non-positive reference price, degrading",
			"fiat", fiat,
			"price", price,
		)

		return Result{
			Price:    FallbackPrice,
			Degraded: true,
		}
	}

	return Result{
		Price: price,
	}
}
