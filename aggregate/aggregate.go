package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/frangb/nokycbot/exchange/types"
	"github.com/frangb/nokycbot/metrics"
	"github.com/frangb/nokycbot/pricefeed"
)

// Selection picks which venues a query fans out to
type Selection string

const (
	SelectionAll      Selection = "all"
	SelectionBisq     Selection = "bisq"
	SelectionHodlHodl Selection = "hodlhodl"
	SelectionRobosats Selection = "robosats"
)

func (s Selection) String() string {
	return string(s)
}

var ErrInvalidSelection = errors.New("invalid exchange selection")

// ParseSelection parses the raw exchange selection
func ParseSelection(raw string) (Selection, error) {
	switch Selection(strings.ToLower(strings.TrimSpace(raw))) {
	case SelectionAll:
		return SelectionAll, nil
	case SelectionBisq:
		return SelectionBisq, nil
	case SelectionHodlHodl:
		return SelectionHodlHodl, nil
	case SelectionRobosats:
		return SelectionRobosats, nil
	default:
		return "", ErrInvalidSelection
	}
}

// selectionExchanges maps a non-"all" selection onto its venue
var selectionExchanges = map[Selection]types.Exchange{
	SelectionBisq:     types.ExchangeBisq,
	SelectionHodlHodl: types.ExchangeHodlHodl,
	SelectionRobosats: types.ExchangeRobosats,
}

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Source is a single offer venue adapter
type Source interface {
	// Exchange returns the venue the source fetches from
	Exchange() types.Exchange

	// FetchOffers fetches the venue's normalized offers for the
	// given fiat code and trade direction, sorted ascending by price
	FetchOffers(
		ctx context.Context,
		fiat string,
		direction types.Direction,
		refPrice int,
	) ([]*types.Offer, error)
}

// PriceResolver resolves the per-query reference BTC price
type PriceResolver interface {
	Resolve(ctx context.Context, fiat string) pricefeed.Result
}

// Aggregator merges normalized offers from the selected venues into
// a single, direction-ordered offer list
type Aggregator struct {
	resolver PriceResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	sources  []Source
}

// New creates a new offer aggregator over the given sources
func New(resolver PriceResolver, sources []Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver: resolver,
		sources:  sources,
		logger:   noopLogger,
	}

	// Apply the options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Aggregate resolves the reference price once, fans out to the venues in
// the selection, and returns the merged offer list sorted by price
// (descending for buy, ascending for sell).
// It never fails: a venue whose fetch errors simply contributes nothing,
// and in the worst case the result is an empty list with the fallback
// reference price
func (a *Aggregator) Aggregate(
	ctx context.Context,
	fiat string,
	direction types.Direction,
	selection Selection,
) (pricefeed.Result, []*types.Offer) {
	queryID := xid.New()

	a.metrics.QueryStarted()

	a.logger.Info(
		"aggregating offers",
		"query_id", queryID,
		"fiat", fiat,
		"direction", direction,
		"selection", selection,
	)

	// Resolve the reference price once, so deviation is
	// comparable across venues
	refPrice := a.resolver.Resolve(ctx, fiat)
	if refPrice.Degraded {
		a.metrics.PriceDegraded()

		a.logger.Warn(
			"reference price degraded",
			"query_id", queryID,
			"fiat", fiat,
		)
	}

	var (
		merged []*types.Offer
		mux    sync.Mutex
	)

	group, gCtx := errgroup.WithContext(ctx)

	for _, source := range a.selectSources(selection) {
		group.Go(func() error {
			offers, err := source.FetchOffers(gCtx, fiat, direction, refPrice.Price)
			if err != nil {
				a.metrics.FetchFailed(source.Exchange())

				a.logger.Error(
					"unable to fetch offers",
					"query_id", queryID,
					"exchange", source.Exchange(),
					"err", err,
				)

				// A failed venue contributes nothing
				return nil
			}

			mux.Lock()
			merged = append(merged, offers...)
			mux.Unlock()

			return nil
		})
	}

	// Sources swallow their own failures
	_ = group.Wait()

	types.SortByPrice(merged, direction == types.DirectionBuy)

	a.logger.Info(
		"offers aggregated",
		"query_id", queryID,
		"count", len(merged),
	)

	return refPrice, merged
}

// selectSources resolves the sources matching the selection
func (a *Aggregator) selectSources(selection Selection) []Source {
	if selection == SelectionAll {
		return a.sources
	}

	exchange := selectionExchanges[selection]

	for _, source := range a.sources {
		if source.Exchange() == exchange {
			return []Source{source}
		}
	}

	return nil
}
