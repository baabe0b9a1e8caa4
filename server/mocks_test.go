package server

import (
	"context"

	"github.com/frangb/nokycbot/aggregate"
	"github.com/frangb/nokycbot/exchange/types"
	"github.com/frangb/nokycbot/pricefeed"
)

type aggregateDelegate func(
	context.Context,
	string,
	types.Direction,
	aggregate.Selection,
) (pricefeed.Result, []*types.Offer)

type mockAggregator struct {
	aggregateFn aggregateDelegate
}

func (m *mockAggregator) Aggregate(
	ctx context.Context,
	fiat string,
	direction types.Direction,
	selection aggregate.Selection,
) (pricefeed.Result, []*types.Offer) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, fiat, direction, selection)
	}

	return pricefeed.Result{Price: pricefeed.FallbackPrice, Degraded: true}, nil
}
