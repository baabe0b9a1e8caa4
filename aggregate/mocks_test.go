package aggregate

import (
	"context"

	"github.com/frangb/nokycbot/exchange/types"
	"github.com/frangb/nokycbot/pricefeed"
)

type (
	exchangeDelegate func() types.Exchange
	fetchDelegate    func(
		context.Context,
		string,
		types.Direction,
		int,
	) ([]*types.Offer, error)
	resolveDelegate func(context.Context, string) pricefeed.Result
)

type mockSource struct {
	exchangeFn exchangeDelegate
	fetchFn    fetchDelegate
}

func (m *mockSource) Exchange() types.Exchange {
	if m.exchangeFn != nil {
		return m.exchangeFn()
	}

	return ""
}

func (m *mockSource) FetchOffers(
	ctx context.Context,
	fiat string,
	direction types.Direction,
	refPrice int,
) ([]*types.Offer, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, fiat, direction, refPrice)
	}

	return nil, nil
}

type mockResolver struct {
	resolveFn resolveDelegate
}

func (m *mockResolver) Resolve(ctx context.Context, fiat string) pricefeed.Result {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, fiat)
	}

	return pricefeed.Result{Price: pricefeed.FallbackPrice, Degraded: true}
}
