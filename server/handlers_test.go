package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frangb/nokycbot/aggregate"
	"github.com/frangb/nokycbot/exchange/types"
	"github.com/frangb/nokycbot/pricefeed"
	"github.com/frangb/nokycbot/render"
)

func TestHandlers_Offers(t *testing.T) {
	t.Parallel()

	t.Run("invalid fiat", func(t *testing.T) {
		t.Parallel()

		var called bool

		s := &Server{
			logger: noopLogger,
			aggregator: &mockAggregator{
				aggregateFn: func(
					_ context.Context,
					_ string,
					_ types.Direction,
					_ aggregate.Selection,
				) (pricefeed.Result, []*types.Offer) {
					called = true

					return pricefeed.Result{}, nil
				},
			},
			renderer: render.NewRenderer(),
		}

		req := httptest.NewRequest(http.MethodGet, "/api/offers?fiat=euro", http.NoBody)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("invalid direction", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			logger:     noopLogger,
			aggregator: &mockAggregator{},
			renderer:   render.NewRenderer(),
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/api/offers?fiat=eur&direction=hodl",
			http.NoBody,
		)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid exchange selection", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			logger:     noopLogger,
			aggregator: &mockAggregator{},
			renderer:   render.NewRenderer(),
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/api/offers?fiat=eur&exchange=binance",
			http.NoBody,
		)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid premium", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			logger:     noopLogger,
			aggregator: &mockAggregator{},
			renderer:   render.NewRenderer(),
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/api/offers?fiat=eur&premium=lots",
			http.NoBody,
		)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("json response", func(t *testing.T) {
		t.Parallel()

		var (
			capturedFiat      string
			capturedDirection types.Direction
			capturedSelection aggregate.Selection
		)

		s := &Server{
			logger: noopLogger,
			aggregator: &mockAggregator{
				aggregateFn: func(
					_ context.Context,
					fiat string,
					direction types.Direction,
					selection aggregate.Selection,
				) (pricefeed.Result, []*types.Offer) {
					capturedFiat = fiat
					capturedDirection = direction
					capturedSelection = selection

					return pricefeed.Result{Price: 20000}, []*types.Offer{
						{
							Exchange:  types.ExchangeBisq,
							Price:     21000,
							Deviation: 5.0,
							Method:    "SEPA",
						},
					}
				},
			},
			renderer: render.NewRenderer(),
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/api/offers?fiat=EUR&direction=sell&exchange=bisq&premium=9",
			http.NoBody,
		)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "eur", capturedFiat)
		assert.Equal(t, types.DirectionSell, capturedDirection)
		assert.Equal(t, aggregate.SelectionBisq, capturedSelection)

		var resp OffersResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		assert.Equal(t, "eur", resp.Fiat)
		assert.Equal(t, "sell", resp.Direction)
		assert.Equal(t, 20000, resp.Price)
		assert.False(t, resp.Degraded)

		// 5% deviation is under the sell threshold of 9
		require.Len(t, resp.Offers, 1)
		assert.Contains(t, resp.Table, "Bisq")
	})

	t.Run("degraded reference price surfaces", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			logger:     noopLogger,
			aggregator: &mockAggregator{}, // degrades by default
			renderer:   render.NewRenderer(),
		}

		req := httptest.NewRequest(http.MethodGet, "/api/offers?fiat=eur", http.NoBody)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp OffersResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		assert.Equal(t, pricefeed.FallbackPrice, resp.Price)
		assert.True(t, resp.Degraded)
		assert.Empty(t, resp.Offers)
	})

	t.Run("text response", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			logger: noopLogger,
			aggregator: &mockAggregator{
				aggregateFn: func(
					_ context.Context,
					_ string,
					_ types.Direction,
					_ aggregate.Selection,
				) (pricefeed.Result, []*types.Offer) {
					return pricefeed.Result{Price: 20000}, []*types.Offer{
						{
							Exchange: types.ExchangeRobosats,
							Price:    20400,
							Method:   "Revolut",
						},
					}
				},
			},
			renderer: render.NewRenderer(),
		}

		req := httptest.NewRequest(
			http.MethodGet,
			"/api/offers?fiat=eur&format=text",
			http.NoBody,
		)
		w := httptest.NewRecorder()

		s.Offers(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "BTC price: 20000 EUR"))
		assert.Contains(t, w.Body.String(), "Robosats")
	})
}

func TestHandlers_ParseFiat(t *testing.T) {
	t.Parallel()

	t.Run("valid codes", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"eur", "USD", " gbp "} {
			fiat, err := parseFiat(raw)

			require.NoError(t, err)
			assert.Len(t, fiat, 3)
			assert.Equal(t, strings.ToLower(fiat), fiat)
		}
	})

	t.Run("invalid codes", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "eu", "euro", "e1r"} {
			_, err := parseFiat(raw)

			assert.Error(t, err)
		}
	})
}
