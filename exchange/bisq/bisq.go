package bisq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frangb/nokycbot/exchange/types"
)

// DefaultBaseURL is the Bisq markets API, reachable only over Tor
const DefaultBaseURL = "http://bisqmktse2cabavbr2xjq7xw3h6g5ottemo5rolfcwt6aly6tp5fdryd.onion"

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// marketOffers is the per-market offer book in the Bisq offers response
type marketOffers struct {
	Buys  []offerEntry `json:"buys"`
	Sells []offerEntry `json:"sells"`
}

type offerEntry struct {
	Price         string `json:"price"`
	MinAmount     string `json:"min_amount"` // BTC
	Amount        string `json:"amount"`     // BTC
	Volume        string `json:"volume"`     // fiat
	PaymentMethod string `json:"payment_method"`
}

// tickerResponse is the Bisq single-market ticker response
type tickerResponse struct {
	Last string `json:"last"`
}

// Client wraps the Bisq markets API offer book and ticker endpoints
type Client struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewClient creates a new Bisq markets API client
func NewClient(client *http.Client, opts ...Option) *Client {
	c := &Client{
		client:  client,
		logger:  noopLogger,
		baseURL: DefaultBaseURL,
	}

	// Apply the options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Exchange() types.Exchange {
	return types.ExchangeBisq
}

// FetchOffers fetches the Bisq offer book for the given fiat market and
// direction, normalized and sorted ascending by price.
// A market the venue does not list yields an empty result, not an error
func (c *Client) FetchOffers(
	ctx context.Context,
	fiat string,
	direction types.Direction,
	refPrice int,
) ([]*types.Offer, error) {
	url := fmt.Sprintf(
		"%s/api/offers?market=btc_%s&direction=%s",
		c.baseURL,
		strings.ToUpper(fiat),
		strings.ToUpper(direction.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	// The response is keyed by market, ex. "btc_eur"
	var markets map[string]marketOffers

	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	market, ok := markets["btc_"+strings.ToLower(fiat)]
	if !ok {
		// The venue doesn't list this fiat market
		return nil, nil
	}

	entries := market.Buys
	if direction == types.DirectionSell {
		entries = market.Sells
	}

	offers := make([]*types.Offer, 0, len(entries))

	for _, entry := range entries {
		rawPrice, err := strconv.ParseFloat(entry.Price, 64)
		if err != nil {
			c.logger.Warn(
				"skipping offer with malformed price",
				"price", entry.Price,
			)

			continue
		}

		price := int(rawPrice)
		if price <= 0 {
			continue
		}

		var (
			minBTC, _ = strconv.ParseFloat(entry.MinAmount, 64)
			maxBTC, _ = strconv.ParseFloat(entry.Amount, 64)
			volume, _ = strconv.ParseFloat(entry.Volume, 64)
		)

		offers = append(offers, &types.Offer{
			Exchange:  types.ExchangeBisq,
			Price:     price,
			Deviation: types.DeviationPct(price, refPrice),
			MinBTC:    minBTC,
			MaxBTC:    maxBTC,
			MinAmount: int(minBTC * float64(price)),
			MaxAmount: int(volume),
			Method:    types.CanonicalMethod(entry.PaymentMethod),
		})
	}

	types.SortByPrice(offers, false)

	return offers, nil
}

// FetchReferencePrice fetches the last traded BTC price for the given
// fiat market from the Bisq ticker, truncated to an integer
func (c *Client) FetchReferencePrice(ctx context.Context, fiat string) (int, error) {
	url := fmt.Sprintf(
		"%s/api/ticker?market=btc_%s",
		c.baseURL,
		strings.ToUpper(fiat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("unable to create new GET request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var ticker tickerResponse

	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return 0, fmt.Errorf("unable to decode response: %w", err)
	}

	last, err := strconv.ParseFloat(ticker.Last, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse last price %q: %w", ticker.Last, err)
	}

	price := int(last)
	if price <= 0 {
		return 0, fmt.Errorf("non-positive last price: %d", price)
	}

	return price, nil
}
