package hodlhodl

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

// DefaultBaseURL is the HodlHodl public API
const DefaultBaseURL = "https://hodlhodl.com"

// traderOnline is the counterparty status required for an offer
// to be considered actionable
const traderOnline = "online"

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type offersResponse struct {
	Offers []offerEntry `json:"offers"`
}

type offerEntry struct {
	Price                     string               `json:"price"`
	CurrencyCode              string               `json:"currency_code"`
	MinAmount                 string               `json:"min_amount"`
	MaxAmount                 string               `json:"max_amount"`
	Trader                    trader               `json:"trader"`
	PaymentMethods            []paymentMethod      `json:"payment_methods"`
	PaymentMethodInstructions []paymentInstruction `json:"payment_method_instructions"`
}

type trader struct {
	OnlineStatus string `json:"online_status"`
}

type paymentMethod struct {
	Name string `json:"name"`
}

type paymentInstruction struct {
	PaymentMethodName string `json:"payment_method_name"`
}

// Client wraps the HodlHodl offers API
type Client struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewClient creates a new HodlHodl API client
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
	return types.ExchangeHodlHodl
}

// FetchOffers fetches the HodlHodl offers for the given fiat currency and
// direction, normalized and sorted ascending by price.
// Offers from traders who are not currently online are dropped, since
// stale listings from idle counterparties are operationally misleading
func (c *Client) FetchOffers(
	ctx context.Context,
	fiat string,
	direction types.Direction,
	refPrice int,
) ([]*types.Offer, error) {
	url := fmt.Sprintf(
		"%s/api/v1/offers?filters[side]=%s&filters[include_global]=true"+
			"&filters[currency_code]=%s&filters[only_working_now]=true&sort[by]=price",
		c.baseURL,
		direction,
		strings.ToUpper(fiat),
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

	var apiResp offersResponse

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	offers := make([]*types.Offer, 0, len(apiResp.Offers))

	for _, entry := range apiResp.Offers {
		if entry.Trader.OnlineStatus != traderOnline {
			continue
		}

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

		method, ok := entry.method(direction)
		if !ok {
			continue
		}

		var (
			minRaw, _ = strconv.ParseFloat(entry.MinAmount, 64)
			maxRaw, _ = strconv.ParseFloat(entry.MaxAmount, 64)

			minAmount = int(minRaw)
			maxAmount = int(maxRaw)
		)

		offers = append(offers, &types.Offer{
			Exchange:  types.ExchangeHodlHodl,
			Price:     price,
			Deviation: types.DeviationPct(price, refPrice),
			MinAmount: minAmount,
			MaxAmount: maxAmount,
			MinBTC:    float64(minAmount) / float64(price),
			MaxBTC:    float64(maxAmount) / float64(price),
			Method:    types.CanonicalMethod(method),
		})
	}

	types.SortByPrice(offers, false)

	return offers, nil
}

// method resolves the raw payment method label.
// Buy-side offers carry it in payment_methods, sell-side offers
// in payment_method_instructions
func (e *offerEntry) method(direction types.Direction) (string, bool) {
	if direction == types.DirectionBuy {
		if len(e.PaymentMethods) == 0 {
			return "", false
		}

		return e.PaymentMethods[0].Name, true
	}

	if len(e.PaymentMethodInstructions) == 0 {
		return "", false
	}

	return e.PaymentMethodInstructions[0].PaymentMethodName, true
}
