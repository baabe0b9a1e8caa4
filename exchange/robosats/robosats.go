package robosats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frangb/nokycbot/exchange/types"
)

// DefaultBaseURL is the RoboSats coordinator API
const DefaultBaseURL = "https://unsafe.robosats.com"

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// currencyIDs maps fiat codes to the numeric currency IDs the
// RoboSats book API is keyed by
var currencyIDs = map[string]int{
	"usd": 1,
	"eur": 2,
	"jpy": 3,
	"gbp": 4,
	"aud": 5,
	"cad": 6,
	"chf": 7,
	"clp": 8,
	"czk": 9,
	"cny": 10,
	"dkk": 11,
	"hkd": 12,
	"huf": 13,
	"inr": 14,
	"isk": 15,
	"krw": 16,
	"mxn": 17,
	"nok": 18,
	"nzd": 19,
	"pln": 20,
	"ron": 21,
	"rub": 22,
	"sek": 23,
	"sgd": 24,
	"ves": 25,
	"zar": 26,
	"brl": 31,
}

// orderTypes maps the trade direction onto the numeric order type
// of the book API
var orderTypes = map[types.Direction]int{
	types.DirectionBuy:  0,
	types.DirectionSell: 1,
}

type bookEntry struct {
	Price         float64 `json:"price"`
	Amount        string  `json:"amount"`
	MinAmount     string  `json:"min_amount"`
	MaxAmount     string  `json:"max_amount"`
	HasRange      bool    `json:"has_range"`
	PaymentMethod string  `json:"payment_method"`
}

// Client wraps the RoboSats order book API
type Client struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewClient creates a new RoboSats API client
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
	return types.ExchangeRobosats
}

// FetchOffers fetches the RoboSats order book for the given fiat currency
// and direction, normalized and sorted ascending by price.
// A fiat the coordinator doesn't support yields an empty result, not an error
func (c *Client) FetchOffers(
	ctx context.Context,
	fiat string,
	direction types.Direction,
	refPrice int,
) ([]*types.Offer, error) {
	currencyID, ok := currencyIDs[fiat]
	if !ok {
		// The venue doesn't list this fiat
		return nil, nil
	}

	url := fmt.Sprintf(
		"%s/api/book/?currency=%d&type=%d",
		c.baseURL,
		currencyID,
		orderTypes[direction],
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

	// The book API responds 404 when no orders match the filter
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var entries []bookEntry

	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	offers := make([]*types.Offer, 0, len(entries))

	for _, entry := range entries {
		price := int(entry.Price)
		if price <= 0 {
			c.logger.Warn(
				"skipping offer with non-positive price",
				"price", entry.Price,
			)

			continue
		}

		minAmount, maxAmount := entry.amountBounds()

		offers = append(offers, &types.Offer{
			Exchange:  types.ExchangeRobosats,
			Price:     price,
			Deviation: types.DeviationPct(price, refPrice),
			MinAmount: minAmount,
			MaxAmount: maxAmount,
			MinBTC:    float64(minAmount) / float64(price),
			MaxBTC:    float64(maxAmount) / float64(price),
			Method:    types.CanonicalMethod(entry.PaymentMethod),
		})
	}

	types.SortByPrice(offers, false)

	return offers, nil
}

// amountBounds resolves the fiat bounds of a book entry.
// Ranged orders carry min_amount/max_amount, fixed orders only amount
func (e *bookEntry) amountBounds() (int, int) {
	if e.HasRange {
		var (
			minRaw, _ = strconv.ParseFloat(e.MinAmount, 64)
			maxRaw, _ = strconv.ParseFloat(e.MaxAmount, 64)
		)

		return int(minRaw), int(maxRaw)
	}

	amount, _ := strconv.ParseFloat(e.Amount, 64)

	return int(amount), int(amount)
}
