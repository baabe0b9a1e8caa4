package types

import (
	"errors"
	"sort"
	"strings"
)

// Exchange is a supported offer venue
type Exchange string

const (
	ExchangeBisq     Exchange = "Bisq"
	ExchangeHodlHodl Exchange = "HodlHodl"
	ExchangeRobosats Exchange = "Robosats"
)

func (e Exchange) String() string {
	return string(e)
}

// Direction is the querying user's desired trade side
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

func (d Direction) String() string {
	return string(d)
}

var ErrInvalidDirection = errors.New("invalid direction")

// ParseDirection parses the raw trade direction
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case DirectionBuy:
		return DirectionBuy, nil
	case DirectionSell:
		return DirectionSell, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Offer is one counterparty's listed intent to trade BTC for fiat,
// normalized to a common shape across venues
type Offer struct {
	Exchange  Exchange `json:"exchange"`
	Price     int      `json:"price"`         // fiat units per BTC, truncated
	Deviation float64  `json:"deviation_pct"` // % off the reference price
	MinAmount int      `json:"min_amount"`    // fiat
	MaxAmount int      `json:"max_amount"`    // fiat
	MinBTC    float64  `json:"min_btc"`
	MaxBTC    float64  `json:"max_btc"`
	Method    string   `json:"payment_method"`
}

// DeviationPct calculates the percentage deviation of the given offer
// price from the reference price.
// The reference price must be positive (callers fall back to 1 when
// resolution fails, keeping the division safe)
func DeviationPct(price, refPrice int) float64 {
	return (float64(price)/float64(refPrice) - 1) * 100
}

// CanonicalMethod folds venue-specific payment method labels
// into a common vocabulary. Unknown labels pass through unchanged
func CanonicalMethod(method string) string {
	switch {
	case strings.Contains(method, "SEPA"):
		return "SEPA"
	case strings.Contains(method, "Any national bank"):
		return "NATIONAL_BANK"
	default:
		return method
	}
}

// SortByPrice orders offers by price, descending when desc is set
func SortByPrice(offers []*Offer, desc bool) {
	sort.SliceStable(offers, func(i, j int) bool {
		if desc {
			return offers[i].Price > offers[j].Price
		}

		return offers[i].Price < offers[j].Price
	})
}
