package server

import "github.com/frangb/nokycbot/exchange/types"

// OffersResponse is the result of one offer aggregation query
type OffersResponse struct {
	Fiat      string         `json:"fiat"`
	Direction string         `json:"direction"`
	Price     int            `json:"price"`    // reference BTC price
	Degraded  bool           `json:"degraded"` // reference price fell back to 1
	Truncated bool           `json:"truncated"`
	Offers    []*types.Offer `json:"offers"`
	Table     string         `json:"table"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
