package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/frangb/nokycbot/aggregate"
	"github.com/frangb/nokycbot/exchange/types"
	"github.com/frangb/nokycbot/render"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var errInvalidFormat = errors.New("invalid format")

// Offers runs one offer aggregation query.
// Query parameters: fiat (required), direction (buy|sell, default buy),
// exchange (all|bisq|hodlhodl|robosats, default all), premium
// (alloffers or a signed integer, default alloffers), format (json|text)
func (s *Server) Offers(w http.ResponseWriter, r *http.Request) {
	var (
		query = r.URL.Query()

		fiatParam      = query.Get("fiat")
		directionParam = query.Get("direction")
		exchangeParam  = query.Get("exchange")
		premiumParam   = query.Get("premium")
		formatParam    = query.Get("format")
	)

	// Parse the fiat code
	fiat, err := parseFiat(fiatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the trade direction (defaults to buy)
	direction := types.DirectionBuy

	if directionParam != "" {
		direction, err = types.ParseDirection(directionParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)

			return
		}
	}

	// Parse the exchange selection (defaults to all venues)
	selection := aggregate.SelectionAll

	if exchangeParam != "" {
		selection, err = aggregate.ParseSelection(exchangeParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)

			return
		}
	}

	// Parse the premium filter (defaults to all offers)
	premium := render.AllOffers

	if premiumParam != "" {
		premium, err = render.ParsePremium(premiumParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)

			return
		}
	}

	// Parse the output format
	format, err := parseFormat(formatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Run the query pipeline
	refPrice, offers := s.aggregator.Aggregate(r.Context(), fiat, direction, selection)
	result := s.renderer.Render(direction, premium, offers)

	if format == formatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		//nolint:errcheck // Fine to ignore
		_, _ = fmt.Fprintf(
			w,
			"BTC price: %d %s\nBTC %s offers:\n%s\n",
			refPrice.Price,
			strings.ToUpper(fiat),
			direction,
			result.Table,
		)

		return
	}

	writeJSON(w, http.StatusOK, &OffersResponse{
		Fiat:      fiat,
		Direction: direction.String(),
		Price:     refPrice.Price,
		Degraded:  refPrice.Degraded,
		Truncated: result.Truncated,
		Offers:    result.Offers,
		Table:     result.Table,
	})
}

// parseFiat validates the lower-case ISO-like fiat code
func parseFiat(v string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", errors.New("invalid fiat code (must be 3 letters)")
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return "", errors.New("invalid fiat code (must be a-z)")
		}
	}

	return s, nil
}

func parseFormat(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatText:
		return formatText, nil
	default:
		return "", errInvalidFormat
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
