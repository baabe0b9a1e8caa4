package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"github.com/frangb/nokycbot/exchange/types"
)

// TableBudget caps the rendered table so the result fits a single
// message-sized payload
const TableBudget = 3800

var ErrInvalidPremium = errors.New("invalid premium filter")

// Premium is the caller's price deviation threshold
type Premium struct {
	limit int
	all   bool
}

// AllOffers is the premium filter that admits every offer
var AllOffers = Premium{all: true}

// NewPremium creates a premium filter with the given signed
// percentage threshold
func NewPremium(limit int) Premium {
	return Premium{limit: limit}
}

// ParsePremium parses the raw premium filter: "alloffers",
// or a string-encoded signed integer percentage
func ParsePremium(raw string) (Premium, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))

	if raw == "alloffers" {
		return AllOffers, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return Premium{}, ErrInvalidPremium
	}

	return NewPremium(limit), nil
}

// Matches checks the offer deviation against the threshold.
// Buyers keep offers above it, sellers offers below it; both
// directions compare against the same signed threshold
func (p Premium) Matches(direction types.Direction, deviation float64) bool {
	if p.all {
		return true
	}

	if direction == types.DirectionBuy {
		return deviation > float64(p.limit)
	}

	return deviation < float64(p.limit)
}

// Result is a rendered offer table
type Result struct {
	Table     string         `json:"table"`
	Offers    []*types.Offer `json:"offers"`    // the included offers, in table order
	Truncated bool           `json:"truncated"` // the table budget cut processing short
}

// Renderer filters an ordered offer list and renders it as a table
type Renderer struct {
	excluded map[string]struct{}
}

// NewRenderer creates a new offer renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		excluded: make(map[string]struct{}),
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render walks the already-sorted offers in order, skipping excluded
// payment methods and offers outside the premium threshold, and stops
// outright once the rendered table exceeds the budget
func (r *Renderer) Render(
	direction types.Direction,
	premium Premium,
	offers []*types.Offer,
) *Result {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Exchange", "Price", "Dif", "Min", "Max", "Method"})

	var (
		included  = make([]*types.Offer, 0, len(offers))
		truncated bool
	)

	for _, offer := range offers {
		if _, skip := r.excluded[strings.ToLower(offer.Method)]; skip {
			continue
		}

		if !premium.Matches(direction, offer.Deviation) {
			continue
		}

		t.AppendRow(table.Row{
			offer.Exchange.String(),
			offer.Price,
			fmt.Sprintf("%.1f%%", offer.Deviation),
			offer.MinAmount,
			offer.MaxAmount,
			offer.Method,
		})

		included = append(included, offer)

		// Hard stop, not a scan for smaller rows
		if len(t.Render()) > TableBudget {
			truncated = true

			break
		}
	}

	return &Result{
		Table:     t.Render(),
		Offers:    included,
		Truncated: truncated,
	}
}

type Option func(r *Renderer)

// WithExcludedMethods specifies the payment methods to drop from
// the output, matched case-insensitively
func WithExcludedMethods(methods []string) Option {
	return func(r *Renderer) {
		r.excluded = lo.SliceToMap(
			methods,
			func(method string) (string, struct{}) {
				return strings.ToLower(method), struct{}{}
			},
		)
	}
}
