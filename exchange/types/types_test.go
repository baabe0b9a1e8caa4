package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes_ParseDirection(t *testing.T) {
	t.Parallel()

	t.Run("valid directions", func(t *testing.T) {
		t.Parallel()

		testTable := []struct {
			raw      string
			expected Direction
		}{
			{"buy", DirectionBuy},
			{"sell", DirectionSell},
			{"BUY", DirectionBuy},
			{" sell ", DirectionSell},
		}

		for _, testCase := range testTable {
			direction, err := ParseDirection(testCase.raw)

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, direction)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		t.Parallel()

		_, err := ParseDirection("long")

		assert.ErrorIs(t, err, ErrInvalidDirection)
	})
}

func TestTypes_DeviationPct(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		price    int
		refPrice int
		expected float64
	}{
		{"at reference", 20000, 20000, 0},
		{"above reference", 21000, 20000, 5},
		{"below reference", 19000, 20000, -5},
		{"degraded reference", 100, 1, 9900},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(
				t,
				testCase.expected,
				DeviationPct(testCase.price, testCase.refPrice),
				0.0001,
			)
		})
	}
}

func TestTypes_CanonicalMethod(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		method   string
		expected string
	}{
		{"plain SEPA", "SEPA", "SEPA"},
		{"instant SEPA", "Instant SEPA", "SEPA"},
		{"SEPA bank transfer", "SEPA bank transfer", "SEPA"},
		{"national bank", "Any national bank", "NATIONAL_BANK"},
		{"passthrough", "Revolut", "Revolut"},
		{"empty", "", ""},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, CanonicalMethod(testCase.method))
		})
	}
}

func TestTypes_SortByPrice(t *testing.T) {
	t.Parallel()

	newOffers := func() []*Offer {
		return []*Offer{
			{Price: 100},
			{Price: 300},
			{Price: 200},
		}
	}

	t.Run("ascending", func(t *testing.T) {
		t.Parallel()

		offers := newOffers()
		SortByPrice(offers, false)

		prices := make([]int, 0, len(offers))
		for _, offer := range offers {
			prices = append(prices, offer.Price)
		}

		assert.Equal(t, []int{100, 200, 300}, prices)
	})

	t.Run("descending", func(t *testing.T) {
		t.Parallel()

		offers := newOffers()
		SortByPrice(offers, true)

		prices := make([]int, 0, len(offers))
		for _, offer := range offers {
			prices = append(prices, offer.Price)
		}

		assert.Equal(t, []int{300, 200, 100}, prices)
	})
}
