package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/frangb/nokycbot/exchange/types"
)

const namespace = "nokycbot"

// Metrics tracks the offer pipeline's operational counters.
// A nil *Metrics is a valid no-op instance
type Metrics struct {
	queries        prometheus.Counter
	fetchFailures  *prometheus.CounterVec
	degradedPrices prometheus.Counter
}

// New creates the pipeline metrics and registers them with the
// given registerer
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of offer aggregation queries",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Total number of failed adapter fetches, per exchange",
		}, []string{"exchange"}),
		degradedPrices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_price_resolutions_total",
			Help:      "Total number of queries served with the fallback reference price",
		}),
	}

	reg.MustRegister(m.queries, m.fetchFailures, m.degradedPrices)

	return m
}

// QueryStarted marks the start of an aggregation query
func (m *Metrics) QueryStarted() {
	if m == nil {
		return
	}

	m.queries.Inc()
}

// FetchFailed marks a failed adapter fetch
func (m *Metrics) FetchFailed(exchange types.Exchange) {
	if m == nil {
		return
	}

	m.fetchFailures.WithLabelValues(exchange.String()).Inc()
}

// PriceDegraded marks a query served with the fallback reference price
func (m *Metrics) PriceDegraded() {
	if m == nil {
		return
	}

	m.degradedPrices.Inc()
}
