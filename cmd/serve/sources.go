package serve

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frangb/nokycbot/aggregate"
	"github.com/frangb/nokycbot/exchange/bisq"
	"github.com/frangb/nokycbot/exchange/hodlhodl"
	"github.com/frangb/nokycbot/exchange/robosats"
	"github.com/frangb/nokycbot/transport"
)

// newUpstreamClient creates the shared upstream HTTP client,
// Tor-proxied when a proxy address is set
func newUpstreamClient(torProxy string, timeout time.Duration) (*http.Client, error) {
	if torProxy == "" {
		return transport.NewClient(timeout), nil
	}

	return transport.NewTorClient(torProxy, timeout)
}

// defaultSources wires the default venue adapters over the shared client.
// The Bisq client doubles as the reference price source
func defaultSources(client *http.Client, logger *slog.Logger) (*bisq.Client, []aggregate.Source) {
	bisqClient := bisq.NewClient(
		client,
		bisq.WithLogger(logger),
	)

	sources := []aggregate.Source{
		bisqClient,
		hodlhodl.NewClient(
			client,
			hodlhodl.WithLogger(logger),
		),
		robosats.NewClient(
			client,
			robosats.WithLogger(logger),
		),
	}

	return bisqClient, sources
}
