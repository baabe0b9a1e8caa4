package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultTimeout bounds every upstream call; a timed-out call is an
// ordinary adapter failure, never retried
const DefaultTimeout = 30 * time.Second

var errNoContextDialer = errors.New("proxy dialer does not support context dialing")

// NewClient creates the shared upstream HTTP client.
// The client is stateless and safe for concurrent use across adapters
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
	}
}

// NewTorClient creates an upstream HTTP client that routes all calls
// through the given SOCKS5 proxy (a local Tor daemon, typically),
// required for onion-only venues
func NewTorClient(proxyAddr string, timeout time.Duration) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("unable to create SOCKS5 dialer: %w", err)
	}

	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, errNoContextDialer
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: contextDialer.DialContext,
		},
	}, nil
}
