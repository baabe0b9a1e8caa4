package query

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/frangb/nokycbot/aggregate"
	"github.com/frangb/nokycbot/cmd/env"
	"github.com/frangb/nokycbot/exchange/bisq"
	"github.com/frangb/nokycbot/exchange/hodlhodl"
	"github.com/frangb/nokycbot/exchange/robosats"
	"github.com/frangb/nokycbot/exchange/types"
	"github.com/frangb/nokycbot/pricefeed"
	"github.com/frangb/nokycbot/render"
	"github.com/frangb/nokycbot/transport"
)

// queryCfg wraps the one-shot query configuration
type queryCfg struct {
	fiat      string
	direction string
	exchange  string
	premium   string
	torProxy  string
	avoid     string
	timeout   time.Duration
}

// NewQueryCmd creates the query subcommand
func NewQueryCmd() *ffcli.Command {
	cfg := &queryCfg{}

	fs := flag.NewFlagSet("query", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "query",
		ShortUsage: "query [flags]",
		LongHelp:   "Runs a one-shot offer aggregation query and prints the table",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *queryCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.fiat,
		"fiat",
		"eur",
		"the fiat currency code to trade against",
	)

	fs.StringVar(
		&c.direction,
		"direction",
		"buy",
		"the desired trade side (buy | sell)",
	)

	fs.StringVar(
		&c.exchange,
		"exchange",
		"all",
		"the venue selection (all | bisq | hodlhodl | robosats)",
	)

	fs.StringVar(
		&c.premium,
		"premium",
		"alloffers",
		"the premium filter (alloffers, or a signed integer percentage)",
	)

	fs.StringVar(
		&c.torProxy,
		"tor",
		"",
		"the IP:PORT of the local SOCKS5 Tor proxy, if any",
	)

	fs.StringVar(
		&c.avoid,
		"avoid",
		"",
		"comma-separated payment methods to exclude from the output",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		transport.DefaultTimeout,
		"the per-call upstream timeout",
	)
}

func (c *queryCfg) exec(ctx context.Context, _ []string) error {
	// Keep the table output clean, diagnostics go to stderr
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelWarn,
		}),
	)

	direction, err := types.ParseDirection(c.direction)
	if err != nil {
		return fmt.Errorf("unable to parse direction, %w", err)
	}

	selection, err := aggregate.ParseSelection(c.exchange)
	if err != nil {
		return fmt.Errorf("unable to parse exchange selection, %w", err)
	}

	premium, err := render.ParsePremium(c.premium)
	if err != nil {
		return fmt.Errorf("unable to parse premium filter, %w", err)
	}

	// Create the shared upstream client
	client := transport.NewClient(c.timeout)

	if c.torProxy != "" {
		client, err = transport.NewTorClient(c.torProxy, c.timeout)
		if err != nil {
			return fmt.Errorf("unable to create Tor client, %w", err)
		}
	}

	// Wire the venue adapters and the aggregation pipeline
	bisqClient := bisq.NewClient(client, bisq.WithLogger(logger))

	sources := []aggregate.Source{
		bisqClient,
		hodlhodl.NewClient(client, hodlhodl.WithLogger(logger)),
		robosats.NewClient(client, robosats.WithLogger(logger)),
	}

	aggregator := aggregate.New(
		pricefeed.NewResolver(bisqClient, pricefeed.WithLogger(logger)),
		sources,
		aggregate.WithLogger(logger),
	)

	renderer := render.NewRenderer(
		render.WithExcludedMethods(splitAvoid(c.avoid)),
	)

	fiat := strings.ToLower(strings.TrimSpace(c.fiat))

	// Run the query pipeline
	refPrice, offers := aggregator.Aggregate(ctx, fiat, direction, selection)
	result := renderer.Render(direction, premium, offers)

	fmt.Printf(
		"BTC price: %d %s\nBTC %s offers:\n%s\n",
		refPrice.Price,
		strings.ToUpper(fiat),
		direction,
		result.Table,
	)

	return nil
}

// splitAvoid parses the comma-separated method exclusion list
func splitAvoid(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")

	methods := make([]string, 0, len(parts))
	for _, part := range parts {
		if method := strings.TrimSpace(part); method != "" {
			methods = append(methods, method)
		}
	}

	return methods
}
