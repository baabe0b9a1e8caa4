package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/frangb/nokycbot/aggregate"
	"github.com/frangb/nokycbot/cmd/env"
	"github.com/frangb/nokycbot/metrics"
	"github.com/frangb/nokycbot/pricefeed"
	"github.com/frangb/nokycbot/render"
	"github.com/frangb/nokycbot/server"
	"github.com/frangb/nokycbot/server/config"
	"github.com/frangb/nokycbot/transport"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath string
	timeout    time.Duration
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		LongHelp:   "Serves the offer aggregation backend",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.config.TorProxy,
		"tor",
		"",
		"the IP:PORT of the local SOCKS5 Tor proxy, if any",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		transport.DefaultTimeout,
		"the per-call upstream timeout",
	)
}

func (c *serveCfg) exec(ctx context.Context, _ []string) error {
	// Read the server configuration, if any
	if c.configPath != "" {
		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config, %w", err)
		}

		c.config = serverCfg
	}

	logger := slog.New(tint.NewHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// Create the shared upstream client
	client, err := newUpstreamClient(c.config.TorProxy, c.timeout)
	if err != nil {
		return fmt.Errorf("unable to create upstream client, %w", err)
	}

	if c.config.TorProxy == "" {
		logger.Warn("no Tor proxy configured, onion-only venues will be unreachable")
	}

	// Set up the pipeline metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Wire the venue adapters and the aggregation pipeline
	bisqClient, sources := defaultSources(client, logger)

	resolver := pricefeed.NewResolver(
		bisqClient,
		pricefeed.WithLogger(logger),
	)

	aggregator := aggregate.New(
		resolver,
		sources,
		aggregate.WithLogger(logger),
		aggregate.WithMetrics(m),
	)

	renderer := render.NewRenderer(
		render.WithExcludedMethods(c.config.AvoidMethods),
	)

	s, err := server.New(
		aggregator,
		renderer,
		server.WithLogger(logger),
		server.WithConfig(c.config),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	// Expose the pipeline metrics
	s.Routes(func(router chi.Router) {
		router.Method(
			http.MethodGet,
			"/metrics",
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		)
	})

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		return s.Serve(gCtx)
	})

	return group.Wait()
}
