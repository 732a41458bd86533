package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/parrisma/gofr-iq-sub004/internal/config"
	"github.com/parrisma/gofr-iq-sub004/internal/feed"
	httpapi "github.com/parrisma/gofr-iq-sub004/internal/interfaces/http"
	"github.com/parrisma/gofr-iq-sub004/internal/stores"
	"github.com/parrisma/gofr-iq-sub004/internal/stores/cached"
	"github.com/parrisma/gofr-iq-sub004/internal/stores/pg"
	"github.com/parrisma/gofr-iq-sub004/internal/telemetry/metrics"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the feed API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
			engine, cleanup, err := buildEngine(cfg, reg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := httpapi.NewServer(engine, cfg, reg)
			return server.Start(ctx)
		},
	}
}

func feedCmd() *cobra.Command {
	var (
		clientID string
		limit    int
		channel  string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Fetch one client feed and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engine, cleanup, err := buildEngine(cfg, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := engine.GetFeed(cmd.Context(), feed.Request{
				ClientID: clientID,
				Limit:    limit,
				Channel:  channel,
			})
			if err != nil {
				return err
			}

			fmt.Printf("feed for %s (%d considered, %d after filter",
				resp.ClientID, resp.TotalCandidatesConsidered, resp.TotalAfterFilter)
			if resp.Degraded {
				fmt.Printf(", degraded")
			}
			fmt.Printf(")\n")
			for i, item := range resp.Items {
				fmt.Printf("%2d. [%.3f] %-11s %-12s %s\n",
					i+1, item.RelevanceScore, item.Channel, item.DiscoveredVia, item.Title)
				if item.Rationale != "" {
					fmt.Printf("      %s\n", item.Rationale)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client", "", "client identifier (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "result limit (0 = configured default)")
	cmd.Flags().StringVar(&channel, "channel", "", "channel filter: MAINTENANCE, OPPORTUNITY or both")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func validateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate the config file, exit non-zero on violation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(configPath); err != nil {
				return err
			}
			fmt.Printf("%s: ok\n", configPath)
			return nil
		},
	}
}

// buildEngine wires the store adapters (with circuit breakers and caches)
// into a feed engine. The returned cleanup closes the DB and Redis handles.
func buildEngine(cfg *config.Config, m *metrics.Registry) (*feed.Engine, func(), error) {
	db, err := sqlx.Open("postgres", cfg.Stores.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening postgres: %w", err)
	}

	breaker := stores.BreakerSettings{
		MaxRequests:         cfg.Stores.Breaker.MaxRequests,
		Interval:            cfg.Stores.Breaker.Interval,
		Timeout:             cfg.Stores.Breaker.Timeout,
		ConsecutiveFailures: cfg.Stores.Breaker.ConsecutiveFailures,
	}

	var graph stores.GraphStore = stores.NewBreakerGraphStore(pg.NewGraphStore(db), breaker)
	var vector stores.VectorStore = stores.NewBreakerVectorStore(pg.NewVectorStore(db), breaker)
	var docs stores.DocumentProvider = pg.NewDocumentProvider(db)
	clients := pg.NewClientProvider(db)

	var rdb *redis.Client
	if cfg.Stores.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Stores.RedisAddr})
		docs = cached.NewDocumentProvider(docs, rdb, cfg.Stores.DocCacheTTL)
		vector = cached.NewVectorStore(vector, rdb, cfg.Stores.VectorCacheTTL)
	} else {
		log.Warn().Msg("no redis address configured, document cache disabled")
	}

	gen := feed.NewGenerator(graph, vector, docs, cfg.Candidates)
	scorer := feed.NewScorer(cfg.Scoring, feed.NewKeywordThemeMatcher())
	engine := feed.NewEngine(clients, gen, scorer, cfg, m)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("closing postgres")
		}
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("closing redis")
			}
		}
	}

	// Fail early if the scoring config somehow bypassed Load validation.
	if err := cfg.Validate(); err != nil {
		cleanup()
		return nil, nil, err
	}

	return engine, cleanup, nil
}
