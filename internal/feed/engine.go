package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parrisma/gofr-iq-sub004/internal/config"
	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/stores"
	"github.com/parrisma/gofr-iq-sub004/internal/telemetry/metrics"
)

// Request is a single feed query. Limit 0 selects the configured default;
// values above the configured maximum are clamped.
//
// Query is the raw query text, carried for logging only. Text-to-embedding
// resolution is an ingest-side concern; generation consumes QueryEmbedding
// (falling back to the client's mandate embedding when absent).
type Request struct {
	ClientID       string
	Query          string
	QueryEmbedding []float64
	Limit          int
	Channel        string
}

// Engine orchestrates one stateless feed request: fresh client fetch,
// concurrent candidate generation, trust/policy filtering, scoring,
// classification and assembly.
type Engine struct {
	clients stores.ClientProvider
	gen     *Generator
	scorer  *Scorer
	cfg     *config.Config
	metrics *metrics.Registry
}

func NewEngine(clients stores.ClientProvider, gen *Generator, scorer *Scorer, cfg *config.Config, m *metrics.Registry) *Engine {
	return &Engine{clients: clients, gen: gen, scorer: scorer, cfg: cfg, metrics: m}
}

// GetFeed produces a ranked, deduplicated, trust-gated feed for one client.
// An empty item list is a valid terminal state, not an error.
func (e *Engine) GetFeed(ctx context.Context, req Request) (*domain.FeedResponse, error) {
	limit, filter, err := e.validate(req)
	if err != nil {
		e.metrics.ObserveRequest("invalid")
		return nil, err
	}

	// Always fetched fresh: a portfolio mutation must be visible to the
	// very next feed call.
	client, err := e.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		e.metrics.ObserveRequest("client_error")
		return nil, err
	}

	set, err := e.gen.Generate(ctx, client, req.QueryEmbedding, limit)
	if err != nil {
		e.metrics.ObserveRequest("generation_error")
		return nil, err
	}
	if set.Degraded {
		e.metrics.ObserveDegraded()
	}
	e.metrics.ObserveCandidates(len(set.Candidates))

	filtered := ApplyTrustPolicy(client, set.Candidates)
	scored := e.scorer.ScoreAll(client, filtered)

	classified, err := Classify(client, scored)
	if err != nil {
		// Invariant violation, not a runtime condition. Surfaced, never
		// suppressed.
		e.metrics.ObserveRequest("internal_error")
		return nil, fmt.Errorf("channel classification: %w", err)
	}

	items := Assemble(client, classified, limit, filter)

	counts := map[domain.Channel]int{}
	for _, item := range items {
		counts[item.Channel]++
	}
	e.metrics.ObserveChannelItems(string(domain.ChannelMaintenance), counts[domain.ChannelMaintenance])
	e.metrics.ObserveChannelItems(string(domain.ChannelOpportunity), counts[domain.ChannelOpportunity])
	e.metrics.ObserveRequest("ok")

	log.Debug().
		Str("client", client.ID).
		Str("query", req.Query).
		Int("considered", len(set.Candidates)).
		Int("after_filter", len(filtered)).
		Int("returned", len(items)).
		Bool("degraded", set.Degraded).
		Msg("feed assembled")

	return &domain.FeedResponse{
		ClientID:                  client.ID,
		Items:                     items,
		TotalCandidatesConsidered: len(set.Candidates),
		TotalAfterFilter:          len(filtered),
		Degraded:                  set.Degraded,
		GeneratedAt:               time.Now().UTC(),
	}, nil
}

// validate rejects malformed input before any store is queried.
func (e *Engine) validate(req Request) (int, ChannelFilter, error) {
	if req.ClientID == "" {
		return 0, 0, fmt.Errorf("%w: missing client id", domain.ErrInvalidRequest)
	}

	limit := req.Limit
	switch {
	case limit < 0:
		return 0, 0, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidRequest)
	case limit == 0:
		limit = e.cfg.Feed.DefaultLimit
	case limit > e.cfg.Feed.MaxLimit:
		limit = e.cfg.Feed.MaxLimit
	}

	filter, err := ParseChannelFilter(req.Channel)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return limit, filter, nil
}
