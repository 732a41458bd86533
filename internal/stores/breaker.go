package stores

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerSettings tunes the circuit breakers wrapped around store adapters.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func newBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker {
	failures := s.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("store circuit breaker state change")
		},
	})
}

// BreakerGraphStore short-circuits a flapping graph store so degraded-mode
// requests stop burning the per-source timeout.
type BreakerGraphStore struct {
	inner GraphStore
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerGraphStore(inner GraphStore, s BreakerSettings) *BreakerGraphStore {
	return &BreakerGraphStore{inner: inner, cb: newBreaker("graph", s)}
}

func (b *BreakerGraphStore) Traverse(ctx context.Context, clientID string, maxHops, maxFanout int) ([]GraphHit, error) {
	hits, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Traverse(ctx, clientID, maxHops, maxFanout)
	})
	if err != nil {
		return nil, err
	}
	return hits.([]GraphHit), nil
}

// BreakerVectorStore is the vector-store counterpart of BreakerGraphStore.
type BreakerVectorStore struct {
	inner VectorStore
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerVectorStore(inner VectorStore, s BreakerSettings) *BreakerVectorStore {
	return &BreakerVectorStore{inner: inner, cb: newBreaker("vector", s)}
}

func (b *BreakerVectorStore) SimilaritySearch(ctx context.Context, embedding []float64, topN int) ([]VectorHit, error) {
	hits, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.SimilaritySearch(ctx, embedding, topN)
	})
	if err != nil {
		return nil, err
	}
	return hits.([]VectorHit), nil
}
