// Package cached wraps store providers with Redis read-through caches.
// Only immutable data is eligible: document metadata never changes after
// ingest and short-lived vector results are keyed by the query embedding.
// Client, portfolio and watchlist data must never pass through here.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

const docKeyPrefix = "feediq:doc:"

// DocumentProvider serves document metadata through Redis, falling back to
// the inner provider on miss. Cache failures degrade to the inner provider,
// never to a request failure.
type DocumentProvider struct {
	inner stores.DocumentProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewDocumentProvider(inner stores.DocumentProvider, rdb *redis.Client, ttl time.Duration) *DocumentProvider {
	return &DocumentProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (p *DocumentProvider) GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + id
	}

	docs := make([]domain.Document, 0, len(ids))
	var misses []string

	cached, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		log.Warn().Err(err).Msg("document cache unavailable, falling back to store")
		return p.inner.GetDocuments(ctx, ids)
	}

	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var doc domain.Document
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		docs = append(docs, doc)
	}

	if len(misses) == 0 {
		return docs, nil
	}

	fetched, err := p.inner.GetDocuments(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := p.rdb.Pipeline()
	for _, doc := range fetched {
		if raw, err := json.Marshal(doc); err == nil {
			pipe.Set(ctx, docKeyPrefix+doc.ID, raw, p.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("document cache write failed")
	}

	return append(docs, fetched...), nil
}
