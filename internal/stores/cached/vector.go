package cached

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

// VectorStore memoizes similarity searches for a short TTL. Identical mandate
// embeddings are queried on every feed refresh, so even a small window cuts
// most index traffic. The TTL must stay short enough that newly ingested
// documents surface promptly.
type VectorStore struct {
	inner stores.VectorStore
	rdb   *redis.Client
	ttl   time.Duration
}

func NewVectorStore(inner stores.VectorStore, rdb *redis.Client, ttl time.Duration) *VectorStore {
	return &VectorStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (v *VectorStore) SimilaritySearch(ctx context.Context, embedding []float64, topN int) ([]stores.VectorHit, error) {
	key := vectorKey(embedding, topN)

	if raw, err := v.rdb.Get(ctx, key).Result(); err == nil {
		var hits []stores.VectorHit
		if err := json.Unmarshal([]byte(raw), &hits); err == nil {
			return hits, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("vector cache unavailable")
	}

	hits, err := v.inner.SimilaritySearch(ctx, embedding, topN)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(hits); err == nil {
		if err := v.rdb.Set(ctx, key, raw, v.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("vector cache write failed")
		}
	}
	return hits, nil
}

func vectorKey(embedding []float64, topN int) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, f := range embedding {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		h.Write(buf)
	}
	return fmt.Sprintf("feediq:vec:%x:%d", h.Sum(nil)[:12], topN)
}
