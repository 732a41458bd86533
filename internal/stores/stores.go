// Package stores defines the collaborator contracts the feed engine consumes.
// The graph and vector stores are external services; adapters implementing
// these interfaces live in subpackages.
package stores

import (
	"context"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// GraphHit is one document reached by graph traversal from a client's
// holdings or watchlist.
type GraphHit struct {
	DocumentID   string           `db:"document_id"`
	InstrumentID string           `db:"instrument_id"`
	Ticker       string           `db:"ticker"`
	HopDistance  int              `db:"hop_distance"`
	Path         domain.PathLabel `db:"path_label"`
	Beta         float64          `db:"beta"`   // factor exposure weight, 0 unless Path == factor
	Origin       string           `db:"origin"` // holding/watchlist ticker that seeded the walk
}

// GraphStore executes multi-hop traversal queries. Implementations must
// fetch portfolio and watchlist membership fresh on every call; caching
// membership across requests is forbidden.
type GraphStore interface {
	Traverse(ctx context.Context, clientID string, maxHops, maxFanout int) ([]GraphHit, error)
}

// VectorHit is one nearest-neighbor result from the document embedding index.
type VectorHit struct {
	DocumentID string
	Similarity float64 // [0,1]
}

// VectorStore executes nearest-neighbor similarity queries.
type VectorStore interface {
	SimilaritySearch(ctx context.Context, embedding []float64, topN int) ([]VectorHit, error)
}

// DocumentProvider batch-fetches document metadata. Implementations must
// resolve all ids in one round trip; the engine never fetches per-document.
type DocumentProvider interface {
	GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error)
}

// ClientProvider fetches a client including portfolio, watchlist, mandate
// and IPS. Results must never be cached: a portfolio mutation has to be
// visible to the very next feed request.
type ClientProvider interface {
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
}
