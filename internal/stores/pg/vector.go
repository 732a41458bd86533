package pg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

// VectorStore runs nearest-neighbor queries against a pgvector index over
// document embeddings. Cosine distance is mapped to a [0,1] similarity.
type VectorStore struct {
	db *sqlx.DB
}

func NewVectorStore(db *sqlx.DB) *VectorStore {
	return &VectorStore{db: db}
}

const similarityQuery = `
	SELECT id AS document_id,
	       1 - (embedding <=> $1::vector) AS similarity
	FROM document_embeddings
	ORDER BY embedding <=> $1::vector
	LIMIT $2`

type vectorRow struct {
	DocumentID string  `db:"document_id"`
	Similarity float64 `db:"similarity"`
}

func (v *VectorStore) SimilaritySearch(ctx context.Context, embedding []float64, topN int) ([]stores.VectorHit, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	var rows []vectorRow
	if err := v.db.SelectContext(ctx, &rows, similarityQuery, vectorLiteral(embedding), topN); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	hits := make([]stores.VectorHit, 0, len(rows))
	for _, r := range rows {
		sim := r.Similarity
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		hits = append(hits, stores.VectorHit{DocumentID: r.DocumentID, Similarity: sim})
	}
	return hits, nil
}

// vectorLiteral renders an embedding in pgvector's input format.
func vectorLiteral(embedding []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
