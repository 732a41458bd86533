package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestDocumentProvider_GetDocuments(t *testing.T) {
	db, mock := newMockDB(t)
	provider := NewDocumentProvider(db)

	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT d\.id, d\.title`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "impact_tier", "impact_score", "created_at",
			"event_type", "event_categories", "mentions",
			"source_id", "source_name", "trust_level",
		}).AddRow(
			"doc-1", "GTX beats guidance", "GOLD", 82.0, created,
			"earnings", pq.StringArray{}, pq.StringArray{"c-gtx"},
			"src-1", "WireCo", 9,
		))

	mock.ExpectQuery(`SELECT da\.document_id`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"document_id", "instrument_id", "ticker", "sector", "direction", "magnitude",
		}).AddRow("doc-1", "i-gtx", "GTX", "semiconductors", "UP", "HIGH"))

	docs, err := provider.GetDocuments(context.Background(), []string{"doc-1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, domain.TierGold, doc.ImpactTier)
	assert.Equal(t, 9, doc.Source.TrustLevel)
	require.Len(t, doc.Affects, 1)
	assert.Equal(t, "GTX", doc.Affects[0].Ticker)
	assert.Equal(t, "semiconductors", doc.Affects[0].Sector)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentProvider_EmptyIDs(t *testing.T) {
	db, _ := newMockDB(t)
	provider := NewDocumentProvider(db)

	docs, err := provider.GetDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestClientProvider_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	provider := NewClientProvider(db)

	mock.ExpectQuery(`SELECT c\.id`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := provider.GetClient(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrClientNotFound))
}

func TestGraphStore_RespectsMaxHops(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGraphStore(db)

	cols := []string{"document_id", "instrument_id", "ticker", "hop_distance", "path_label", "beta", "origin"}

	// maxHops=0 runs only the direct arm.
	mock.ExpectQuery(`'direct' AS path_label`).
		WithArgs("c-1", 25).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("doc-1", "i-gtx", "GTX", 0, "direct", 0.0, "GTX"))

	hits, err := store.Traverse(context.Background(), "c-1", 0, 25)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.PathDirect, hits[0].Path)
	assert.Equal(t, 0, hits[0].HopDistance)

	require.NoError(t, mock.ExpectationsWereMet())
}
