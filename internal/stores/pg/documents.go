package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

type DocumentProvider struct {
	db *sqlx.DB
}

func NewDocumentProvider(db *sqlx.DB) *DocumentProvider {
	return &DocumentProvider{db: db}
}

type documentRow struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	ImpactTier      string         `db:"impact_tier"`
	ImpactScore     float64        `db:"impact_score"`
	CreatedAt       time.Time      `db:"created_at"`
	EventType       string         `db:"event_type"`
	EventCategories pq.StringArray `db:"event_categories"`
	Mentions        pq.StringArray `db:"mentions"`
	SourceID        string         `db:"source_id"`
	SourceName      string         `db:"source_name"`
	TrustLevel      int            `db:"trust_level"`
}

type affectRow struct {
	DocumentID   string `db:"document_id"`
	InstrumentID string `db:"instrument_id"`
	Ticker       string `db:"ticker"`
	Sector       string `db:"sector"`
	Direction    string `db:"direction"`
	Magnitude    string `db:"magnitude"`
}

const documentsQuery = `
	SELECT d.id, d.title, d.impact_tier, d.impact_score, d.created_at,
	       d.event_type, d.event_categories, d.mentions,
	       s.id AS source_id, s.name AS source_name, s.trust_level
	FROM documents d
	JOIN sources s ON s.id = d.source_id
	WHERE d.id IN (?)`

const affectsQuery = `
	SELECT da.document_id, da.instrument_id, i.ticker, i.sector,
	       da.direction, da.magnitude
	FROM document_affects da
	JOIN instruments i ON i.id = da.instrument_id
	WHERE da.document_id IN (?)`

// GetDocuments resolves a batch of document ids in two round trips: one for
// document+source rows, one for affect edges. Ids not present in the store
// are silently absent from the result.
func (p *DocumentProvider) GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(documentsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("building documents query: %w", err)
	}
	var rows []documentRow
	if err := p.db.SelectContext(ctx, &rows, p.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetching documents: %w", err)
	}

	query, args, err = sqlx.In(affectsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("building affects query: %w", err)
	}
	var affects []affectRow
	if err := p.db.SelectContext(ctx, &affects, p.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetching affect edges: %w", err)
	}

	edgesByDoc := make(map[string][]domain.AffectEdge, len(rows))
	for _, a := range affects {
		edgesByDoc[a.DocumentID] = append(edgesByDoc[a.DocumentID], domain.AffectEdge{
			InstrumentID: a.InstrumentID,
			Ticker:       a.Ticker,
			Sector:       a.Sector,
			Direction:    domain.Direction(a.Direction),
			Magnitude:    domain.Magnitude(a.Magnitude),
		})
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, domain.Document{
			ID:          r.ID,
			Title:       r.Title,
			ImpactTier:  domain.ImpactTier(r.ImpactTier),
			ImpactScore: r.ImpactScore,
			CreatedAt:   r.CreatedAt,
			Source: domain.Source{
				ID:         r.SourceID,
				Name:       r.SourceName,
				TrustLevel: r.TrustLevel,
			},
			Affects:         edgesByDoc[r.ID],
			Mentions:        []string(r.Mentions),
			EventType:       r.EventType,
			EventCategories: []string(r.EventCategories),
		})
	}
	return docs, nil
}
