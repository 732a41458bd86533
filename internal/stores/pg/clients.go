package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

type ClientProvider struct {
	db *sqlx.DB
}

func NewClientProvider(db *sqlx.DB) *ClientProvider {
	return &ClientProvider{db: db}
}

type clientRow struct {
	ID               string          `db:"id"`
	Groups           pq.StringArray  `db:"groups"`
	MandateText      string          `db:"mandate_text"`
	MandateEmbedding pq.Float64Array `db:"mandate_embedding"`
	MinTrust         int             `db:"min_trust"`
	RiskTier         string          `db:"risk_tier"`
	ExcludedSectors  pq.StringArray  `db:"excluded_sectors"`
	ESGExclusions    pq.StringArray  `db:"esg_exclusions"`
	Themes           pq.StringArray  `db:"themes"`
}

const clientQuery = `
	SELECT c.id, c.groups, c.mandate_text, c.mandate_embedding,
	       c.min_trust, c.risk_tier,
	       i.excluded_sectors, i.esg_exclusions, i.themes
	FROM clients c
	JOIN client_ips i ON i.client_id = c.id
	WHERE c.id = $1`

const holdingsQuery = `
	SELECT h.instrument_id, i.ticker, h.weight, h.sentiment
	FROM portfolio_holdings h
	JOIN instruments i ON i.id = h.instrument_id
	WHERE h.client_id = $1`

const watchlistQuery = `
	SELECT i.ticker
	FROM watchlist_entries w
	JOIN instruments i ON i.id = w.instrument_id
	WHERE w.client_id = $1`

// GetClient fetches the client plus current portfolio and watchlist. This is
// deliberately uncached: the product requirement is that a portfolio change
// is reflected in the very next feed call.
func (p *ClientProvider) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	var row clientRow
	if err := p.db.GetContext(ctx, &row, clientQuery, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrClientNotFound, clientID)
		}
		return nil, fmt.Errorf("fetching client %s: %w", clientID, err)
	}

	var holdings []domain.Holding
	if err := p.db.SelectContext(ctx, &holdings, holdingsQuery, clientID); err != nil {
		return nil, fmt.Errorf("fetching portfolio for %s: %w", clientID, err)
	}

	var watchlist []string
	if err := p.db.SelectContext(ctx, &watchlist, watchlistQuery, clientID); err != nil {
		return nil, fmt.Errorf("fetching watchlist for %s: %w", clientID, err)
	}

	return &domain.Client{
		ID:               row.ID,
		Groups:           []string(row.Groups),
		Portfolio:        holdings,
		Watchlist:        watchlist,
		MandateText:      row.MandateText,
		MandateEmbedding: []float64(row.MandateEmbedding),
		MinTrust:         row.MinTrust,
		RiskTier:         row.RiskTier,
		IPS: domain.IPS{
			ExcludedSectors: []string(row.ExcludedSectors),
			ESGExclusions:   []string(row.ESGExclusions),
			Themes:          []string(row.Themes),
		},
	}, nil
}
