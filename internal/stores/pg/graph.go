// Package pg implements the store contracts against Postgres using sqlx.
// Graph traversal runs as bounded per-arm queries rather than an unbounded
// recursive walk, so fan-out caps apply to every arm independently and
// relationship cycles (A competes with B competes with A) cannot loop.
package pg

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

type GraphStore struct {
	db *sqlx.DB
}

func NewGraphStore(db *sqlx.DB) *GraphStore {
	return &GraphStore{db: db}
}

// memberInstruments selects the client's current holdings and watchlist.
// Always read fresh: a trade executed a millisecond ago must shape this
// traversal.
const memberInstruments = `
	SELECT instrument_id, ticker FROM portfolio_holdings WHERE client_id = $1
	UNION
	SELECT instrument_id, ticker FROM watchlist_entries WHERE client_id = $1`

// Each traversal arm is one bounded query. hop 0 = direct AFFECTS,
// hop 1 = SUPPLIES_TO / SUPPLIED_BY, hop 2 = COMPETES_WITH,
// factor = EXPOSED_TO carrying the beta weight.
const directArm = `
	WITH members AS (` + memberInstruments + `)
	SELECT da.document_id, m.instrument_id, m.ticker,
	       0 AS hop_distance, 'direct' AS path_label, 0.0 AS beta,
	       m.ticker AS origin
	FROM members m
	JOIN document_affects da ON da.instrument_id = m.instrument_id
	ORDER BY da.created_at DESC
	LIMIT $2`

const supplyArm = `
	WITH members AS (` + memberInstruments + `)
	SELECT da.document_id, i.id AS instrument_id, i.ticker,
	       1 AS hop_distance, 'supply-chain' AS path_label, 0.0 AS beta,
	       m.ticker AS origin
	FROM members m
	JOIN supply_edges se ON se.supplier_id = m.instrument_id OR se.customer_id = m.instrument_id
	JOIN instruments i ON i.id = CASE
	       WHEN se.supplier_id = m.instrument_id THEN se.customer_id
	       ELSE se.supplier_id END
	JOIN document_affects da ON da.instrument_id = i.id
	ORDER BY da.created_at DESC
	LIMIT $2`

const competitorArm = `
	WITH members AS (` + memberInstruments + `)
	SELECT da.document_id, i.id AS instrument_id, i.ticker,
	       2 AS hop_distance, 'competitor' AS path_label, 0.0 AS beta,
	       m.ticker AS origin
	FROM members m
	JOIN compete_edges ce ON ce.a_id = m.instrument_id OR ce.b_id = m.instrument_id
	JOIN instruments i ON i.id = CASE
	       WHEN ce.a_id = m.instrument_id THEN ce.b_id
	       ELSE ce.a_id END
	JOIN document_affects da ON da.instrument_id = i.id
	WHERE i.id != m.instrument_id
	ORDER BY da.created_at DESC
	LIMIT $2`

const factorArm = `
	WITH members AS (` + memberInstruments + `)
	SELECT da.document_id, i.id AS instrument_id, i.ticker,
	       1 AS hop_distance, 'factor' AS path_label, fe2.beta,
	       m.ticker AS origin
	FROM members m
	JOIN factor_exposures fe ON fe.instrument_id = m.instrument_id
	JOIN factor_exposures fe2 ON fe2.factor_id = fe.factor_id
	JOIN instruments i ON i.id = fe2.instrument_id
	JOIN document_affects da ON da.instrument_id = i.id
	WHERE i.id != m.instrument_id
	ORDER BY ABS(fe2.beta) DESC, da.created_at DESC
	LIMIT $2`

// Traverse walks the relationship graph from the client's current holdings
// and watchlist, one bounded query per arm. Hop labels and distances ride on
// each hit so the scorer can apply per-hop penalties.
func (g *GraphStore) Traverse(ctx context.Context, clientID string, maxHops, maxFanout int) ([]stores.GraphHit, error) {
	arms := []struct {
		name    string
		query   string
		minHops int
	}{
		{"direct", directArm, 0},
		{"supply", supplyArm, 1},
		{"factor", factorArm, 1},
		{"competitor", competitorArm, 2},
	}

	var hits []stores.GraphHit
	for _, arm := range arms {
		if maxHops < arm.minHops {
			continue
		}
		var armHits []stores.GraphHit
		if err := g.db.SelectContext(ctx, &armHits, arm.query, clientID, maxFanout); err != nil {
			return nil, fmt.Errorf("graph traversal %s arm: %w", arm.name, err)
		}
		hits = append(hits, armHits...)
	}
	return hits, nil
}
