// Package feed implements the hybrid relevance and feed ranking engine:
// candidate generation over graph and vector sources, trust and policy
// filtering, weighted relevance scoring, channel classification and final
// assembly.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parrisma/gofr-iq-sub004/internal/config"
	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

// Candidate is one document under consideration, with provenance from both
// discovery sources. A document reachable by graph and vector keeps its best
// signal from each; neither discards the other.
type Candidate struct {
	Doc        domain.Document
	Graph      *stores.GraphHit // best (lowest-hop) graph signal, nil if semantic-only
	Similarity float64          // best vector similarity, 0 if graph-only
}

// DiscoveredVia reports the primary discovery path: the graph path when one
// exists (it carries the stronger rationale), otherwise semantic.
func (c *Candidate) DiscoveredVia() domain.PathLabel {
	if c.Graph != nil {
		return c.Graph.Path
	}
	return domain.PathSemantic
}

// CandidateSet is the merged output of one generation pass.
type CandidateSet struct {
	Candidates []*Candidate
	Degraded   bool // true when one source failed and the other carried the request
}

// Generator fans out to the graph and vector stores concurrently and merges
// the results by document guid.
type Generator struct {
	graph  stores.GraphStore
	vector stores.VectorStore
	docs   stores.DocumentProvider
	cfg    config.CandidateConfig
}

func NewGenerator(graph stores.GraphStore, vector stores.VectorStore, docs stores.DocumentProvider, cfg config.CandidateConfig) *Generator {
	return &Generator{graph: graph, vector: vector, docs: docs, cfg: cfg}
}

type graphResult struct {
	hits []stores.GraphHit
	err  error
}

type vectorResult struct {
	hits []stores.VectorHit
	err  error
}

// Generate produces a candidate pool of roughly limit x overshoot documents.
// The two source queries run concurrently; a single source failure degrades
// to the surviving source, both failing is ErrServiceUnavailable.
func (g *Generator) Generate(ctx context.Context, client *domain.Client, queryEmbedding []float64, limit int) (*CandidateSet, error) {
	pool := limit * g.cfg.Overshoot

	embedding := queryEmbedding
	if len(embedding) == 0 {
		embedding = client.MandateEmbedding
	}

	graphCh := make(chan graphResult, 1)
	vectorCh := make(chan vectorResult, 1)

	go func() {
		qctx, cancel := g.sourceContext(ctx)
		defer cancel()
		hits, err := g.graph.Traverse(qctx, client.ID, g.cfg.MaxHops, g.cfg.MaxFanout)
		graphCh <- graphResult{hits: hits, err: err}
	}()

	go func() {
		qctx, cancel := g.sourceContext(ctx)
		defer cancel()
		if len(embedding) == 0 {
			vectorCh <- vectorResult{err: fmt.Errorf("no query or mandate embedding")}
			return
		}
		hits, err := g.vector.SimilaritySearch(qctx, embedding, pool)
		vectorCh <- vectorResult{hits: hits, err: err}
	}()

	gres := <-graphCh
	vres := <-vectorCh

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if gres.err != nil && vres.err != nil {
		return nil, fmt.Errorf("%w: graph: %v; vector: %v", domain.ErrServiceUnavailable, gres.err, vres.err)
	}

	degraded := false
	if gres.err != nil {
		degraded = true
		log.Warn().Err(gres.err).Str("client", client.ID).Msg("graph store failed, degrading to vector-only generation")
	}
	if vres.err != nil {
		degraded = true
		log.Warn().Err(vres.err).Str("client", client.ID).Msg("vector store failed, degrading to graph-only generation")
	}

	set, err := g.merge(ctx, gres.hits, vres.hits)
	if err != nil {
		return nil, err
	}
	set.Degraded = degraded
	return set, nil
}

func (g *Generator) sourceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.SourceTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.SourceTimeout)
}

// merge combines the two hit lists by document guid and resolves metadata in
// one batch fetch. For duplicate graph hits the lowest hop wins, ties going
// to the larger |beta|; for duplicate vector hits the highest similarity wins.
func (g *Generator) merge(ctx context.Context, graphHits []stores.GraphHit, vectorHits []stores.VectorHit) (*CandidateSet, error) {
	bestGraph := make(map[string]stores.GraphHit)
	similarity := make(map[string]float64)
	var order []string

	seen := func(id string) bool {
		_, inGraph := bestGraph[id]
		_, inVector := similarity[id]
		return inGraph || inVector
	}

	for _, hit := range graphHits {
		prev, ok := bestGraph[hit.DocumentID]
		if !ok {
			if !seen(hit.DocumentID) {
				order = append(order, hit.DocumentID)
			}
			bestGraph[hit.DocumentID] = hit
			continue
		}
		if hit.HopDistance < prev.HopDistance ||
			(hit.HopDistance == prev.HopDistance && abs(hit.Beta) > abs(prev.Beta)) {
			bestGraph[hit.DocumentID] = hit
		}
	}

	for _, hit := range vectorHits {
		if !seen(hit.DocumentID) {
			order = append(order, hit.DocumentID)
		}
		if hit.Similarity > similarity[hit.DocumentID] {
			similarity[hit.DocumentID] = hit.Similarity
		}
	}

	if len(order) == 0 {
		return &CandidateSet{}, nil
	}

	docs, err := g.docs.GetDocuments(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("resolving candidate documents: %w", err)
	}
	byID := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	set := &CandidateSet{Candidates: make([]*Candidate, 0, len(order))}
	for _, id := range order {
		doc, ok := byID[id]
		if !ok {
			log.Debug().Str("document", id).Msg("candidate missing metadata, dropped")
			continue
		}
		cand := &Candidate{Doc: doc, Similarity: similarity[id]}
		if hit, ok := bestGraph[id]; ok {
			h := hit
			cand.Graph = &h
		}
		set.Candidates = append(set.Candidates, cand)
	}
	return set, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// hoursSince is split out for the scorer; kept here so the package has a
// single clock seam.
func hoursSince(now, then time.Time) float64 {
	h := now.Sub(then).Hours()
	if h < 0 {
		return 0
	}
	return h
}
