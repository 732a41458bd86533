package feed

import (
	"math"
	"time"

	"github.com/parrisma/gofr-iq-sub004/internal/config"
	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// ScoredCandidate carries a candidate's final relevance score plus the
// per-signal parts for explainability.
type ScoredCandidate struct {
	*Candidate
	Score      float64
	Parts      map[string]float64
	ThemeScore float64
}

// Scorer computes relevance as a weighted sum of four normalized sub-scores:
// semantic similarity, graph proximity, source trust and impact-weighted
// recency. Weights and the per-tier decay table come from validated config,
// never ambient globals.
type Scorer struct {
	cfg    config.ScoringConfig
	themes ThemeMatcher
	now    func() time.Time
}

func NewScorer(cfg config.ScoringConfig, themes ThemeMatcher) *Scorer {
	return &Scorer{cfg: cfg, themes: themes, now: time.Now}
}

// ScoreAll scores every candidate. Input order is preserved; ranking happens
// at assembly.
func (s *Scorer) ScoreAll(client *domain.Client, cands []*Candidate) []ScoredCandidate {
	now := s.now()
	out := make([]ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, s.score(client, c, now))
	}
	return out
}

func (s *Scorer) score(client *domain.Client, c *Candidate, now time.Time) ScoredCandidate {
	semantic := c.Similarity
	graph := s.graphScore(c)
	trust := float64(c.Doc.Source.TrustLevel) / 10.0
	recency := s.recencyScore(&c.Doc, now)

	w := s.cfg.Weights
	base := w.Semantic*semantic + w.Trust*trust + w.Recency*recency + w.Graph*graph

	theme := s.themes.MatchThemes(&c.Doc, client.IPS.Themes)
	final := base + s.cfg.ThemeBonus*theme
	if final > 1.0 {
		final = 1.0
	}

	return ScoredCandidate{
		Candidate: c,
		Score:     final,
		Parts: map[string]float64{
			"semantic": semantic,
			"graph":    graph,
			"trust":    trust,
			"recency":  recency,
			"theme":    theme,
		},
		ThemeScore: theme,
	}
}

// graphScore maps hop distance to a per-hop penalty. Factor-exposure hits are
// additionally scaled by |beta|, capped at 1.0. Semantic-only candidates
// score zero here.
func (s *Scorer) graphScore(c *Candidate) float64 {
	if c.Graph == nil {
		return 0
	}
	score := s.cfg.HopPenalty(c.Graph.HopDistance)
	if c.Graph.Path == domain.PathFactor {
		beta := math.Abs(c.Graph.Beta)
		if beta > 1.0 {
			beta = 1.0
		}
		score *= beta
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// recencyScore is impact_score/100 dampened by an exponential decay whose
// rate is the document's impact-tier bucket. Higher tiers decay slower, so
// a PLATINUM item outlives a STANDARD one of equal impact.
func (s *Scorer) recencyScore(doc *domain.Document, now time.Time) float64 {
	rate := s.cfg.DecayRate(doc.ImpactTier)
	hours := hoursSince(now, doc.CreatedAt)
	return (doc.ImpactScore / 100.0) * math.Exp(-rate*hours)
}
