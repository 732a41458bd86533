package domain

import (
	"fmt"
	"strings"
	"time"
)

// ImpactTier classifies a document's market significance. Tiers are ordered
// PLATINUM > GOLD > SILVER > BRONZE > STANDARD and select the document's
// time-decay bucket. The tier is assigned at ingest and never recomputed here.
type ImpactTier string

const (
	TierPlatinum ImpactTier = "PLATINUM"
	TierGold     ImpactTier = "GOLD"
	TierSilver   ImpactTier = "SILVER"
	TierBronze   ImpactTier = "BRONZE"
	TierStandard ImpactTier = "STANDARD"
)

// Tiers lists all impact tiers from most to least significant.
var Tiers = []ImpactTier{TierPlatinum, TierGold, TierSilver, TierBronze, TierStandard}

// Rank returns the tier's position in the significance ordering,
// 0 for PLATINUM through 4 for STANDARD. Unknown tiers rank after STANDARD.
func (t ImpactTier) Rank() int {
	for i, tier := range Tiers {
		if t == tier {
			return i
		}
	}
	return len(Tiers)
}

func (t ImpactTier) IsValid() bool {
	return t.Rank() < len(Tiers)
}

func ParseImpactTier(s string) (ImpactTier, error) {
	t := ImpactTier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown impact tier: %q", s)
	}
	return t, nil
}

// Channel identifies which half of the feed an item belongs to. A document
// guid appears in at most one channel per response.
type Channel string

const (
	ChannelMaintenance Channel = "MAINTENANCE"
	ChannelOpportunity Channel = "OPPORTUNITY"
)

func (c Channel) IsValid() bool {
	return c == ChannelMaintenance || c == ChannelOpportunity
}

// PathLabel records how a candidate document was discovered.
type PathLabel string

const (
	PathDirect      PathLabel = "direct"
	PathSupplyChain PathLabel = "supply-chain"
	PathCompetitor  PathLabel = "competitor"
	PathFactor      PathLabel = "factor"
	PathSemantic    PathLabel = "semantic"
)

// Direction of an affect-edge.
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// Magnitude of an affect-edge.
type Magnitude string

const (
	MagnitudeHigh   Magnitude = "HIGH"
	MagnitudeMedium Magnitude = "MEDIUM"
	MagnitudeLow    Magnitude = "LOW"
)

// Source is the publisher of a document. Trust levels run 1 (untrusted)
// to 10 (fully trusted). Immutable reference data.
type Source struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	TrustLevel int    `json:"trust_level" db:"trust_level"`
}

// AffectEdge links a document to an instrument it affects. Instrument
// attributes needed by filtering and classification (ticker, sector) are
// denormalized onto the edge so the hot path never does per-edge lookups.
type AffectEdge struct {
	InstrumentID string    `json:"instrument_id" db:"instrument_id"`
	Ticker       string    `json:"ticker" db:"ticker"`
	Sector       string    `json:"sector" db:"sector"`
	Direction    Direction `json:"direction" db:"direction"`
	Magnitude    Magnitude `json:"magnitude" db:"magnitude"`
}

// Document is an ingested news item. Immutable once ingested except for
// relationship edges added by later enrichment; this engine only reads it.
type Document struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	ImpactTier      ImpactTier   `json:"impact_tier"`
	ImpactScore     float64      `json:"impact_score"` // 0-100
	CreatedAt       time.Time    `json:"created_at"`
	Source          Source       `json:"source"`
	Affects         []AffectEdge `json:"affects"`
	Mentions        []string     `json:"mentions"` // company ids
	EventType       string       `json:"event_type"`
	EventCategories []string     `json:"event_categories"` // ESG-taggable
}

// AffectsTicker reports whether any affect-edge targets the given ticker.
func (d *Document) AffectsTicker(ticker string) bool {
	for _, e := range d.Affects {
		if e.Ticker == ticker {
			return true
		}
	}
	return false
}

// Holding is a single portfolio position.
type Holding struct {
	InstrumentID string  `json:"instrument_id" db:"instrument_id"`
	Ticker       string  `json:"ticker" db:"ticker"`
	Weight       float64 `json:"weight" db:"weight"`
	Sentiment    string  `json:"sentiment" db:"sentiment"`
}

// IPS is a client's Investment Policy Statement: hard exclusions plus
// thematic preferences. Exclusions filter, themes only boost.
type IPS struct {
	ExcludedSectors []string `json:"excluded_sectors" yaml:"excluded_sectors"`
	ESGExclusions   []string `json:"esg_exclusions" yaml:"esg_exclusions"`
	Themes          []string `json:"themes" yaml:"themes"`
}

// Client holds everything the engine needs to personalize a feed. Portfolio
// and watchlist are mutable upstream; callers must fetch a fresh copy per
// request rather than caching membership.
type Client struct {
	ID               string    `json:"id"`
	Groups           []string  `json:"groups"`
	Portfolio        []Holding `json:"portfolio"`
	Watchlist        []string  `json:"watchlist"` // tickers
	MandateText      string    `json:"mandate_text"`
	MandateEmbedding []float64 `json:"-"`
	MinTrust         int       `json:"min_trust"` // hard floor, 1-10
	RiskTier         string    `json:"risk_tier"`
	IPS              IPS       `json:"ips"`
}

// Holds reports whether the ticker is currently in the client's portfolio.
func (c *Client) Holds(ticker string) bool {
	for _, h := range c.Portfolio {
		if h.Ticker == ticker {
			return true
		}
	}
	return false
}

// Watches reports whether the ticker is on the client's watchlist.
func (c *Client) Watches(ticker string) bool {
	for _, t := range c.Watchlist {
		if t == ticker {
			return true
		}
	}
	return false
}

// FeedItem is a single ranked entry in a feed response. Derived per request,
// never persisted.
type FeedItem struct {
	DocumentGUID   string    `json:"document_guid"`
	Title          string    `json:"title"`
	Channel        Channel   `json:"channel"`
	RelevanceScore float64   `json:"relevance_score"`
	DiscoveredVia  PathLabel `json:"discovered_via"`
	ExpandedFrom   string    `json:"expanded_from,omitempty"`
	Rationale      string    `json:"rationale,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FeedResponse is the boundary contract returned to callers. The counts are
// included so empty feeds are debuggable without treating sparsity as failure.
type FeedResponse struct {
	ClientID                  string     `json:"client_id"`
	Items                     []FeedItem `json:"items"`
	TotalCandidatesConsidered int        `json:"total_candidates_considered"`
	TotalAfterFilter          int        `json:"total_after_filter"`
	Degraded                  bool       `json:"degraded"`
	GeneratedAt               time.Time  `json:"generated_at"`
}
