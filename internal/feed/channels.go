package feed

import (
	"fmt"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// ClassifiedFeed holds the two channel lists. A document guid appears in at
// most one of them.
type ClassifiedFeed struct {
	Maintenance []ScoredCandidate
	Opportunity []ScoredCandidate
}

// Classify assigns each scored candidate to exactly one channel.
//
// MAINTENANCE: the document was discovered by graph traversal anchored at a
// current holding or watchlist entry, from a direct 0-hop AFFECTS up to the
// bounded supply-chain, competitor and factor walks. News connected to what
// the client already holds is portfolio upkeep regardless of hop count.
//
// OPPORTUNITY: the document matches at least one mandate theme and none of
// its affected tickers is currently held.
//
// A candidate qualifying for both goes to MAINTENANCE; a candidate
// qualifying for neither is dropped from the response entirely. The returned
// error signals an internal invariant violation (duplicate guid), which is a
// programming failure, not a recoverable condition.
func Classify(client *domain.Client, scored []ScoredCandidate) (*ClassifiedFeed, error) {
	out := &ClassifiedFeed{}
	seen := make(map[string]bool, len(scored))

	for _, sc := range scored {
		if seen[sc.Doc.ID] {
			return nil, fmt.Errorf("internal: document %s classified twice", sc.Doc.ID)
		}

		switch {
		case isMaintenance(&sc):
			out.Maintenance = append(out.Maintenance, sc)
			seen[sc.Doc.ID] = true
		case isOpportunity(client, &sc):
			out.Opportunity = append(out.Opportunity, sc)
			seen[sc.Doc.ID] = true
		}
		// Neither channel: excluded, not "no channel".
	}
	return out, nil
}

func isMaintenance(sc *ScoredCandidate) bool {
	return sc.Graph != nil
}

func isOpportunity(client *domain.Client, sc *ScoredCandidate) bool {
	if sc.ThemeScore <= 0 {
		return false
	}
	for _, edge := range sc.Doc.Affects {
		if client.Holds(edge.Ticker) {
			return false
		}
	}
	return true
}
