package feed

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// ChannelFilter restricts a response to one channel. Default is both.
type ChannelFilter int

const (
	FilterBoth ChannelFilter = iota
	FilterMaintenance
	FilterOpportunity
)

// ParseChannelFilter accepts the wire values for the channel query
// parameter. Empty and "both" select both channels.
func ParseChannelFilter(s string) (ChannelFilter, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "BOTH":
		return FilterBoth, nil
	case string(domain.ChannelMaintenance):
		return FilterMaintenance, nil
	case string(domain.ChannelOpportunity):
		return FilterOpportunity, nil
	default:
		return 0, fmt.Errorf("unknown channel filter: %q", s)
	}
}

// Assemble merges the channel lists, sorts by relevance descending with
// created_at descending then guid ascending as tie-breaks, and truncates to
// the limit. The sort here is the only ordering guarantee the engine makes.
func Assemble(client *domain.Client, classified *ClassifiedFeed, limit int, filter ChannelFilter) []domain.FeedItem {
	var items []domain.FeedItem

	if filter == FilterBoth || filter == FilterMaintenance {
		for _, sc := range classified.Maintenance {
			items = append(items, buildItem(client, &sc, domain.ChannelMaintenance))
		}
	}
	if filter == FilterBoth || filter == FilterOpportunity {
		for _, sc := range classified.Opportunity {
			items = append(items, buildItem(client, &sc, domain.ChannelOpportunity))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RelevanceScore != items[j].RelevanceScore {
			return items[i].RelevanceScore > items[j].RelevanceScore
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].DocumentGUID < items[j].DocumentGUID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func buildItem(client *domain.Client, sc *ScoredCandidate, channel domain.Channel) domain.FeedItem {
	item := domain.FeedItem{
		DocumentGUID:   sc.Doc.ID,
		Title:          sc.Doc.Title,
		Channel:        channel,
		RelevanceScore: sc.Score,
		DiscoveredVia:  sc.DiscoveredVia(),
		Rationale:      rationale(client, sc),
		CreatedAt:      sc.Doc.CreatedAt,
	}
	if sc.Graph != nil {
		item.ExpandedFrom = sc.Graph.Origin
	}
	return item
}

// rationale renders a short human-readable explanation of why the item is in
// the feed, keyed off its strongest discovery signal.
func rationale(client *domain.Client, sc *ScoredCandidate) string {
	var b strings.Builder

	switch {
	case sc.Graph != nil && sc.Graph.HopDistance == 0:
		if client.Holds(sc.Graph.Origin) {
			fmt.Fprintf(&b, "direct news on held %s", sc.Graph.Origin)
		} else {
			fmt.Fprintf(&b, "direct news on watched %s", sc.Graph.Origin)
		}
	case sc.Graph != nil && sc.Graph.Path == domain.PathSupplyChain:
		fmt.Fprintf(&b, "supply-chain link from %s to %s", sc.Graph.Origin, sc.Graph.Ticker)
	case sc.Graph != nil && sc.Graph.Path == domain.PathCompetitor:
		fmt.Fprintf(&b, "competitor of %s: %s", sc.Graph.Origin, sc.Graph.Ticker)
	case sc.Graph != nil && sc.Graph.Path == domain.PathFactor:
		fmt.Fprintf(&b, "shared factor exposure with %s (beta %.2f)", sc.Graph.Origin, sc.Graph.Beta)
	default:
		fmt.Fprintf(&b, "semantic match to mandate (similarity %.2f)", sc.Similarity)
	}

	if sc.ThemeScore > 0 {
		b.WriteString("; matches mandate themes")
	}
	return b.String()
}
