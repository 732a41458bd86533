package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/stores"
)

func TestClassify_DirectHoldingIsMaintenance(t *testing.T) {
	now := time.Now()
	client := testClient()

	sc := ScoredCandidate{
		Candidate: &Candidate{
			Doc:   testDoc("doc-1", "GTX", 9, now),
			Graph: &stores.GraphHit{HopDistance: 0, Path: domain.PathDirect, Origin: "GTX"},
		},
		Score: 0.9,
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	require.Len(t, classified.Maintenance, 1)
	assert.Empty(t, classified.Opportunity)
}

func TestClassify_WatchlistCountsAsMaintenance(t *testing.T) {
	now := time.Now()
	client := testClient() // watches QNTM

	sc := ScoredCandidate{
		Candidate: &Candidate{
			Doc:   testDoc("doc-1", "QNTM", 9, now),
			Graph: &stores.GraphHit{HopDistance: 0, Path: domain.PathDirect, Origin: "QNTM"},
		},
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	require.Len(t, classified.Maintenance, 1)
}

func TestClassify_ThemeMatchNotHeldIsOpportunity(t *testing.T) {
	now := time.Now()
	client := testClient()

	sc := ScoredCandidate{
		Candidate:  &Candidate{Doc: testDoc("doc-1", "NOVA", 9, now), Similarity: 0.9},
		ThemeScore: 0.5,
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	assert.Empty(t, classified.Maintenance)
	require.Len(t, classified.Opportunity, 1)
}

func TestClassify_MaintenanceWinsDualQualification(t *testing.T) {
	// Theme-matching news that also affects a held instrument must be
	// MAINTENANCE, never OPPORTUNITY.
	now := time.Now()
	client := testClient()
	client.Portfolio = append(client.Portfolio, domain.Holding{InstrumentID: "i-VELO", Ticker: "VELO"})

	sc := ScoredCandidate{
		Candidate: &Candidate{
			Doc:   testDoc("doc-1", "VELO", 9, now),
			Graph: &stores.GraphHit{HopDistance: 0, Path: domain.PathDirect, Origin: "VELO"},
		},
		ThemeScore: 1.0,
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	require.Len(t, classified.Maintenance, 1)
	assert.Empty(t, classified.Opportunity)
}

func TestClassify_HeldTickerBlocksOpportunity(t *testing.T) {
	// Theme matches but the affected ticker is held and discovery was not
	// direct (e.g. semantic-only): not OPPORTUNITY, and with no 0-hop signal
	// not MAINTENANCE either, so it is dropped.
	now := time.Now()
	client := testClient()

	sc := ScoredCandidate{
		Candidate:  &Candidate{Doc: testDoc("doc-1", "GTX", 9, now), Similarity: 0.95},
		ThemeScore: 1.0,
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	assert.Empty(t, classified.Maintenance)
	assert.Empty(t, classified.Opportunity)
}

func TestClassify_SupplyChainHitIsMaintenance(t *testing.T) {
	// News on a supplier of a held instrument is portfolio upkeep even
	// though the affected ticker itself is not held.
	now := time.Now()
	client := testClient()

	sc := ScoredCandidate{
		Candidate: &Candidate{
			Doc:   testDoc("doc-1", "QNTM", 9, now),
			Graph: &stores.GraphHit{HopDistance: 1, Path: domain.PathSupplyChain, Origin: "GTX"},
		},
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	require.Len(t, classified.Maintenance, 1)
	assert.Empty(t, classified.Opportunity)
}

func TestClassify_NeitherChannelIsDropped(t *testing.T) {
	now := time.Now()
	client := testClient()

	// Semantic-only discovery with no theme match qualifies for nothing:
	// excluded from the response, not "no channel".
	sc := ScoredCandidate{
		Candidate: &Candidate{Doc: testDoc("doc-1", "NOVA", 9, now), Similarity: 0.7},
	}

	classified, err := Classify(client, []ScoredCandidate{sc})
	require.NoError(t, err)
	assert.Empty(t, classified.Maintenance)
	assert.Empty(t, classified.Opportunity)
}

func TestClassify_DuplicateGuidIsInvariantViolation(t *testing.T) {
	now := time.Now()
	client := testClient()

	sc := ScoredCandidate{
		Candidate: &Candidate{
			Doc:   testDoc("doc-1", "GTX", 9, now),
			Graph: &stores.GraphHit{HopDistance: 0, Path: domain.PathDirect, Origin: "GTX"},
		},
	}

	_, err := Classify(client, []ScoredCandidate{sc, sc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classified twice")
}
