package domain

import (
	"testing"
)

func TestImpactTierOrdering(t *testing.T) {
	if TierPlatinum.Rank() >= TierGold.Rank() {
		t.Error("PLATINUM must rank above GOLD")
	}
	if TierGold.Rank() >= TierSilver.Rank() {
		t.Error("GOLD must rank above SILVER")
	}
	if TierSilver.Rank() >= TierBronze.Rank() {
		t.Error("SILVER must rank above BRONZE")
	}
	if TierBronze.Rank() >= TierStandard.Rank() {
		t.Error("BRONZE must rank above STANDARD")
	}
}

func TestParseImpactTier(t *testing.T) {
	cases := []struct {
		in      string
		want    ImpactTier
		wantErr bool
	}{
		{"PLATINUM", TierPlatinum, false},
		{"gold", TierGold, false},
		{" silver ", TierSilver, false},
		{"STANDARD", TierStandard, false},
		{"diamond", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseImpactTier(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseImpactTier(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseImpactTier(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseImpactTier(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestClientMembership(t *testing.T) {
	client := &Client{
		Portfolio: []Holding{
			{InstrumentID: "i-1", Ticker: "GTX", Weight: 0.05},
			{InstrumentID: "i-2", Ticker: "VELO", Weight: 0.10},
		},
		Watchlist: []string{"QNTM"},
	}

	if !client.Holds("GTX") {
		t.Error("expected GTX to be held")
	}
	if client.Holds("QNTM") {
		t.Error("QNTM is watched, not held")
	}
	if !client.Watches("QNTM") {
		t.Error("expected QNTM to be watched")
	}
	if client.Watches("GTX") {
		t.Error("GTX is held, not watched")
	}
}

func TestDocumentAffectsTicker(t *testing.T) {
	doc := &Document{
		Affects: []AffectEdge{
			{Ticker: "GTX", Direction: DirectionUp, Magnitude: MagnitudeHigh},
		},
	}
	if !doc.AffectsTicker("GTX") {
		t.Error("expected document to affect GTX")
	}
	if doc.AffectsTicker("VELO") {
		t.Error("document does not affect VELO")
	}
}
