package feed

import (
	"strings"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// ApplyTrustPolicy drops candidates below the client's trust floor or in
// violation of IPS exclusions. Pure and order-preserving: the same client
// configuration and candidate set always yields the same membership. Theme
// alignment is deliberately not checked here; a missing theme match demotes
// in scoring, it does not exclude.
func ApplyTrustPolicy(client *domain.Client, cands []*Candidate) []*Candidate {
	out := make([]*Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Doc.Source.TrustLevel < client.MinTrust {
			continue
		}
		if sectorExcluded(&c.Doc, &client.IPS) {
			continue
		}
		if esgExcluded(&c.Doc, &client.IPS) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sectorExcluded reports whether any affected instrument falls in an
// excluded sector.
func sectorExcluded(doc *domain.Document, ips *domain.IPS) bool {
	if len(ips.ExcludedSectors) == 0 {
		return false
	}
	for _, edge := range doc.Affects {
		for _, sector := range ips.ExcludedSectors {
			if strings.EqualFold(edge.Sector, sector) {
				return true
			}
		}
	}
	return false
}

// esgExcluded reports whether any tagged event category matches an ESG
// exclusion flag.
func esgExcluded(doc *domain.Document, ips *domain.IPS) bool {
	if len(ips.ESGExclusions) == 0 {
		return false
	}
	for _, cat := range doc.EventCategories {
		for _, excl := range ips.ESGExclusions {
			if strings.EqualFold(cat, excl) {
				return true
			}
		}
	}
	return false
}
