package feed

import (
	"strings"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// ThemeMatcher scores how well a document aligns with a client's mandate
// themes, in [0,1]. Pluggable so an embedding-based matcher can replace the
// keyword implementation without touching the scorer.
type ThemeMatcher interface {
	MatchThemes(doc *domain.Document, themes []string) float64
}

// KeywordThemeMatcher matches theme keywords case-insensitively against the
// document title, event type and mentioned companies. Score is the fraction
// of themes matched.
type KeywordThemeMatcher struct{}

func NewKeywordThemeMatcher() *KeywordThemeMatcher {
	return &KeywordThemeMatcher{}
}

func (m *KeywordThemeMatcher) MatchThemes(doc *domain.Document, themes []string) float64 {
	if len(themes) == 0 {
		return 0
	}

	haystack := strings.ToLower(doc.Title + " " + doc.EventType + " " + strings.Join(doc.Mentions, " "))

	matched := 0
	for _, theme := range themes {
		t := strings.ToLower(strings.TrimSpace(theme))
		if t == "" {
			continue
		}
		if strings.Contains(haystack, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(themes))
}
