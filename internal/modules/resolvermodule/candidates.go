package resolvermodule

import (
	"context"
	"sort"
)

// Candidate is a single raw result from a provider's search capability.
// It only lives for the duration of one resolution call.
type Candidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// ScoredCandidate pairs a candidate with its computed match score
// against the query title.
type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// MediaInfo is the full metadata a provider returns for a native id.
type MediaInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	MediaType   string `json:"media_type,omitempty"`
	Year        int    `json:"year,omitempty"`
	Episodes    int    `json:"episodes,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// Searcher is the per-provider search capability the orchestrator
// consumes. Implementations return a *SearchError for network or
// provider failures.
type Searcher interface {
	Search(ctx context.Context, provider, title string) ([]Candidate, error)
}

// InfoFetcher is the per-provider info capability, used only when the
// caller requests full info alongside resolution.
type InfoFetcher interface {
	GetInfo(ctx context.Context, provider, nativeID, typeHint string) (*MediaInfo, error)
}

// typeHintBonus is added to a candidate's similarity score when its
// declared media type matches the caller's hint.
const typeHintBonus = 0.1

// scoreCandidates scores every candidate against the query title and
// returns them ranked best-first. A matching media type hint earns a
// fixed bonus; the combined score is capped at 1.0.
func scoreCandidates(candidates []Candidate, title, typeHint string) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))

	for _, c := range candidates {
		score := Similarity(title, c.Title)
		if typeHint != "" && c.MediaType == typeHint {
			score += typeHintBonus
		}
		if score > 1.0 {
			score = 1.0
		}
		scored = append(scored, ScoredCandidate{Candidate: c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
