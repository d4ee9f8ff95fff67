// Package ranking orders retrieved chunks for the prompt.
package ranking

import (
	"sort"

	"github.com/hyperjump/coachrag/internal/models"
)

// Rank returns candidates ordered by ascending priority, then ascending
// distance. Equal keys keep their retrieval order. The input is not modified
// and an empty input yields an empty, non-nil slice.
func Rank(candidates []*models.Candidate) []*models.Candidate {
	out := make([]*models.Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Contents returns the chunk texts of ranked in order.
func Contents(ranked []*models.Candidate) []string {
	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.Content
	}
	return out
}
