package recommend

import "github.com/khanglvm/gift-hub/internal/search"

// FilterByBudget keeps candidates priced at or below budget, in their
// original order. The input slice is not modified.
func FilterByBudget(candidates []search.Candidate, budget float64) []search.Candidate {
	out := make([]search.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Price <= budget {
			out = append(out, c)
		}
	}
	return out
}
