package recommend

import (
	"fmt"
	"sort"

	"github.com/khanglvm/gift-hub/internal/search"
)

// Bundle selection defaults.
const (
	DefaultAnchorRatio   = 0.7
	DefaultFillerCeiling = 20.0
)

// Role is the slot an item fills in a bundle.
type Role string

const (
	RoleAnchor     Role = "anchor"
	RoleComplement Role = "complement"
	RoleFiller     Role = "filler"
)

// Pick is one selected candidate.
type Pick struct {
	search.Candidate
	Role Role `json:"role"`
}

// Bundle is the selector's output.
type Bundle struct {
	Picks []Pick
	// Cost is the exact sum of selected prices.
	Cost float64
	// TotalCost is Cost truncated to an integer.
	TotalCost int
	// Analysis is the human-readable confidence narrative.
	Analysis string
}

// Anchor returns the anchor pick. Bundles from Select always have one.
func (b *Bundle) Anchor() Pick {
	return b.Picks[0]
}

// Selector picks an anchor, an optional complement and an optional filler.
//
// Phases run in order over a shrinking pool sorted by descending score:
//  1. anchor: best item priced <= budget*AnchorRatio, else the best item overall
//  2. complement: best remaining item that fits the remaining budget
//  3. filler: best remaining item that fits the remaining budget and costs
//     <= FillerCeiling
type Selector struct {
	AnchorRatio   float64
	FillerCeiling float64
}

// DefaultSelector uses the 70% anchor ceiling and the 20 filler ceiling.
func DefaultSelector() Selector {
	return Selector{AnchorRatio: DefaultAnchorRatio, FillerCeiling: DefaultFillerCeiling}
}

type phase int

const (
	phaseAnchor phase = iota
	phaseComplement
	phaseFiller
	phaseDone
)

type selection struct {
	sel    Selector
	budget float64
	pool   []search.Candidate
	cost   float64
	picks  []Pick
}

// Select builds a bundle from budget-filtered candidates.
// It returns ErrBudgetTooLow when candidates is empty.
func (s Selector) Select(candidates []search.Candidate, budget float64, vibe string) (*Bundle, error) {
	if len(candidates) == 0 {
		return nil, budgetTooLow()
	}

	pool := make([]search.Candidate, len(candidates))
	copy(pool, candidates)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	st := &selection{sel: s, budget: budget, pool: pool}
	for p := phaseAnchor; p != phaseDone; p = st.step(p) {
	}

	anchor := st.picks[0]
	return &Bundle{
		Picks:     st.picks,
		Cost:      st.cost,
		TotalCost: int(st.cost),
		Analysis: fmt.Sprintf("Analysis: Optimized for '%s' vibe with %d%% confidence.",
			vibe, int(anchor.Score*100)),
	}, nil
}

// step runs one phase and returns the next.
func (st *selection) step(p phase) phase {
	switch p {
	case phaseAnchor:
		ceiling := st.budget * st.sel.AnchorRatio
		i := st.first(func(c search.Candidate) bool { return c.Price <= ceiling })
		if i < 0 {
			i = 0
		}
		st.take(i, RoleAnchor)
		return phaseComplement

	case phaseComplement:
		remaining := st.budget - st.cost
		if i := st.first(func(c search.Candidate) bool { return c.Price <= remaining }); i >= 0 {
			st.take(i, RoleComplement)
		}
		return phaseFiller

	case phaseFiller:
		remaining := st.budget - st.cost
		if i := st.first(func(c search.Candidate) bool {
			return c.Price <= remaining && c.Price <= st.sel.FillerCeiling
		}); i >= 0 {
			st.take(i, RoleFiller)
		}
		return phaseDone
	}
	return phaseDone
}

// first returns the index of the highest-scoring pool entry matching ok, or -1.
func (st *selection) first(ok func(search.Candidate) bool) int {
	for i, c := range st.pool {
		if ok(c) {
			return i
		}
	}
	return -1
}

// take moves pool[i] into the bundle.
func (st *selection) take(i int, role Role) {
	c := st.pool[i]
	st.picks = append(st.picks, Pick{Candidate: c, Role: role})
	st.cost += c.Price
	st.pool = append(st.pool[:i:i], st.pool[i+1:]...)
}
