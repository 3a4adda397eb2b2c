/*
Package recommend turns a gift intent into a budget-respecting bundle.

The pipeline is fixed: the intent is rendered as a sentence, encoded,
ranked against the catalog, filtered by budget, and handed to a three-phase
greedy selector (anchor, complement, filler).
*/
package recommend

import (
	"fmt"
	"strings"
)

// Intent is the structured description of one gift request.
type Intent struct {
	Relation   string  `json:"relation"`
	Occasion   string  `json:"occasion"`
	AgeGroup   string  `json:"age_group"`
	Gender     string  `json:"gender"`
	Profession string  `json:"profession"`
	Vibe       string  `json:"vibe"`
	Budget     float64 `json:"budget"`
}

// Normalized returns a copy with surrounding whitespace trimmed.
func (in Intent) Normalized() Intent {
	in.Relation = strings.TrimSpace(in.Relation)
	in.Occasion = strings.TrimSpace(in.Occasion)
	in.AgeGroup = strings.TrimSpace(in.AgeGroup)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Profession = strings.TrimSpace(in.Profession)
	in.Vibe = strings.TrimSpace(in.Vibe)
	return in
}

// Validate reports every empty field. A budget of zero or less counts as
// missing: a free bundle cannot be anchored.
func (in Intent) Validate() error {
	in = in.Normalized()

	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"relation", in.Relation},
		{"occasion", in.Occasion},
		{"age_group", in.AgeGroup},
		{"gender", in.Gender},
		{"profession", in.Profession},
		{"vibe", in.Vibe},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if !(in.Budget > 0) {
		missing = append(missing, "budget")
	}

	if len(missing) > 0 {
		return missingFields(missing)
	}
	return nil
}

// Query renders the intent as the sentence that gets embedded.
func (in Intent) Query() string {
	in = in.Normalized()
	return fmt.Sprintf("A %s gift for a %s %s who is a %s. Relationship: %s. Occasion: %s.",
		in.Vibe, in.AgeGroup, in.Gender, in.Profession, in.Relation, in.Occasion)
}
