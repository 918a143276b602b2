package risk

import (
	"errors"
	"fmt"
	"math"
)

// Band maps the half-open score range [From, Below) to a tier.
// A nil Below means the band is unbounded above.
type Band struct {
	From           float64  `yaml:"from" json:"from"`
	Below          *float64 `yaml:"below,omitempty" json:"below,omitempty"`
	Tier           Tier     `yaml:"tier" json:"tier"`
	Interpretation string   `yaml:"interpretation" json:"interpretation"`
}

func (b Band) bounds() (float64, float64) { return b.From, upper(b.Below) }

// Table is an ordered threshold table for one scale.
type Table []Band

// Classify returns the single band containing score.
func (t Table) Classify(score float64) (Band, bool) {
	return find(t, score)
}

// Check verifies the table is ascending, contiguous, non-overlapping,
// uses valid tiers, and covers every score in [lo, hi].
// An empty table is valid and means the scale has no tiers.
func (t Table) Check(lo, hi float64) error {
	if len(t) == 0 {
		return nil
	}
	for i, b := range t {
		if !b.Tier.Valid() {
			return fmt.Errorf("band %d: invalid tier %q", i, b.Tier)
		}
	}
	return checkRanges(t, lo, hi)
}

// ranged is a score band over [from, upper).
type ranged interface {
	bounds() (from, upper float64)
}

func upper(below *float64) float64 {
	if below == nil {
		return math.Inf(1)
	}
	return *below
}

func find[R ranged](bands []R, score float64) (R, bool) {
	for _, b := range bands {
		if from, up := b.bounds(); score >= from && score < up {
			return b, true
		}
	}
	var zero R
	return zero, false
}

func checkRanges[R ranged](bands []R, lo, hi float64) error {
	if len(bands) == 0 {
		return errors.New("no bands")
	}
	if from, _ := bands[0].bounds(); from > lo {
		return fmt.Errorf("first band starts at %g, above scale minimum %g", from, lo)
	}
	prev := 0.0
	for i, b := range bands {
		from, up := b.bounds()
		if up <= from {
			return fmt.Errorf("band %d: empty range [%g, %g)", i, from, up)
		}
		if i > 0 && prev != from {
			return fmt.Errorf("band %d: starts at %g but previous band ends at %g", i, from, prev)
		}
		prev = up
	}
	if prev <= hi {
		return fmt.Errorf("last band ends at %g, not above scale maximum %g", prev, hi)
	}
	return nil
}

// Tiers returns the distinct tiers used by the table in band order.
func (t Table) Tiers() []Tier {
	var out []Tier
	seen := make(map[Tier]bool)
	for _, b := range t {
		if !seen[b.Tier] {
			seen[b.Tier] = true
			out = append(out, b.Tier)
		}
	}
	return out
}
