// Package calc holds one pure scoring function per scale.
//
// Each function receives values already checked by the schema validator and
// returns the raw score with an ordered per-criterion explanation whose
// points sum to the score.
package calc

import (
	"fmt"

	"github.com/dshills/medscore/internal/risk"
)

// Func computes a raw score from validated values.
type Func func(v risk.Values) (float64, []risk.Contribution)

var registry = map[risk.ScaleID]Func{
	risk.ScaleQSOFA:          QSOFA,
	risk.ScaleCHA2DS2VASc:    CHA2DS2VASc,
	risk.ScaleGCS:            GCS,
	risk.ScaleCURB65:         CURB65,
	risk.ScaleCockcroftGault: CockcroftGault,
	risk.ScaleMELD:           MELD,
	risk.ScaleHEART:          HEART,
	risk.ScaleNIHSS:          NIHSS,
}

// For returns the calculator for a scale.
func For(id risk.ScaleID) (Func, error) {
	fn, ok := registry[id]
	if !ok {
		return nil, &risk.ConfigurationError{Scale: string(id), Reason: "no calculator registered"}
	}
	return fn, nil
}

// tally accumulates point-sum criteria.
type tally struct {
	score float64
	parts []risk.Contribution
}

func (t *tally) add(criterion string, points float64) {
	t.score += points
	t.parts = append(t.parts, risk.Contribution{Criterion: criterion, Points: points})
}

// flag adds points when cond holds and records the criterion either way.
func (t *tally) flag(criterion string, cond bool, points float64) {
	if !cond {
		points = 0
	}
	t.add(criterion, points)
}

func (t *tally) result() (float64, []risk.Contribution) {
	return t.score, t.parts
}

func sub(name string, n int) string {
	return fmt.Sprintf("%s = %d", name, n)
}
