package calc

import (
	"fmt"
	"math"

	"github.com/dshills/medscore/internal/risk"
)

const (
	femaleFactor = 0.85

	meldCreatinineCap = 4.0
	meldFloor         = 1.0
	meldMin           = 6
	meldMax           = 40
)

// CockcroftGault estimates creatinine clearance in mL/min:
// ((140 - age) * weight) / (72 * creatinine), times 0.85 for female patients.
// The value keeps full precision.
func CockcroftGault(v risk.Values) (float64, []risk.Contribution) {
	age := float64(v.Int("age"))
	weight := v.Real("weight")
	creat := v.Real("creatinine")

	base := ((140 - age) * weight) / (72 * creat)
	parts := []risk.Contribution{
		{Criterion: fmt.Sprintf("(140 - %g) x %g kg / (72 x %g mg/dL)", age, weight, creat), Points: base},
	}
	score := base
	if v.Enum("sex") == "female" {
		score = base * femaleFactor
		parts = append(parts, risk.Contribution{Criterion: "female adjustment x 0.85", Points: score - base})
	} else {
		parts = append(parts, risk.Contribution{Criterion: "male, no adjustment", Points: 0})
	}
	return score, parts
}

// MELD computes 9.57 ln(Cr) + 3.78 ln(bilirubin) + 11.2 ln(INR) + 6.43.
// Each lab is floored at 1.0 and creatinine is capped at 4.0 before use.
// The result is rounded, then clamped to [6, 40].
func MELD(v risk.Values) (float64, []risk.Contribution) {
	creat := math.Min(math.Max(v.Real("creatinine"), meldFloor), meldCreatinineCap)
	bili := math.Max(v.Real("bilirubin"), meldFloor)
	inr := math.Max(v.Real("inr"), meldFloor)

	parts := []risk.Contribution{
		{Criterion: fmt.Sprintf("9.57 x ln(creatinine %g)", creat), Points: 9.57 * math.Log(creat)},
		{Criterion: fmt.Sprintf("3.78 x ln(bilirubin %g)", bili), Points: 3.78 * math.Log(bili)},
		{Criterion: fmt.Sprintf("11.2 x ln(INR %g)", inr), Points: 11.2 * math.Log(inr)},
		{Criterion: "constant", Points: 6.43},
	}
	var raw float64
	for _, p := range parts {
		raw += p.Points
	}

	score := float64(risk.Round(raw))
	score = math.Min(math.Max(score, meldMin), meldMax)
	parts = append(parts, risk.Contribution{Criterion: "round and clamp to [6, 40]", Points: score - raw})
	return score, parts
}
