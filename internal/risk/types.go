// Package risk defines the core types shared by the scoring engine:
// inputs, typed values, threshold tables, results, and errors.
package risk

import (
	"maps"
	"math"
	"slices"
)

// Input is the raw field-to-value mapping supplied by a caller for one evaluation.
// Values are booleans, numbers, or strings as decoded from JSON or YAML.
type Input map[string]any

// Values holds validated, typed field values for a single evaluation.
// Calculators read from Values; only fields declared by the scale's schema are present.
type Values struct {
	bools map[string]bool
	ints  map[string]int
	reals map[string]float64
	enums map[string]string
}

// NewValues returns an empty value set.
func NewValues() Values {
	return Values{
		bools: make(map[string]bool),
		ints:  make(map[string]int),
		reals: make(map[string]float64),
		enums: make(map[string]string),
	}
}

func (v Values) SetBool(name string, b bool)     { v.bools[name] = b }
func (v Values) SetInt(name string, n int)       { v.ints[name] = n }
func (v Values) SetReal(name string, f float64)  { v.reals[name] = f }
func (v Values) SetEnum(name string, opt string) { v.enums[name] = opt }
func (v Values) Bool(name string) bool           { return v.bools[name] }
func (v Values) Int(name string) int             { return v.ints[name] }
func (v Values) Real(name string) float64        { return v.reals[name] }
func (v Values) Enum(name string) string         { return v.enums[name] }

// Len returns the number of validated fields.
func (v Values) Len() int {
	return len(v.bools) + len(v.ints) + len(v.reals) + len(v.enums)
}

// Echo returns the validated values as a plain map for reporting.
func (v Values) Echo() map[string]any {
	out := make(map[string]any, v.Len())
	for k, b := range v.bools {
		out[k] = b
	}
	for k, n := range v.ints {
		out[k] = n
	}
	for k, f := range v.reals {
		out[k] = f
	}
	for k, s := range v.enums {
		out[k] = s
	}
	return out
}

// Contribution records the points one criterion added to a score.
type Contribution struct {
	Criterion string  `json:"criterion" yaml:"criterion"`
	Points    float64 `json:"points" yaml:"points"`
}

// Result is the outcome of one evaluation. It is never mutated after the engine returns it.
type Result struct {
	Scale          ScaleID        `json:"scale"`
	Score          float64        `json:"score"`
	Rounded        int            `json:"rounded_score"`
	Unit           string         `json:"unit,omitempty"`
	Tier           Tier           `json:"tier,omitempty"`
	Interpretation string         `json:"interpretation,omitempty"`
	Explanation    []Contribution `json:"explanation"`
	Inputs         map[string]any `json:"inputs"`

	// Published outcome risk for the score, when the scale defines one.
	RiskPercent     *float64 `json:"risk_percent,omitempty"`
	RiskOutcome     string   `json:"risk_outcome,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Pathway         []Step   `json:"pathway,omitempty"`
}

// Round rounds half away from zero, the reporting convention for every scale.
func Round(score float64) int {
	return int(math.Round(score))
}

// InputKeys returns the echoed input field names in sorted order.
func (r *Result) InputKeys() []string {
	return slices.Sorted(maps.Keys(r.Inputs))
}
