package risk

import (
	"errors"
	"fmt"
)

// Priority is the urgency of one management step.
type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityUrgent    Priority = "urgent"
	PriorityRoutine   Priority = "routine"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityImmediate, PriorityUrgent, PriorityRoutine:
		return true
	}
	return false
}

// Step is one action in a management pathway.
type Step struct {
	Priority  Priority `yaml:"priority" json:"priority"`
	Action    string   `yaml:"action" json:"action"`
	Rationale string   `yaml:"rationale" json:"rationale"`
}

// Estimate maps the score range [From, Below) to a published outcome risk.
type Estimate struct {
	From    float64  `yaml:"from" json:"from"`
	Below   *float64 `yaml:"below,omitempty" json:"below,omitempty"`
	Percent float64  `yaml:"percent" json:"percent"`
}

func (e Estimate) bounds() (float64, float64) { return e.From, upper(e.Below) }

// Estimates is the outcome risk table of a scale.
type Estimates struct {
	Outcome string     `yaml:"outcome" json:"outcome"`
	Bands   []Estimate `yaml:"bands" json:"bands"`
}

// Lookup returns the risk percentage for score.
func (e *Estimates) Lookup(score float64) (float64, bool) {
	if e == nil {
		return 0, false
	}
	band, ok := find(e.Bands, score)
	return band.Percent, ok
}

// Check verifies the estimate bands cover [lo, hi] with percentages in [0, 100].
func (e *Estimates) Check(lo, hi float64) error {
	if e == nil {
		return nil
	}
	if e.Outcome == "" {
		return errors.New("estimates need an outcome")
	}
	if len(e.Bands) == 0 {
		return fmt.Errorf("estimates for %q have no bands", e.Outcome)
	}
	for i, b := range e.Bands {
		if b.Percent < 0 || b.Percent > 100 {
			return fmt.Errorf("band %d: percent %g outside [0, 100]", i, b.Percent)
		}
	}
	return checkRanges(e.Bands, lo, hi)
}

// Advice is the guidance for scores in [From, Below).
type Advice struct {
	From            float64  `yaml:"from" json:"from"`
	Below           *float64 `yaml:"below,omitempty" json:"below,omitempty"`
	Recommendations []string `yaml:"recommendations" json:"recommendations"`
	Pathway         []Step   `yaml:"pathway,omitempty" json:"pathway,omitempty"`
}

func (a Advice) bounds() (float64, float64) { return a.From, upper(a.Below) }

// Guidance is the ordered advice table of a scale.
type Guidance []Advice

// Lookup returns the advice covering score.
func (g Guidance) Lookup(score float64) (Advice, bool) {
	return find(g, score)
}

// Check verifies every band carries advice and the bands cover [lo, hi].
// An empty table is valid and means the scale gives no guidance.
func (g Guidance) Check(lo, hi float64) error {
	if len(g) == 0 {
		return nil
	}
	for i, a := range g {
		if len(a.Recommendations) == 0 {
			return fmt.Errorf("band %d: no recommendations", i)
		}
		for j, s := range a.Pathway {
			if !s.Priority.Valid() {
				return fmt.Errorf("band %d step %d: invalid priority %q", i, j, s.Priority)
			}
			if s.Action == "" {
				return fmt.Errorf("band %d step %d: missing action", i, j)
			}
		}
	}
	return checkRanges(g, lo, hi)
}
