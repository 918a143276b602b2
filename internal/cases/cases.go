// Package cases loads worked-example suites and checks them against the engine.
package cases

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dshills/medscore/internal/risk"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Expected error classes for a case.
const (
	ErrValidation    = "validation"
	ErrConfiguration = "configuration"
)

// Case is one worked example: inputs for a scale and the expected outcome.
type Case struct {
	Name      string         `yaml:"name" json:"name"`
	Scale     string         `yaml:"scale" json:"scale"`
	Inputs    map[string]any `yaml:"inputs" json:"inputs"`
	Score     *float64       `yaml:"score,omitempty" json:"score,omitempty"`
	Tier      risk.Tier      `yaml:"tier,omitempty" json:"tier,omitempty"`
	Error     string         `yaml:"error,omitempty" json:"error,omitempty"`
	Tolerance float64        `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	Note      string         `yaml:"note,omitempty" json:"note,omitempty"`
}

// Suite holds a loaded case file with its metadata.
type Suite struct {
	FilePath  string  `yaml:"-" json:"file_path"`
	Hash      string  `yaml:"-" json:"hash"`
	Name      string  `yaml:"name" json:"name"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
	Cases     []Case  `yaml:"cases" json:"cases"`
}

// Load reads a case file and computes its SHA-256 hash.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cases.Load: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("cases.Load: %s: %w", path, err)
	}
	s.FilePath = path
	return s, nil
}

// Parse decodes and checks a case suite.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.Cases) == 0 {
		return nil, errors.New("suite has no cases")
	}
	if s.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance %g is negative", s.Tolerance)
	}
	for i, c := range s.Cases {
		switch {
		case c.Name == "":
			return nil, fmt.Errorf("case %d: missing name", i+1)
		case c.Scale == "":
			return nil, fmt.Errorf("case %q: missing scale", c.Name)
		case c.Tier != risk.TierNone && !c.Tier.Valid():
			return nil, fmt.Errorf("case %q: invalid tier %q", c.Name, c.Tier)
		case c.Error != "" && c.Error != ErrValidation && c.Error != ErrConfiguration:
			return nil, fmt.Errorf("case %q: invalid error class %q", c.Name, c.Error)
		case c.Error == "" && c.Score == nil:
			return nil, fmt.Errorf("case %q: expects neither a score nor an error", c.Name)
		case c.Tolerance < 0:
			return nil, fmt.Errorf("case %q: tolerance %g is negative", c.Name, c.Tolerance)
		}
	}
	s.Hash = fmt.Sprintf("sha256:%x", sha256.Sum256(data))
	return &s, nil
}

// Evaluator scores one input. *engine.Engine satisfies it.
type Evaluator interface {
	Evaluate(scale string, in risk.Input) (*risk.Result, error)
}

// Outcome is the verdict for one case.
type Outcome struct {
	Case   Case         `json:"case"`
	Passed bool         `json:"passed"`
	Reason string       `json:"reason,omitempty"`
	Result *risk.Result `json:"result,omitempty"`
}

// Report summarizes a run over a suite.
type Report struct {
	RunID    string    `json:"run_id"`
	Suite    string    `json:"suite"`
	Hash     string    `json:"hash"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Outcomes []Outcome `json:"outcomes"`
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Run evaluates every case in order.
func Run(e Evaluator, s *Suite) *Report {
	rep := &Report{
		RunID: uuid.NewString(),
		Suite: s.Name,
		Hash:  s.Hash,
	}
	for _, c := range s.Cases {
		o := check(e, c, s.Tolerance)
		if o.Passed {
			rep.Passed++
		} else {
			rep.Failed++
		}
		rep.Outcomes = append(rep.Outcomes, o)
	}
	return rep
}

func check(e Evaluator, c Case, suiteTol float64) Outcome {
	o := Outcome{Case: c}
	res, err := e.Evaluate(c.Scale, risk.Input(c.Inputs))
	o.Result = res

	if c.Error != "" {
		got := errorClass(err)
		switch {
		case err == nil:
			o.Reason = fmt.Sprintf("expected %s error, got score %g", c.Error, res.Score)
		case got != c.Error:
			o.Reason = fmt.Sprintf("expected %s error, got %v", c.Error, err)
		default:
			o.Passed = true
		}
		return o
	}
	if err != nil {
		o.Reason = err.Error()
		return o
	}

	tol := c.Tolerance
	if tol == 0 {
		tol = suiteTol
	}
	if math.Abs(res.Score-*c.Score) > tol {
		o.Reason = fmt.Sprintf("score %g, expected %g (tolerance %g)", res.Score, *c.Score, tol)
		return o
	}
	if c.Tier != risk.TierNone && res.Tier != c.Tier {
		o.Reason = fmt.Sprintf("tier %s, expected %s", tierName(res.Tier), c.Tier)
		return o
	}
	o.Passed = true
	return o
}

func errorClass(err error) string {
	var ve *risk.ValidationError
	var ce *risk.ConfigurationError
	switch {
	case errors.As(err, &ve):
		return ErrValidation
	case errors.As(err, &ce):
		return ErrConfiguration
	default:
		return ""
	}
}

func tierName(t risk.Tier) string {
	if t == risk.TierNone {
		return "none"
	}
	return string(t)
}
