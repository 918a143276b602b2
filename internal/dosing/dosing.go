// Package dosing computes weight-based medication doses adjusted for renal
// and hepatic function. Renal function is the Cockcroft-Gault creatinine
// clearance produced by the scoring engine.
package dosing

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/medscore/internal/risk"
)

//go:embed formulary.yaml
var formularyYAML []byte

// ErrUnknownMedication is returned for a medication missing from the formulary.
var ErrUnknownMedication = errors.New("unknown medication")

// Component is one dose of a regimen: per kilogram of body weight, or fixed.
type Component struct {
	Name  string  `yaml:"name" json:"name"`
	PerKg float64 `yaml:"per_kg,omitempty" json:"per_kg,omitempty"`
	Fixed float64 `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	Unit  string  `yaml:"unit" json:"unit"`
}

func (c Component) amount(weight float64) float64 {
	if c.PerKg > 0 {
		return c.PerKg * weight
	}
	return c.Fixed
}

// RenalRule scales a dose when clearance is above Over or at least AtLeast.
// A rule with neither threshold matches any clearance.
type RenalRule struct {
	Over    *float64 `yaml:"over,omitempty" json:"over,omitempty"`
	AtLeast *float64 `yaml:"at_least,omitempty" json:"at_least,omitempty"`
	Factor  float64  `yaml:"factor" json:"factor"`
	Note    string   `yaml:"note" json:"note"`
}

func (r RenalRule) matches(clearance float64) bool {
	switch {
	case r.Over != nil:
		return clearance > *r.Over
	case r.AtLeast != nil:
		return clearance >= *r.AtLeast
	default:
		return true
	}
}

// Source is a drug reference consulted for a regimen.
type Source struct {
	Name    string `yaml:"source" json:"source"`
	Updated string `yaml:"updated" json:"updated"`
}

// Medication is one formulary entry.
type Medication struct {
	ID           string      `yaml:"id" json:"id"`
	Name         string      `yaml:"name" json:"name"`
	StandardDose string      `yaml:"standard_dose" json:"standard_dose"`
	Doses        []Component `yaml:"doses" json:"doses"`
	Primary      string      `yaml:"primary" json:"primary"`
	Renal        []RenalRule `yaml:"renal,omitempty" json:"renal,omitempty"`
	Warnings     []string    `yaml:"warnings" json:"warnings"`
	References   []Source    `yaml:"references" json:"references"`
}

// renal returns the first matching rule. Medications without rules are not adjusted.
func (m *Medication) renal(clearance float64) RenalRule {
	for _, r := range m.Renal {
		if r.matches(clearance) {
			return r
		}
	}
	return RenalRule{Factor: 1, Note: "no renal adjustment"}
}

// Formulary is an immutable set of medications.
type Formulary struct {
	meds  map[string]*Medication
	order []string
}

var (
	builtinOnce sync.Once
	builtin     *Formulary
	builtinErr  error
)

// Load returns the built-in formulary, parsing it on first use.
func Load() (*Formulary, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = Parse(formularyYAML)
		if builtinErr != nil {
			builtinErr = fmt.Errorf("dosing.Load: %w", builtinErr)
		}
	})
	return builtin, builtinErr
}

// Parse decodes and checks a formulary document.
func Parse(data []byte) (*Formulary, error) {
	var doc struct {
		Medications []*Medication `yaml:"medications"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(doc.Medications) == 0 {
		return nil, errors.New("formulary has no medications")
	}
	f := &Formulary{meds: make(map[string]*Medication, len(doc.Medications))}
	for _, m := range doc.Medications {
		if err := check(m); err != nil {
			return nil, err
		}
		if _, dup := f.meds[m.ID]; dup {
			return nil, fmt.Errorf("medication %q defined more than once", m.ID)
		}
		f.meds[m.ID] = m
		f.order = append(f.order, m.ID)
	}
	return f, nil
}

func check(m *Medication) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("medication %q: %s", m.ID, fmt.Sprintf(format, args...))
	}
	if m.ID == "" || m.ID != strings.ToLower(m.ID) {
		return fail("id must be non-empty and lower case")
	}
	if m.Name == "" {
		return fail("name is required")
	}
	if len(m.Doses) == 0 {
		return fail("no doses")
	}
	primary := false
	for _, d := range m.Doses {
		if d.Name == "" || d.Unit == "" {
			return fail("dose needs a name and unit")
		}
		if (d.PerKg > 0) == (d.Fixed > 0) {
			return fail("dose %q needs exactly one of per_kg or fixed", d.Name)
		}
		if d.Name == m.Primary {
			primary = true
		}
	}
	if !primary {
		return fail("primary dose %q not declared", m.Primary)
	}
	for i, r := range m.Renal {
		if r.Factor <= 0 || r.Factor > 1 {
			return fail("renal rule %d: factor %g outside (0, 1]", i, r.Factor)
		}
		if r.Over != nil && r.AtLeast != nil {
			return fail("renal rule %d: both over and at_least set", i)
		}
		last := i == len(m.Renal)-1
		if catchAll := r.Over == nil && r.AtLeast == nil; catchAll != last {
			return fail("renal rules must end with exactly one rule without a threshold")
		}
	}
	return nil
}

// Get returns the named medication.
func (f *Formulary) Get(id string) (*Medication, error) {
	m, ok := f.meds[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownMedication)
	}
	return m, nil
}

// List returns every medication in formulary order.
func (f *Formulary) List() []*Medication {
	out := make([]*Medication, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.meds[id])
	}
	return out
}

// InputError reports an invalid dosing-only input field.
type InputError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e *InputError) Error() string {
	return fmt.Sprintf("dosing: %s: %s", e.Field, e.Constraint)
}

type hepaticClass struct {
	factor float64
	note   string
}

var childPugh = map[string]hepaticClass{
	"A": {1, "Child-Pugh A (mild): no adjustment"},
	"B": {0.75, "Child-Pugh B (moderate): reduce dose 25-50%"},
	"C": {0.5, "Child-Pugh C (severe): reduce dose 50-75% or avoid"},
}

// Evaluator scores one scale input. *engine.Engine satisfies it.
type Evaluator interface {
	Evaluate(scale string, in risk.Input) (*risk.Result, error)
}

// Dose is one computed regimen component.
type Dose struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Adjusted float64 `json:"adjusted"`
	Unit     string  `json:"unit"`
}

// Result is a computed regimen for one patient.
type Result struct {
	Medication    string   `json:"medication"`
	Name          string   `json:"name"`
	StandardDose  string   `json:"standard_dose"`
	Weight        float64  `json:"weight"`
	Clearance     int      `json:"clearance"`
	RenalFactor   float64  `json:"renal_factor"`
	RenalNote     string   `json:"renal_note"`
	HepaticFactor float64  `json:"hepatic_factor"`
	HepaticNote   string   `json:"hepatic_note,omitempty"`
	Primary       Dose     `json:"primary"`
	Doses         []Dose   `json:"doses"`
	Warnings      []string `json:"warnings"`
	References    []Source `json:"references"`
}

// clearanceFields are the inputs forwarded to the Cockcroft-Gault scale.
var clearanceFields = []string{"age", "weight", "creatinine", "sex"}

// Calculator computes doses against a formulary.
// It is safe for concurrent use.
type Calculator struct {
	formulary *Formulary
	eval      Evaluator
}

// New returns a calculator that takes renal function from e.
func New(f *Formulary, e Evaluator) *Calculator {
	return &Calculator{formulary: f, eval: e}
}

// Formulary returns the medications the calculator doses.
func (c *Calculator) Formulary() *Formulary {
	return c.formulary
}

// Dose computes the regimen for medication. The input carries age, weight,
// creatinine, and sex for creatinine clearance, and an optional child_pugh class.
// Invalid clearance inputs return the engine's *risk.ValidationError.
func (c *Calculator) Dose(medication string, in risk.Input) (*Result, error) {
	m, err := c.formulary.Get(medication)
	if err != nil {
		return nil, err
	}
	hep, err := hepatic(in)
	if err != nil {
		return nil, err
	}

	crclIn := make(risk.Input, len(clearanceFields))
	for _, k := range clearanceFields {
		if v, ok := in[k]; ok {
			crclIn[k] = v
		}
	}
	crcl, err := c.eval.Evaluate(string(risk.ScaleCockcroftGault), crclIn)
	if err != nil {
		return nil, err
	}
	weight, ok := crcl.Inputs["weight"].(float64)
	if !ok {
		return nil, errors.New("dosing.Dose: clearance result has no weight")
	}

	rule := m.renal(float64(crcl.Rounded))
	res := &Result{
		Medication:    m.ID,
		Name:          m.Name,
		StandardDose:  m.StandardDose,
		Weight:        weight,
		Clearance:     crcl.Rounded,
		RenalFactor:   rule.Factor,
		RenalNote:     fmt.Sprintf("CrCl %d mL/min: %s", crcl.Rounded, rule.Note),
		HepaticFactor: hep.factor,
		HepaticNote:   hep.note,
		Warnings:      append([]string(nil), m.Warnings...),
		References:    append([]Source(nil), m.References...),
	}
	for _, comp := range m.Doses {
		amount := comp.amount(weight)
		d := Dose{
			Name:     comp.Name,
			Amount:   round3(amount),
			Adjusted: round3(amount * rule.Factor * hep.factor),
			Unit:     comp.Unit,
		}
		res.Doses = append(res.Doses, d)
		if comp.Name == m.Primary {
			res.Primary = d
		}
	}
	return res, nil
}

func hepatic(in risk.Input) (hepaticClass, error) {
	raw, ok := in["child_pugh"]
	if !ok || raw == nil {
		return hepaticClass{factor: 1}, nil
	}
	s, ok := raw.(string)
	if !ok {
		return hepaticClass{}, &InputError{Field: "child_pugh", Constraint: fmt.Sprintf("must be one of A, B, C, got %T", raw)}
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return hepaticClass{factor: 1}, nil
	}
	class, ok := childPugh[s]
	if !ok {
		return hepaticClass{}, &InputError{Field: "child_pugh", Constraint: fmt.Sprintf("must be one of A, B, C, got %q", s)}
	}
	return class, nil
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
