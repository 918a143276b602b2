// Package engine evaluates a scale: validate, calculate, classify.
package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dshills/medscore/internal/calc"
	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/logging"
	"github.com/dshills/medscore/internal/risk"
	"github.com/dshills/medscore/internal/schema"
)

// Engine evaluates scale inputs against an immutable catalog.
// It is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of evaluations.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an engine over cat.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: cat, logger: logging.Discard()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Default returns an engine over the built-in catalog.
func Default(opts ...Option) (*Engine, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	return New(cat, opts...), nil
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Evaluate scores one input for the named scale.
// It returns a *risk.ConfigurationError for an unknown scale and a
// *risk.ValidationError for the first invalid field; no result is returned with an error.
func (e *Engine) Evaluate(scale string, in risk.Input) (*risk.Result, error) {
	s, err := e.catalog.Get(scale)
	if err != nil {
		return nil, err
	}

	vals, errs := schema.Validate(s, in)
	if len(errs) > 0 {
		e.logger.Debug("input rejected", "scale", s.ID, "field", errs[0].Field, "violations", len(errs))
		return nil, &errs[0]
	}
	if unknown := schema.Unknown(s, in); len(unknown) > 0 {
		e.logger.Debug("ignoring undeclared fields", "scale", s.ID, "fields", unknown)
	}

	fn, err := calc.For(s.ID)
	if err != nil {
		return nil, err
	}
	score, parts := fn(vals)
	if score < s.Min || score > s.Max {
		return nil, fmt.Errorf("engine.Evaluate: %s score %g outside [%g, %g]", s.ID, score, s.Min, s.Max)
	}

	res := &risk.Result{
		Scale:          s.ID,
		Score:          score,
		Rounded:        risk.Round(score),
		Unit:           s.Unit,
		Interpretation: s.Interpretation,
		Explanation:    parts,
		Inputs:         vals.Echo(),
	}
	if s.Tiered() {
		band, ok := s.Tiers.Classify(score)
		if !ok {
			return nil, fmt.Errorf("engine.Evaluate: %s score %g matches no tier", s.ID, score)
		}
		res.Tier = band.Tier
		res.Interpretation = band.Interpretation
	}
	if pct, ok := s.Estimates.Lookup(score); ok {
		res.RiskPercent = &pct
		res.RiskOutcome = s.Estimates.Outcome
	}
	if adv, ok := s.Guidance.Lookup(score); ok {
		res.Recommendations = slices.Clone(adv.Recommendations)
		res.Pathway = slices.Clone(adv.Pathway)
	}

	e.logger.Debug("evaluated", "scale", s.ID, "score", score, "tier", res.Tier)
	return res, nil
}

// Check validates input for the named scale without scoring and returns every violation.
func (e *Engine) Check(scale string, in risk.Input) ([]risk.ValidationError, error) {
	s, err := e.catalog.Get(scale)
	if err != nil {
		return nil, err
	}
	_, errs := schema.Validate(s, in)
	return errs, nil
}
