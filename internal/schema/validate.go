// Package schema validates raw scale inputs against a scale's declared fields.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/risk"
)

// Validate checks every declared field of s in declaration order and returns
// the typed values. Fields not declared by the scale are ignored.
// When any violation is found the returned Values must not be used.
func Validate(s *catalog.Scale, in risk.Input) (risk.Values, []risk.ValidationError) {
	vals := risk.NewValues()
	var errs []risk.ValidationError

	for _, f := range s.Fields {
		raw, ok := in[f.Name]
		if !ok || raw == nil {
			errs = append(errs, risk.ValidationError{Scale: s.ID, Field: f.Name, Constraint: "required"})
			continue
		}
		if msg := validateField(f, raw, vals); msg != "" {
			errs = append(errs, risk.ValidationError{Scale: s.ID, Field: f.Name, Constraint: msg})
		}
	}
	return vals, errs
}

// Unknown returns the input keys the scale does not declare, sorted.
func Unknown(s *catalog.Scale, in risk.Input) []string {
	var out []string
	for k := range in {
		if _, ok := s.Field(k); !ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func validateField(f catalog.Field, raw any, vals risk.Values) string {
	switch f.Kind {
	case risk.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Sprintf("must be a boolean, got %T", raw)
		}
		vals.SetBool(f.Name, b)

	case risk.KindInt:
		n, ok := toFloat(raw)
		if !ok {
			return fmt.Sprintf("must be an integer, got %T", raw)
		}
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return fmt.Sprintf("must be an integer, got %g", n)
		}
		if msg := checkBounds(f, n); msg != "" {
			return msg
		}
		vals.SetInt(f.Name, int(n))

	case risk.KindReal:
		n, ok := toFloat(raw)
		if !ok {
			return fmt.Sprintf("must be a number, got %T", raw)
		}
		if math.IsInf(n, 0) {
			return "must be finite"
		}
		if msg := checkBounds(f, n); msg != "" {
			return msg
		}
		vals.SetReal(f.Name, n)

	case risk.KindEnum:
		str, ok := raw.(string)
		if !ok {
			return fmt.Sprintf("must be one of %s, got %T", strings.Join(f.Options, ", "), raw)
		}
		opt, ok := matchOption(f.Options, str)
		if !ok {
			return fmt.Sprintf("must be one of %s, got %q", strings.Join(f.Options, ", "), str)
		}
		vals.SetEnum(f.Name, opt)

	default:
		return fmt.Sprintf("unsupported kind %q", f.Kind)
	}
	return ""
}

// toFloat accepts the numeric types produced by JSON, YAML, and Go callers.
// NaN is rejected here so it never reaches a bounds check.
func toFloat(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func checkBounds(f catalog.Field, n float64) string {
	switch {
	case f.Min != nil && f.Max != nil && (n < *f.Min || n > *f.Max):
		return fmt.Sprintf("must be between %g and %g, got %g", *f.Min, *f.Max, n)
	case f.Min != nil && n < *f.Min:
		return fmt.Sprintf("must be >= %g, got %g", *f.Min, n)
	case f.Max != nil && n > *f.Max:
		return fmt.Sprintf("must be <= %g, got %g", *f.Max, n)
	}
	return ""
}

func matchOption(options []string, s string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(o, strings.TrimSpace(s)) {
			return o, true
		}
	}
	return "", false
}
