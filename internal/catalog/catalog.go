// Package catalog loads the built-in scale definitions: field schemas,
// threshold tables, interpretations, and literature references.
package catalog

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/dshills/medscore/internal/risk"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Field declares one input of a scale.
// Min and Max are inclusive; nil means unbounded.
type Field struct {
	Name        string    `yaml:"name" json:"name"`
	Kind        risk.Kind `yaml:"kind" json:"kind"`
	Min         *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Options     []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Unit        string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	Description string    `yaml:"description" json:"description"`
}

// Reference is a published source for a scale.
type Reference struct {
	Authors string `yaml:"authors" json:"authors"`
	Year    int    `yaml:"year" json:"year"`
	Title   string `yaml:"title" json:"title"`
	Journal string `yaml:"journal" json:"journal"`
	Volume  string `yaml:"volume,omitempty" json:"volume,omitempty"`
	Pages   string `yaml:"pages,omitempty" json:"pages,omitempty"`
}

// Scale is the static definition of one scoring scale.
type Scale struct {
	ID             risk.ScaleID    `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	Description    string          `yaml:"description" json:"description"`
	Categories     []string        `yaml:"categories" json:"categories"`
	Unit           string          `yaml:"unit,omitempty" json:"unit,omitempty"`
	Min            float64         `yaml:"min" json:"min"`
	Max            float64         `yaml:"max" json:"max"`
	Interpretation string          `yaml:"interpretation,omitempty" json:"interpretation,omitempty"`
	Fields         []Field         `yaml:"fields" json:"fields"`
	Tiers          risk.Table      `yaml:"tiers,omitempty" json:"tiers,omitempty"`
	Estimates      *risk.Estimates `yaml:"estimates,omitempty" json:"estimates,omitempty"`
	Guidance       risk.Guidance   `yaml:"guidance,omitempty" json:"guidance,omitempty"`
	References     []Reference     `yaml:"references" json:"references"`
}

// Field returns the named field definition.
func (s *Scale) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Tiered reports whether the scale maps scores to risk tiers.
func (s *Scale) Tiered() bool {
	return len(s.Tiers) > 0
}

// Catalog is an immutable set of scale definitions.
type Catalog struct {
	scales map[risk.ScaleID]*Scale
	order  []risk.ScaleID
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Load returns the built-in catalog, parsing the embedded definitions on first use.
func Load() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = loadBuiltin()
	})
	return builtin, builtinErr
}

func loadBuiltin() (*Catalog, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	var scales []*Scale
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("catalog.Load: %s: %w", e.Name(), err)
		}
		if want := strings.TrimSuffix(e.Name(), ".yaml"); string(s.ID) != want {
			return nil, fmt.Errorf("catalog.Load: %s declares id %q", e.Name(), s.ID)
		}
		scales = append(scales, s)
	}
	return New(scales...)
}

// Parse decodes and checks a single scale definition.
func Parse(data []byte) (*Scale, error) {
	var s Scale
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := check(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// New builds a catalog from scale definitions. Every supported scale must be present exactly once.
func New(scales ...*Scale) (*Catalog, error) {
	c := &Catalog{scales: make(map[risk.ScaleID]*Scale, len(scales))}
	for _, s := range scales {
		if _, dup := c.scales[s.ID]; dup {
			return nil, &risk.ConfigurationError{Scale: string(s.ID), Reason: "defined more than once"}
		}
		c.scales[s.ID] = s
	}
	for _, id := range risk.Scales {
		if _, ok := c.scales[id]; !ok {
			return nil, &risk.ConfigurationError{Scale: string(id), Reason: "no definition"}
		}
		c.order = append(c.order, id)
	}
	return c, nil
}

// Get returns the definition for a scale name or alias.
func (c *Catalog) Get(name string) (*Scale, error) {
	id, err := risk.ParseScaleID(name)
	if err != nil {
		return nil, err
	}
	s, ok := c.scales[id]
	if !ok {
		return nil, &risk.ConfigurationError{Scale: name, Reason: "no definition"}
	}
	return s, nil
}

// List returns every scale in stable order.
func (c *Catalog) List() []*Scale {
	out := make([]*Scale, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.scales[id])
	}
	return out
}

func check(s *Scale) error {
	fail := func(format string, args ...any) error {
		return &risk.ConfigurationError{Scale: string(s.ID), Reason: fmt.Sprintf(format, args...)}
	}
	if !s.ID.Valid() {
		return fail("unsupported scale id")
	}
	if s.Name == "" {
		return fail("name is required")
	}
	if s.Min > s.Max {
		return fail("min %g exceeds max %g", s.Min, s.Max)
	}
	if len(s.Fields) == 0 {
		return fail("no fields declared")
	}
	seen := make(map[string]bool)
	for _, f := range s.Fields {
		if f.Name == "" {
			return fail("field with empty name")
		}
		if seen[f.Name] {
			return fail("field %q declared twice", f.Name)
		}
		seen[f.Name] = true
		if !f.Kind.Valid() {
			return fail("field %q: invalid kind %q", f.Name, f.Kind)
		}
		if f.Kind == risk.KindEnum && len(f.Options) == 0 {
			return fail("field %q: enum without options", f.Name)
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fail("field %q: min exceeds max", f.Name)
		}
	}
	if err := s.Tiers.Check(s.Min, s.Max); err != nil {
		return fail("tiers: %v", err)
	}
	if err := s.Estimates.Check(s.Min, s.Max); err != nil {
		return fail("estimates: %v", err)
	}
	if err := s.Guidance.Check(s.Min, s.Max); err != nil {
		return fail("guidance: %v", err)
	}
	if !s.Tiered() && s.Interpretation == "" {
		return fail("untiered scale needs an interpretation")
	}
	return nil
}
