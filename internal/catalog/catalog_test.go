package catalog

import (
	"errors"
	"testing"

	"github.com/dshills/medscore/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinAll(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	for _, id := range risk.Scales {
		t.Run(string(id), func(t *testing.T) {
			s, err := cat.Get(string(id))
			require.NoError(t, err)
			assert.Equal(t, id, s.ID)
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Description)
			assert.NotEmpty(t, s.Categories)
			assert.NotEmpty(t, s.Fields)
			assert.NotEmpty(t, s.References)
			assert.NoError(t, s.Tiers.Check(s.Min, s.Max))
			assert.NotEmpty(t, s.Guidance, "every scale carries guidance")
			for _, f := range s.Fields {
				assert.NotEmpty(t, f.Description, "field %s", f.Name)
				if f.Kind == risk.KindInt || f.Kind == risk.KindReal {
					assert.NotNil(t, f.Min, "field %s has no lower bound", f.Name)
					assert.NotNil(t, f.Max, "field %s has no upper bound", f.Name)
				}
			}
		})
	}
}

func TestLoadIsShared(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestTierSets(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	tests := []struct {
		scale string
		want  []risk.Tier
	}{
		{"qsofa", []risk.Tier{risk.TierLow, risk.TierHigh}},
		{"cha2ds2vasc", []risk.Tier{risk.TierLow, risk.TierMedium, risk.TierHigh, risk.TierCritical}},
		{"gcs", []risk.Tier{risk.TierCritical, risk.TierHigh, risk.TierMedium, risk.TierLow}},
		{"curb65", []risk.Tier{risk.TierLow, risk.TierMedium, risk.TierHigh, risk.TierCritical}},
		{"heart", []risk.Tier{risk.TierLow, risk.TierMedium, risk.TierHigh}},
		{"nihss", []risk.Tier{risk.TierLow, risk.TierMedium, risk.TierHigh, risk.TierCritical}},
		{"meld", nil},
		{"cockcroft_gault", nil},
	}
	for _, tt := range tests {
		t.Run(tt.scale, func(t *testing.T) {
			s, err := cat.Get(tt.scale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Tiers.Tiers())
			assert.Equal(t, tt.want != nil, s.Tiered())
			if !s.Tiered() {
				assert.NotEmpty(t, s.Interpretation)
			}
		})
	}
}

func TestNIHSSItemBounds(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	s, err := cat.Get("nihss")
	require.NoError(t, err)

	require.Len(t, s.Fields, 15)
	var sum float64
	for _, f := range s.Fields {
		assert.Equal(t, 0.0, *f.Min, f.Name)
		sum += *f.Max
	}
	assert.Equal(t, s.Max, sum, "item maxima must add up to the scale maximum")

	arm, ok := s.Field("motor_arm_left")
	require.True(t, ok)
	assert.Equal(t, 4.0, *arm.Max)
	gaze, ok := s.Field("gaze")
	require.True(t, ok)
	assert.Equal(t, 2.0, *gaze.Max)
}

func TestGetAlias(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	s, err := cat.Get("CURB-65")
	require.NoError(t, err)
	assert.Equal(t, risk.ScaleCURB65, s.ID)
}

func TestGetNotFound(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	_, err = cat.Get("apache2")
	var ce *risk.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestList(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	list := cat.List()
	require.Len(t, list, len(risk.Scales))
	for i, s := range list {
		assert.Equal(t, risk.Scales[i], s.ID)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "id: [qsofa"},
		{"unknown id", "id: apache2\nname: x\nmin: 0\nmax: 1\nfields: [{name: a, kind: bool}]\ninterpretation: x"},
		{"no fields", "id: qsofa\nname: x\nmin: 0\nmax: 3\ninterpretation: x"},
		{"bad kind", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: text}]\ninterpretation: x"},
		{"enum without options", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: enum}]\ninterpretation: x"},
		{"duplicate field", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: bool}, {name: a, kind: bool}]\ninterpretation: x"},
		{"gap in tiers", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: bool}]\ntiers: [{from: 0, below: 1, tier: low}, {from: 2, tier: high}]"},
		{"guidance gap", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: bool}]\ninterpretation: x\nguidance: [{from: 0, below: 1, recommendations: [a]}, {from: 2, recommendations: [b]}]"},
		{"guidance bad priority", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: bool}]\ninterpretation: x\nguidance: [{from: 0, recommendations: [a], pathway: [{priority: later, action: b}]}]"},
		{"estimates without outcome", "id: qsofa\nname: x\nmin: 0\nmax: 3\nfields: [{name: a, kind: bool}]\ninterpretation: x\nestimates: {bands: [{from: 0, percent: 5}]}"},
		{"untiered without interpretation", "id: meld\nname: x\nmin: 6\nmax: 40\nfields: [{name: a, kind: real}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestNewRequiresEveryScale(t *testing.T) {
	s, err := Parse([]byte("id: qsofa\nname: q\nmin: 0\nmax: 3\nfields: [{name: a, kind: bool}]\ninterpretation: x"))
	require.NoError(t, err)

	_, err = New(s)
	var ce *risk.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "no definition", ce.Reason)

	_, err = New(s, s)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "defined more than once", ce.Reason)
}

func TestEstimateOutcomes(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	tests := []struct {
		scale   string
		outcome string
	}{
		{"cha2ds2vasc", "annual stroke risk"},
		{"curb65", "30-day mortality"},
		{"heart", "6-week major adverse cardiac events"},
		{"meld", "3-month mortality"},
		{"cockcroft_gault", ""},
	}
	for _, tt := range tests {
		t.Run(tt.scale, func(t *testing.T) {
			s, err := cat.Get(tt.scale)
			require.NoError(t, err)
			if tt.outcome == "" {
				assert.Nil(t, s.Estimates)
				return
			}
			require.NotNil(t, s.Estimates)
			assert.Equal(t, tt.outcome, s.Estimates.Outcome)
			assert.NoError(t, s.Estimates.Check(s.Min, s.Max))
		})
	}
}
