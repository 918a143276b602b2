package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/medscore/internal/dosing"
	"github.com/dshills/medscore/internal/engine"
	"github.com/dshills/medscore/internal/risk"
)

func newCalculator(t *testing.T, e *engine.Engine) *dosing.Calculator {
	t.Helper()
	f, err := dosing.Load()
	require.NoError(t, err)
	return dosing.New(f, e)
}

func newTestServer(t *testing.T) (http.Handler, *prometheus.Registry) {
	t.Helper()
	e, err := engine.Default()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(e, newCalculator(t, e), m, logger), reg
}

// scrape returns the text exposition of reg.
func scrape(t *testing.T, reg prometheus.Gatherer) string {
	t.Helper()
	rec := do(t, NewMetricsRouter(reg), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListScales(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/v1/scales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Scales []struct {
			ID string `json:"id"`
		} `json:"scales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Scales, len(risk.Scales))
}

func TestGetScale(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/scales/CURB-65", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "curb65", body["id"])
	assert.NotEmpty(t, body["fields"])
	assert.NotEmpty(t, body["references"])

	rec = do(t, h, http.MethodGet, "/api/v1/scales/apache2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluate(t *testing.T) {
	h, reg := newTestServer(t)
	body := `{"inputs":{"eye_response":2,"verbal_response":2,"motor_response":4,"note":"ignored"}}`
	rec := do(t, h, http.MethodPost, "/api/v1/scales/gcs/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.EvaluationID, 36)
	require.NotNil(t, resp.Result)
	assert.Equal(t, risk.ScaleGCS, resp.Result.Scale)
	assert.Equal(t, 8.0, resp.Result.Score)
	assert.Equal(t, risk.TierHigh, resp.Result.Tier)
	assert.NotContains(t, resp.Result.Inputs, "note")

	out := scrape(t, reg)
	assert.Contains(t, out, `medscore_evaluations_total{outcome="ok",scale="gcs"} 1`)
	assert.Contains(t, out, `medscore_tier_assignments_total{scale="gcs",tier="high"} 1`)
}

func TestEvaluateUntiered(t *testing.T) {
	h, reg := newTestServer(t)
	body := `{"inputs":{"age":65,"weight":80,"creatinine":2.0,"sex":"male"}}`
	rec := do(t, h, http.MethodPost, "/api/v1/scales/crcl/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var id string
	require.NoError(t, json.Unmarshal(resp["evaluation_id"], &id))
	assert.NotEmpty(t, id)

	var result map[string]any
	require.NoError(t, json.Unmarshal(resp["result"], &result))
	assert.Equal(t, "cockcroft_gault", result["scale"])
	assert.InDelta(t, 41.667, result["score"], 0.001)
	assert.Equal(t, 42.0, result["rounded_score"])
	assert.Equal(t, "mL/min", result["unit"])
	assert.NotContains(t, result, "tier")
	assert.Contains(t, scrape(t, reg), `medscore_tier_assignments_total{scale="cockcroft_gault",tier="none"} 1`)
}

func TestEvaluateErrors(t *testing.T) {
	h, reg := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		field  string
	}{
		{"out of range", "/api/v1/scales/gcs/evaluate", `{"inputs":{"eye_response":7,"verbal_response":2,"motor_response":4}}`, http.StatusUnprocessableEntity, "eye_response"},
		{"missing field", "/api/v1/scales/qsofa/evaluate", `{"inputs":{"altered_mentation":true}}`, http.StatusUnprocessableEntity, "respiratory_rate"},
		{"fractional integer", "/api/v1/scales/heart/evaluate", `{"inputs":{"history":1.5,"ecg":0,"age":40,"risk_factors":0,"troponin":0}}`, http.StatusUnprocessableEntity, "history"},
		{"string for bool", "/api/v1/scales/qsofa/evaluate", `{"inputs":{"altered_mentation":"true","respiratory_rate":20,"systolic_bp":120}}`, http.StatusUnprocessableEntity, "altered_mentation"},
		{"unknown scale", "/api/v1/scales/apache2/evaluate", `{"inputs":{}}`, http.StatusNotFound, ""},
		{"malformed JSON", "/api/v1/scales/gcs/evaluate", `{"inputs":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
	out := scrape(t, reg)
	assert.Contains(t, out, `medscore_evaluations_total{outcome="unknown_scale",scale="unknown"} 1`)
	assert.Contains(t, out, `medscore_evaluations_total{outcome="invalid",scale="qsofa"} 2`)
	assert.Contains(t, out, `medscore_evaluations_total{outcome="invalid",scale="gcs"} 1`)
}

func TestEvaluateBodyTooLarge(t *testing.T) {
	h, _ := newTestServer(t)
	big := `{"inputs":{"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}}`
	rec := do(t, h, http.MethodPost, "/api/v1/scales/gcs/evaluate", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCheck(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/scales/heart/check", `{"inputs":{"history":3,"ecg":0}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Errors, 4)
	assert.Equal(t, "history", resp.Errors[0].Field)

	rec = do(t, h, http.MethodPost, "/api/v1/scales/gcs/check", `{"inputs":{"eye_response":4,"verbal_response":5,"motor_response":6}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"errors":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/scales/nope/check", `{"inputs":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatch(t *testing.T) {
	h, _ := newTestServer(t)
	req := BatchRequest{Items: []BatchItem{
		{Scale: "qsofa", Inputs: risk.Input{"altered_mentation": false, "respiratory_rate": 18, "systolic_bp": 120}},
		{Scale: "gcs", Inputs: risk.Input{"eye_response": 1, "verbal_response": 1, "motor_response": 1}},
		{Scale: "meld", Inputs: risk.Input{"creatinine": 1.0, "bilirubin": 1.0, "inr": 1.0}},
		{Scale: "gcs", Inputs: risk.Input{"eye_response": 9}},
	}}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/v1/evaluate", string(data))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, risk.TierCritical, resp.Results[0].Tier)
	assert.Equal(t, risk.ScaleMELD, resp.Results[2].Scale)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 3, resp.Errors[0].Index)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Untiered)

	rec = do(t, h, http.MethodPost, "/api/v1/evaluate", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRouter(t *testing.T) {
	h, reg := newTestServer(t)
	do(t, h, http.MethodPost, "/api/v1/scales/qsofa/evaluate", `{"inputs":{"altered_mentation":true,"respiratory_rate":26,"systolic_bp":110}}`)

	mr := NewMetricsRouter(reg)
	rec := do(t, mr, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, mr, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medscore_evaluations_total{outcome="ok",scale="qsofa"} 1`)
	assert.Contains(t, rec.Body.String(), "medscore_evaluation_duration_seconds")
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	NewMetrics(reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRequestLoggerOmitsBody(t *testing.T) {
	e, err := engine.Default()
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := NewRouter(e, newCalculator(t, e), nil, logger)

	rec := do(t, h, http.MethodPost, "/api/v1/scales/qsofa/evaluate",
		`{"inputs":{"altered_mentation":true,"respiratory_rate":26,"systolic_bp":110,"patient":"Jane Doe"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "evaluation_id=")
	assert.NotContains(t, buf.String(), "Jane Doe")
}

func TestListMedications(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/v1/medications", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Medications []struct {
			ID string `json:"id"`
		} `json:"medications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Medications, 9)
	assert.Equal(t, "gentamicin", body.Medications[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/medications/Heparin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"standard_dose"`)

	rec = do(t, h, http.MethodGet, "/api/v1/medications/warfarin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDose(t *testing.T) {
	h, reg := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/medications/gentamicin/dose",
		`{"inputs":{"age":65,"weight":80,"creatinine":2.0,"sex":"female","child_pugh":"B"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DoseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CalculationID)
	require.NotNil(t, resp.Dose)
	assert.Equal(t, 35, resp.Dose.Clearance)
	assert.Equal(t, 0.5, resp.Dose.RenalFactor)
	assert.Equal(t, 0.75, resp.Dose.HepaticFactor)
	assert.Equal(t, "standard", resp.Dose.Primary.Name)
	assert.InDelta(t, 180.0, resp.Dose.Primary.Adjusted, 1e-9)

	assert.Contains(t, scrape(t, reg), `medscore_dose_calculations_total{medication="gentamicin",outcome="ok"} 1`)
}

func TestDoseErrors(t *testing.T) {
	h, reg := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		field  string
	}{
		{"unknown medication", "/api/v1/medications/warfarin/dose", `{"inputs":{}}`, http.StatusNotFound, ""},
		{"bad child-pugh", "/api/v1/medications/heparin/dose",
			`{"inputs":{"age":65,"weight":80,"creatinine":2.0,"sex":"male","child_pugh":"D"}}`, http.StatusUnprocessableEntity, "child_pugh"},
		{"missing weight", "/api/v1/medications/heparin/dose",
			`{"inputs":{"age":65,"creatinine":2.0,"sex":"male"}}`, http.StatusUnprocessableEntity, "weight"},
		{"malformed", "/api/v1/medications/heparin/dose", `{"inputs":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.field == "" {
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.field, body["field"])
		})
	}

	metrics := scrape(t, reg)
	assert.Contains(t, metrics, `medscore_dose_calculations_total{medication="unknown",outcome="unknown_medication"} 1`)
	assert.Contains(t, metrics, `medscore_dose_calculations_total{medication="heparin",outcome="invalid"} 2`)
}
