package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/engine"
	"github.com/dshills/medscore/internal/risk"
)

const maxBatchItems = 100

// EvaluateRequest is the body of an evaluate or check call.
type EvaluateRequest struct {
	Inputs risk.Input `json:"inputs"`
}

// EvaluateResponse carries one scored result.
type EvaluateResponse struct {
	EvaluationID string       `json:"evaluation_id"`
	Result       *risk.Result `json:"result"`
}

// CheckResponse lists every validation failure for an input.
type CheckResponse struct {
	Valid  bool                   `json:"valid"`
	Errors []risk.ValidationError `json:"errors"`
}

// BatchItem is one scale and input in a batch request.
type BatchItem struct {
	Scale  string     `json:"scale"`
	Inputs risk.Input `json:"inputs"`
}

// BatchRequest scores several scales for the same patient.
type BatchRequest struct {
	Items []BatchItem `json:"items"`
}

// BatchError reports a failed item by its position in the request.
type BatchError struct {
	Index int    `json:"index"`
	Scale string `json:"scale"`
	Error string `json:"error"`
}

// BatchResponse holds results ordered by tier severity.
type BatchResponse struct {
	EvaluationID string        `json:"evaluation_id"`
	Results      []risk.Result `json:"results"`
	Errors       []BatchError  `json:"errors,omitempty"`
	Summary      risk.Summary  `json:"summary"`
}

// ScalesHandler serves the catalog and scoring endpoints.
type ScalesHandler struct {
	engine  *engine.Engine
	metrics *Metrics
	logger  *slog.Logger
}

// NewScalesHandler returns a handler over e.
func NewScalesHandler(e *engine.Engine, m *Metrics, logger *slog.Logger) *ScalesHandler {
	return &ScalesHandler{engine: e, metrics: m, logger: logger}
}

// List returns every scale definition.
func (h *ScalesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]*catalog.Scale{"scales": h.engine.Catalog().List()})
}

// Get returns one scale definition.
func (h *ScalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Catalog().Get(chi.URLParam(r, "scale"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Evaluate scores the request inputs against one scale.
func (h *ScalesHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	scale := chi.URLParam(r, "scale")
	var req EvaluateRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.evaluate(scale, req.Inputs)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	id := uuid.NewString()
	h.logger.Info("evaluation",
		"evaluation_id", id,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"scale", res.Scale,
		"tier", res.Tier,
	)
	writeJSON(w, http.StatusOK, EvaluateResponse{EvaluationID: id, Result: res})
}

// Check validates the request inputs without scoring.
func (h *ScalesHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !decode(w, r, &req) {
		return
	}
	errs, err := h.engine.Check(chi.URLParam(r, "scale"), req.Inputs)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if errs == nil {
		errs = []risk.ValidationError{}
	}
	writeJSON(w, http.StatusOK, CheckResponse{Valid: len(errs) == 0, Errors: errs})
}

// Batch scores several scales. Item failures are reported without failing the batch.
func (h *ScalesHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items required"})
		return
	}
	if len(req.Items) > maxBatchItems {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "too many items", "max": maxBatchItems})
		return
	}

	resp := BatchResponse{EvaluationID: uuid.NewString(), Results: []risk.Result{}}
	for i, item := range req.Items {
		res, err := h.evaluate(item.Scale, item.Inputs)
		if err != nil {
			resp.Errors = append(resp.Errors, BatchError{Index: i, Scale: item.Scale, Error: err.Error()})
			continue
		}
		resp.Results = append(resp.Results, *res)
	}
	risk.SortResults(resp.Results)
	resp.Summary = risk.Summarize(resp.Results)

	h.logger.Info("batch evaluation",
		"evaluation_id", resp.EvaluationID,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"scored", len(resp.Results),
		"failed", len(resp.Errors),
		"highest", resp.Summary.Highest(),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScalesHandler) evaluate(scale string, in risk.Input) (*risk.Result, error) {
	start := time.Now()
	res, err := h.engine.Evaluate(scale, in)
	h.metrics.observe(scale, outcome(err), res, time.Since(start))
	return res, err
}

func outcome(err error) string {
	var ve *risk.ValidationError
	var ce *risk.ConfigurationError
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &ve):
		return outcomeInvalid
	case errors.As(err, &ce):
		return outcomeUnknownScale
	default:
		return outcomeError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeEngineError(w http.ResponseWriter, err error) {
	var ve *risk.ValidationError
	var ce *risk.ConfigurationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"scale":      ve.Scale,
			"field":      ve.Field,
			"constraint": ve.Constraint,
		})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":  err.Error(),
			"scale":  ce.Scale,
			"reason": ce.Reason,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
