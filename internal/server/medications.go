package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dshills/medscore/internal/dosing"
	"github.com/dshills/medscore/internal/risk"
)

// DoseResponse carries one computed regimen.
type DoseResponse struct {
	CalculationID string         `json:"calculation_id"`
	Dose          *dosing.Result `json:"dose"`
}

// MedicationsHandler serves the formulary and dose calculations.
type MedicationsHandler struct {
	dosing  *dosing.Calculator
	metrics *Metrics
	logger  *slog.Logger
}

// NewMedicationsHandler returns a handler over c.
func NewMedicationsHandler(c *dosing.Calculator, m *Metrics, logger *slog.Logger) *MedicationsHandler {
	return &MedicationsHandler{dosing: c, metrics: m, logger: logger}
}

// List returns every formulary entry.
func (h *MedicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]*dosing.Medication{"medications": h.dosing.Formulary().List()})
}

// Get returns one formulary entry.
func (h *MedicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.dosing.Formulary().Get(chi.URLParam(r, "medication"))
	if err != nil {
		writeDoseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Dose computes a regimen from the request inputs.
func (h *MedicationsHandler) Dose(w http.ResponseWriter, r *http.Request) {
	med := chi.URLParam(r, "medication")
	var req EvaluateRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.dosing.Dose(med, req.Inputs)
	h.metrics.observeDose(h.dosing.Formulary(), med, doseOutcome(err))
	if err != nil {
		writeDoseError(w, err)
		return
	}

	id := uuid.NewString()
	h.logger.Info("dose calculation",
		"calculation_id", id,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"medication", res.Medication,
		"renal_factor", res.RenalFactor,
		"hepatic_factor", res.HepaticFactor,
	)
	writeJSON(w, http.StatusOK, DoseResponse{CalculationID: id, Dose: res})
}

func doseOutcome(err error) string {
	var ie *dosing.InputError
	var ve *risk.ValidationError
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, dosing.ErrUnknownMedication):
		return outcomeUnknownMedication
	case errors.As(err, &ie), errors.As(err, &ve):
		return outcomeInvalid
	default:
		return outcomeError
	}
}

func writeDoseError(w http.ResponseWriter, err error) {
	var ie *dosing.InputError
	switch {
	case errors.Is(err, dosing.ErrUnknownMedication):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &ie):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"field":      ie.Field,
			"constraint": ie.Constraint,
		})
	default:
		writeEngineError(w, err)
	}
}
