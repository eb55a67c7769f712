package payroll

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maplehq/backend-maple/internal/common"
)

// Handler wires the payroll service to HTTP.
type Handler struct {
	Svc *Service
}

// Frequency returns the detected pay cadence for an employee.
func (h *Handler) Frequency(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	result, err := h.Svc.Frequency(r.Context(), employeeID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to detect pay frequency", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// ROE returns the Record of Employment totals for an employee.
func (h *Handler) ROE(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	result, err := h.Svc.ROE(r.Context(), employeeID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute ROE", nil)
		return
	}
	if result == nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no payroll history for employee", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// WeeklyROE returns the per-ISO-week disclosure block for an employee.
func (h *Handler) WeeklyROE(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	buckets, err := h.Svc.WeeklyROE(r.Context(), employeeID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute weekly breakdown", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": buckets})
}

// T4 returns annual tax-form box totals for an employee and tax year.
func (h *Handler) T4(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	year := common.QueryInt(r, "year", 0)
	if year < 2000 || year > 2200 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "year query parameter is required", nil)
		return
	}
	result, err := h.Svc.T4(r.Context(), employeeID, year)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to compute T4", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *Handler) employeeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payroll service not configured", nil)
		return uuid.Nil, false
	}
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid employee id", nil)
		return uuid.Nil, false
	}
	return id, true
}
