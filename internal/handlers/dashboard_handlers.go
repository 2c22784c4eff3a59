package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"oilgas-dashboard/internal/exporter"
	"oilgas-dashboard/internal/models"
	"oilgas-dashboard/internal/services"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService *services.DashboardService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
		metrics:          metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Field   string `json:"field,omitempty"`
}

// ParseSelection reads filter parameters from a query string. Absent
// parameters stay nil so the service can apply dataset defaults. A present
// but empty commodity parameter selects no commodities.
func ParseSelection(q url.Values) (services.Selection, error) {
	var sel services.Selection

	for _, name := range []string{"year_min", "year_max"} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			return sel, &models.ValidationError{
				Field:   name,
				Value:   raw,
				Message: fmt.Sprintf("invalid %s, expected an integer year", name),
			}
		}
		if name == "year_min" {
			sel.YearMin = &year
		} else {
			sel.YearMax = &year
		}
	}

	if values, ok := q["commodity"]; ok {
		sel.Commodities = make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				sel.Commodities = append(sel.Commodities, v)
			}
		}
	}

	if state := strings.TrimSpace(q.Get("state")); state != "" {
		sel.State = &state
	}

	if raw := strings.TrimSpace(q.Get("include_withheld")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return sel, &models.ValidationError{
				Field:   "include_withheld",
				Value:   raw,
				Message: "invalid include_withheld, expected true or false",
			}
		}
		sel.IncludeWithheld = &include
	}

	return sel, nil
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard", err)
		return
	}

	result, err := h.dashboardService.Query(ctx, sel)
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard", err)
		return
	}

	h.sendJSON(w, result, http.StatusOK)
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.dashboardService.Options(r.Context())
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard/options", err)
		return
	}

	h.sendJSON(w, options, http.StatusOK)
}

// ExportWorkbook handles GET /api/dashboard/export.xlsx
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard/export.xlsx", err)
		return
	}

	result, err := h.dashboardService.Query(ctx, sel)
	if err != nil {
		h.sendServiceError(w, r, "/api/dashboard/export.xlsx", err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteWorkbook(&buf, result); err != nil {
		h.logger.Error(ctx, "[API_EXPORT_ERROR] Failed to render workbook", logging.Fields{
			"source": result.SourcePath,
		}, err)
		h.metrics.RecordAPIError("export_error", "/api/dashboard/export.xlsx")
		h.sendError(w, "failed to render workbook", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("oil_gas_dashboard_%d_%d.xlsx", result.Filter.YearMin, result.Filter.YearMax)
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.dashboardService.HealthCheck(ctx); err != nil {
		status["status"] = "unhealthy"
		status["error"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{"status": status["status"]})
	h.sendJSON(w, status, code)
}

// sendServiceError maps a service error to an HTTP status
func (h *DashboardHandler) sendServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var (
		validation *models.ValidationError
		notFound   *models.SourceNotFoundError
		unreadable *models.UnreadableSourceError
		errorType  = "internal_error"
		statusCode = http.StatusInternalServerError
		message    = "failed to compute dashboard"
		field      string
	)

	switch {
	case errors.As(err, &validation):
		errorType, statusCode, message, field = "validation_error", http.StatusBadRequest, validation.Message, validation.Field
	case errors.As(err, &notFound):
		errorType, statusCode, message = "source_not_found", http.StatusServiceUnavailable, notFound.Error()
	case errors.As(err, &unreadable):
		errorType, message = "unreadable_source", unreadable.Error()
	}

	if statusCode >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint":   endpoint,
			"error_type": errorType,
		}, err)
	}
	h.metrics.RecordAPIError(errorType, endpoint)

	h.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
		Field:   field,
	}, statusCode)
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/dashboard/options", h.GetOptions).Methods("GET")
	router.HandleFunc("/api/dashboard/export.xlsx", h.ExportWorkbook).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")
}
