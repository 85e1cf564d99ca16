package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/metrics"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/rollcall"
)

type AnalyticsHandler struct {
	service *app.Service
}

func NewAnalyticsHandler(service *app.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// HandleMonthly serves per-student rollups for one month. The month and
// range ride along in the response so clients keying caches by query
// parameters can drop late responses for parameters they no longer show.
func (h *AnalyticsHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	anchor, err := monthParam(r, h.service.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.service.MonthlySummaries(r.Context(), anchor)
	if err != nil {
		logger.Error.Printf("Failed to compute monthly summaries: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summaries")
		return
	}

	first, last := models.MonthRange(anchor)
	for _, s := range summaries {
		if pct, err := strconv.ParseFloat(s.Percentage, 64); err == nil {
			metrics.AttendancePercentage.WithLabelValues(first.Format("2006-01")).Observe(pct)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"month":       first.Format("2006-01"),
		"range_start": first,
		"range_end":   last,
		"stats":       summaries,
	})
}

// HandleDaily serves the date-wise view: each student with status and
// absence reason for one date.
func (h *AnalyticsHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	statuses, holiday, err := h.service.DaySummary(date, nil)
	if err != nil {
		logger.Error.Printf("Failed to compute day summary for %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, "failed to compute day summary")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date,
		"holiday": holiday,
		"stats":   statuses,
	})
}

// HandleDailyPreview overlays unsaved draft edits on top of the persisted
// day view. Drafts stay client-side; nothing here writes.
func (h *AnalyticsHandler) HandleDailyPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   models.Date               `json:"date"`
		Drafts map[string]rollcall.Draft `json:"drafts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	for id, d := range req.Drafts {
		if err := d.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid draft for student %s", id))
			return
		}
	}

	statuses, holiday, err := h.service.DaySummary(req.Date, req.Drafts)
	if err != nil {
		logger.Error.Printf("Failed to preview day %s: %v", req.Date, err)
		writeError(w, http.StatusInternalServerError, "failed to compute preview")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    req.Date,
		"holiday": holiday,
		"stats":   statuses,
	})
}

func (h *AnalyticsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, workingDays, err := h.service.Dashboard(r.Context())
	if err != nil {
		logger.Error.Printf("Failed to assemble dashboard: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to assemble dashboard")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"counts":             counts,
		"working_days_month": workingDays,
	})
}
