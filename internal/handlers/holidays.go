package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type HolidayHandler struct {
	service *app.Service
}

func NewHolidayHandler(service *app.Service) *HolidayHandler {
	return &HolidayHandler{service: service}
}

func (h *HolidayHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.service.Store.ListHolidays()
	if err != nil {
		logger.Error.Printf("Failed to list holidays: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch holidays")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": holidays,
	})
}

// HandleCreate declares a holiday. Attendance already recorded for the date
// stays put; the aggregation engine stops counting the date from now on.
func (h *HolidayHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var holiday models.Holiday
	if err := json.NewDecoder(r.Body).Decode(&holiday); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.AddHoliday(r.Context(), &holiday); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "date is already a holiday")
			return
		}
		logger.Error.Printf("Failed to create holiday: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, holiday)
}

func (h *HolidayHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RemoveHoliday(r.Context(), date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "no holiday on that date")
			return
		}
		logger.Error.Printf("Failed to delete holiday %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, "failed to delete holiday")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
