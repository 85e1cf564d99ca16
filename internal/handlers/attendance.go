package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/metrics"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type AttendanceHandler struct {
	service *app.Service
}

func NewAttendanceHandler(service *app.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) HandleListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.service.Store.ListAttendanceByDate(date)
	if err != nil {
		logger.Error.Printf("Failed to list attendance for %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date": date,
		"rows": records,
	})
}

// HandleMark upserts one attendance cell: unmarked→present/absent, or a
// status toggle. Holidays reject the write.
func (h *AttendanceHandler) HandleMark(w http.ResponseWriter, r *http.Request) {
	var rec models.AttendanceRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// reason is dropped, not rejected, when flipping to present
	if rec.Status == models.StatusPresent {
		rec.AbsenceReason = nil
	}

	if err := h.service.MarkAttendance(r.Context(), &rec); err != nil {
		switch {
		case errors.Is(err, app.ErrHolidayDate):
			writeError(w, http.StatusConflict, "date is marked as a holiday")
		case errors.Is(err, app.ErrUnknownStudent):
			writeError(w, http.StatusNotFound, "student not found")
		default:
			logger.Error.Printf("Failed to mark attendance: %v", err)
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	metrics.MarksTotal.WithLabelValues(string(rec.Status)).Inc()
	writeJSON(w, http.StatusOK, rec)
}

// HandleUnmark is the explicit present|absent → unmarked transition.
func (h *AttendanceHandler) HandleUnmark(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "missing student_id parameter")
		return
	}

	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ClearAttendance(r.Context(), studentID, date); err != nil {
		logger.Error.Printf("Failed to clear attendance: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to clear attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleClearDay wipes every mark on a date and returns the removed rows so
// the client can offer an undo.
func (h *AttendanceHandler) HandleClearDay(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.service.ClearDay(r.Context(), date)
	if err != nil {
		logger.Error.Printf("Failed to clear day %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, "failed to clear attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date": date,
		"rows": deleted,
	})
}

func (h *AttendanceHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows []models.AttendanceRecord `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to restore")
		return
	}

	if err := h.service.RestoreDay(r.Context(), req.Rows); err != nil {
		logger.Error.Printf("Failed to restore attendance: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to restore attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
