package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/metrics"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Observe wraps a handler with request-duration metrics and the session
// check. Every API route goes through here except sign-in.
func Observe(service *app.Service, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if err := service.ValidateRequest(r); err != nil {
			logger.Error.Printf("Auth failed for %s %s: %v", r.Method, r.URL.Path, err)
			writeError(rec, http.StatusUnauthorized, "unauthorized")
		} else {
			next(rec, r)
		}

		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// dateParam reads a required ?date=YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (models.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return models.Date{}, fmt.Errorf("missing %s parameter", name)
	}
	return models.ParseDate(raw)
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func monthParam(r *http.Request, today models.Date) (models.Date, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return today, nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid month %q, want YYYY-MM: %w", raw, err)
	}
	return models.DateOf(t), nil
}
