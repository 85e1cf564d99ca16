package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	authHandler := handlers.NewAuthHandler(service)
	studentHandler := handlers.NewStudentHandler(service)
	attendanceHandler := handlers.NewAttendanceHandler(service)
	holidayHandler := handlers.NewHolidayHandler(service)
	analyticsHandler := handlers.NewAnalyticsHandler(service)

	guard := func(h http.HandlerFunc) http.HandlerFunc {
		return handlers.Observe(service, h)
	}

	http.HandleFunc("POST /api/v1/auth/signin", authHandler.HandleSignIn)
	http.HandleFunc("POST /api/v1/auth/signout", guard(authHandler.HandleSignOut))
	http.HandleFunc("POST /api/v1/auth/reset", guard(authHandler.HandleResetStart))
	http.HandleFunc("POST /api/v1/auth/reset/complete", authHandler.HandleResetComplete)

	http.HandleFunc("GET /api/v1/students", guard(studentHandler.HandleList))
	http.HandleFunc("POST /api/v1/students", guard(studentHandler.HandleCreate))
	http.HandleFunc("PUT /api/v1/students/{id}", guard(studentHandler.HandleUpdate))
	http.HandleFunc("DELETE /api/v1/students/{id}", guard(studentHandler.HandleDelete))

	http.HandleFunc("GET /api/v1/attendance", guard(attendanceHandler.HandleListByDate))
	http.HandleFunc("POST /api/v1/attendance", guard(attendanceHandler.HandleMark))
	http.HandleFunc("DELETE /api/v1/attendance", guard(attendanceHandler.HandleUnmark))
	http.HandleFunc("DELETE /api/v1/attendance/day", guard(attendanceHandler.HandleClearDay))
	http.HandleFunc("POST /api/v1/attendance/restore", guard(attendanceHandler.HandleRestore))

	http.HandleFunc("GET /api/v1/holidays", guard(holidayHandler.HandleList))
	http.HandleFunc("POST /api/v1/holidays", guard(holidayHandler.HandleCreate))
	http.HandleFunc("DELETE /api/v1/holidays", guard(holidayHandler.HandleDelete))

	http.HandleFunc("GET /api/v1/analytics", guard(analyticsHandler.HandleMonthly))
	http.HandleFunc("GET /api/v1/analytics/day", guard(analyticsHandler.HandleDaily))
	http.HandleFunc("POST /api/v1/analytics/day/preview", guard(analyticsHandler.HandleDailyPreview))
	http.HandleFunc("GET /api/v1/dashboard", guard(analyticsHandler.HandleDashboard))

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting lussekatt server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Lussekatt server failed: %v", err)
	}
}
