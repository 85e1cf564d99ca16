package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/export"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var mode = flag.String("mode", "daily", "Report to build: daily or monthly")
	var format = flag.String("format", export.FormatXLSX, "Output format: xlsx or csv")
	var date = flag.String("date", "", "Date for the daily report, YYYY-MM-DD, defaults to today")
	var month = flag.String("month", "", "Month for the monthly report, YYYY-MM, defaults to current")
	var schedule = flag.Bool("schedule", false, "Keep running and export on the configured cron schedule")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	exporter := export.NewExporter(service)

	if *schedule {
		runScheduled(service, exporter, *format)
		return
	}

	ctx := context.Background()
	switch *mode {
	case "daily":
		target := service.Today()
		if *date != "" {
			target, err = models.ParseDate(*date)
			if err != nil {
				logger.Error.Fatalf("Invalid -date: %v", err)
			}
		}
		if _, err := exporter.ExportDaily(ctx, target, *format); err != nil {
			logger.Error.Fatalf("Daily export failed: %v", err)
		}
	case "monthly":
		anchor := service.Today()
		if *month != "" {
			t, err := time.Parse("2006-01", *month)
			if err != nil {
				logger.Error.Fatalf("Invalid -month, want YYYY-MM: %v", err)
			}
			anchor = models.DateOf(t)
		}
		if _, err := exporter.ExportMonthly(ctx, anchor, *format); err != nil {
			logger.Error.Fatalf("Monthly export failed: %v", err)
		}
	default:
		logger.Error.Fatalf("Unknown mode %q, want daily or monthly", *mode)
	}
}

func runScheduled(service *app.Service, exporter *export.Exporter, format string) {
	cron := service.Config.Export.Schedule
	if cron == "" {
		logger.Error.Fatalf("Scheduled mode needs export.schedule in the config")
	}

	scheduler := gocron.NewScheduler(time.Local)
	_, err := scheduler.Cron(cron).Do(func() {
		ctx := context.Background()
		today := service.Today()
		if _, err := exporter.ExportDaily(ctx, today, format); err != nil {
			logger.Error.Printf("Scheduled daily export failed: %v", err)
		}
		if _, err := exporter.ExportMonthly(ctx, today, format); err != nil {
			logger.Error.Printf("Scheduled monthly export failed: %v", err)
		}
	})
	if err != nil {
		logger.Error.Fatalf("Failed to schedule export job: %v", err)
	}
	scheduler.StartAsync()

	logger.Info.Printf("Exporter running on schedule %q, output dir %s", cron, service.Config.Export.OutputDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	scheduler.Stop()
	logger.Info.Println("Exporter stopped")
}
