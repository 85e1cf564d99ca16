package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/metrics"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Exporter writes daily and monthly reports to disk, sourcing every figure
// from the same rollcall pipeline the API serves.
type Exporter struct {
	source ReportSource
	store  StudentPhones
	outDir string
}

// StudentPhones is the extra student-directory slice the daily report needs.
type StudentPhones interface {
	ListStudents(orderBy string) ([]models.Student, error)
}

func NewExporter(service *app.Service) *Exporter {
	outDir := service.Config.Export.OutputDir
	if outDir == "" {
		outDir = "."
	}
	return &Exporter{
		source: service,
		store:  service.Store,
		outDir: outDir,
	}
}

func (e *Exporter) write(report Report, format string) (string, error) {
	if format != FormatXLSX && format != FormatCSV {
		return "", fmt.Errorf("unsupported format %q, want xlsx or csv", format)
	}

	path := filepath.Join(e.outDir, report.FileName(format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if format == FormatXLSX {
		err = WriteXLSX(f, report)
	} else {
		err = WriteCSV(f, report)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func (e *Exporter) ExportDaily(ctx context.Context, date models.Date, format string) (string, error) {
	statuses, _, err := e.source.DaySummary(date, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build day summary: %w", err)
	}

	students, err := e.store.ListStudents("roll")
	if err != nil {
		return "", fmt.Errorf("failed to list students: %w", err)
	}
	phones := make(map[string]string, len(students))
	for _, s := range students {
		phones[s.ID] = s.PhoneNumber
	}

	report := NewDailyReport(date, statuses, phones)
	path, err := e.write(report, format)
	if err != nil {
		return "", err
	}

	metrics.ReportsTotal.WithLabelValues("daily", format).Inc()
	logger.Info.Printf("Exported daily report for %s to %s", date, path)
	return path, nil
}

func (e *Exporter) ExportMonthly(ctx context.Context, anchor models.Date, format string) (string, error) {
	summaries, err := e.source.MonthlySummaries(ctx, anchor)
	if err != nil {
		return "", fmt.Errorf("failed to build monthly summaries: %w", err)
	}

	first, _ := models.MonthRange(anchor)
	report := NewMonthlyReport(first.Format("2006-01"), summaries)
	path, err := e.write(report, format)
	if err != nil {
		return "", err
	}

	metrics.ReportsTotal.WithLabelValues("monthly", format).Inc()
	logger.Info.Printf("Exported monthly report for %s to %s", report.Month, path)
	return path, nil
}
