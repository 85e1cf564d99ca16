package export

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/rollcall"
)

// MonthlyReport is one row per student with the same figures the analytics
// view shows. Rows come straight from rollcall summaries; the exporter never
// recomputes them, so on-screen and exported numbers cannot drift.
type MonthlyReport struct {
	Month     string
	Summaries []rollcall.Summary
}

func NewMonthlyReport(month string, summaries []rollcall.Summary) *MonthlyReport {
	return &MonthlyReport{Month: month, Summaries: summaries}
}

func (r *MonthlyReport) SheetName() string {
	return "Monthly Summary"
}

func (r *MonthlyReport) FileName(format string) string {
	return fmt.Sprintf("monthly_report_%s.%s", r.Month, format)
}

func (r *MonthlyReport) Headers() []string {
	return []string{
		"Student Name",
		"Roll Number",
		"Present Days",
		"Absent Days",
		"Total Working Days",
		"Attendance %",
	}
}

func (r *MonthlyReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		rows = append(rows, []string{
			s.Name,
			s.UniversityRoll,
			fmt.Sprintf("%d", s.Present),
			fmt.Sprintf("%d", s.Absent),
			fmt.Sprintf("%d", s.Total),
			s.Percentage + "%",
		})
	}
	return rows
}

// DailyReport lists every student for one date. Unmarked students are
// exported as absent with a "-" reason, matching what the attendance sheet
// hands to the office.
type DailyReport struct {
	Date     models.Date
	Statuses []rollcall.DayStatus
	Phones   map[string]string
}

func NewDailyReport(date models.Date, statuses []rollcall.DayStatus, phones map[string]string) *DailyReport {
	return &DailyReport{Date: date, Statuses: statuses, Phones: phones}
}

func (r *DailyReport) SheetName() string {
	return "Attendance"
}

func (r *DailyReport) FileName(format string) string {
	return fmt.Sprintf("attendance_%s.%s", r.Date, format)
}

func (r *DailyReport) Headers() []string {
	return []string{
		"Student Name",
		"Roll Number",
		"Phone",
		"Status",
		"Absence Reason",
	}
}

func (r *DailyReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Statuses))
	for _, s := range r.Statuses {
		status := s.Status
		if status == rollcall.StatusUnmarked {
			status = string(models.StatusAbsent)
		}

		reason := "-"
		if s.AbsenceReason != nil && *s.AbsenceReason != "" {
			reason = *s.AbsenceReason
		}

		rows = append(rows, []string{
			s.Name,
			s.UniversityRoll,
			r.Phones[s.StudentID],
			status,
			reason,
		})
	}
	return rows
}

// Report is what the writers consume.
type Report interface {
	SheetName() string
	FileName(format string) string
	Headers() []string
	Rows() [][]string
}

// ReportSource is the slice of the app service the exporter needs.
type ReportSource interface {
	Today() models.Date
	MonthlySummaries(ctx context.Context, anchor models.Date) ([]rollcall.Summary, error)
	DaySummary(date models.Date, drafts map[string]rollcall.Draft) ([]rollcall.DayStatus, *models.Holiday, error)
}
