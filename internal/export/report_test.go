package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/rollcall"
)

func sampleMonthly() *MonthlyReport {
	return NewMonthlyReport("2024-03", []rollcall.Summary{
		{
			StudentID:      "s1",
			Name:           "Asha Rao",
			UniversityRoll: "21CS014",
			Present:        18,
			Absent:         4,
			Total:          22,
			Percentage:     "81.8",
		},
		{
			StudentID:      "s2",
			Name:           "Dev Narang",
			UniversityRoll: "21CS015",
			Present:        0,
			Absent:         0,
			Total:          22,
			Percentage:     "0.0",
		},
	})
}

func TestMonthlyReportRows(t *testing.T) {
	report := sampleMonthly()

	assert.Equal(t, "monthly_report_2024-03.xlsx", report.FileName(FormatXLSX))
	assert.Equal(t, "monthly_report_2024-03.csv", report.FileName(FormatCSV))

	rows := report.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Asha Rao", "21CS014", "18", "4", "22", "81.8%"}, rows[0])
	assert.Equal(t, []string{"Dev Narang", "21CS015", "0", "0", "22", "0.0%"}, rows[1])
}

func TestDailyReportRows(t *testing.T) {
	reason := "medical leave"
	date := models.NewDate(2024, time.March, 5)

	report := NewDailyReport(date, []rollcall.DayStatus{
		{StudentID: "s1", Name: "Asha Rao", UniversityRoll: "21CS014", Status: "present"},
		{StudentID: "s2", Name: "Dev Narang", UniversityRoll: "21CS015", Status: "absent", AbsenceReason: &reason},
		{StudentID: "s3", Name: "Mira Shetty", UniversityRoll: "21CS016", Status: rollcall.StatusUnmarked},
	}, map[string]string{
		"s1": "9999999999",
		"s2": "8888888888",
		"s3": "7777777777",
	})

	assert.Equal(t, "attendance_2024-03-05.csv", report.FileName(FormatCSV))

	rows := report.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Asha Rao", "21CS014", "9999999999", "present", "-"}, rows[0])
	assert.Equal(t, []string{"Dev Narang", "21CS015", "8888888888", "absent", "medical leave"}, rows[1])
	// unmarked students are exported as absent
	assert.Equal(t, []string{"Mira Shetty", "21CS016", "7777777777", "absent", "-"}, rows[2])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleMonthly()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, sampleMonthly().Headers(), records[0])
	assert.Equal(t, "81.8%", records[1][5])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleMonthly()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Monthly Summary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Student Name", rows[0][0])
	assert.Equal(t, "Asha Rao", rows[1][0])
	assert.Equal(t, "81.8%", rows[1][5])
}
