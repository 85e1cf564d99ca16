package rollcall

import (
	"math"
	"sort"
	"strconv"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

// Summary is one student's attendance rollup over a set of working days.
type Summary struct {
	StudentID      string `json:"student_id"`
	Name           string `json:"name"`
	UniversityRoll string `json:"university_roll"`
	Present        int    `json:"present"`
	Absent         int    `json:"absent"`
	Total          int    `json:"total"`
	Percentage     string `json:"percentage"`
}

// DayStatus is one student's state for a single date. Status is "present",
// "absent" or "unmarked".
type DayStatus struct {
	StudentID      string  `json:"student_id"`
	Name           string  `json:"name"`
	UniversityRoll string  `json:"university_roll"`
	Status         string  `json:"status"`
	AbsenceReason  *string `json:"absence_reason,omitempty"`
}

const StatusUnmarked = "unmarked"

// WorkingDays returns, in ascending order, every date in [start, end] that is
// neither a weekend day nor a holiday. The range is capped at today so that
// days which have not elapsed yet never dilute a percentage; a range entirely
// in the future yields an empty set.
func WorkingDays(start, end, today models.Date, holidays []models.Date) []models.Date {
	bound := end
	if today.Before(bound.Time) {
		bound = today
	}
	if start.After(bound.Time) {
		return nil
	}

	offDays := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		offDays[h.String()] = true
	}

	var days []models.Date
	for d := start; !d.After(bound.Time); d = d.AddDays(1) {
		if d.IsWeekend() || offDays[d.String()] {
			continue
		}
		days = append(days, d)
	}
	return days
}

// newerThan reports whether a was written later than b. Ties on the write
// timestamp fall back to created_at, then to record id, so the winner is
// deterministic regardless of input order.
func newerThan(a, b models.AttendanceRecord) bool {
	if !a.WrittenAt().Equal(b.WrittenAt()) {
		return a.WrittenAt().After(b.WrittenAt())
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// DedupeLatest collapses duplicate rows for the same (student, date) down to
// the latest-written one. Output is sorted by student then date.
func DedupeLatest(records []models.AttendanceRecord) []models.AttendanceRecord {
	type key struct {
		student string
		date    string
	}

	winners := make(map[key]models.AttendanceRecord, len(records))
	for _, r := range records {
		k := key{r.StudentID, r.Date.String()}
		if cur, ok := winners[k]; !ok || newerThan(r, cur) {
			winners[k] = r
		}
	}

	out := make([]models.AttendanceRecord, 0, len(winners))
	for _, r := range winners {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// Summarize rolls up one student's deduped records against the working-day
// set. Records on non-working days (weekends, or dates declared holidays
// after the fact) are ignored: the working-day set is authoritative, not the
// mere existence of a record.
func Summarize(student models.Student, records []models.AttendanceRecord, workingDays []models.Date) Summary {
	working := make(map[string]bool, len(workingDays))
	for _, d := range workingDays {
		working[d.String()] = true
	}

	var present, absent int
	for _, r := range records {
		if r.StudentID != student.ID || !working[r.Date.String()] {
			continue
		}
		switch r.Status {
		case models.StatusPresent:
			present++
		case models.StatusAbsent:
			absent++
		}
	}

	return Summary{
		StudentID:      student.ID,
		Name:           student.Name,
		UniversityRoll: student.UniversityRoll,
		Present:        present,
		Absent:         absent,
		Total:          len(workingDays),
		Percentage:     FormatPercentage(present, len(workingDays)),
	}
}

// SummarizeAll computes a Summary per student, deduplicating records first.
func SummarizeAll(students []models.Student, records []models.AttendanceRecord, workingDays []models.Date) []Summary {
	deduped := DedupeLatest(records)
	summaries := make([]Summary, 0, len(students))
	for _, s := range students {
		summaries = append(summaries, Summarize(s, deduped, workingDays))
	}
	return summaries
}

// SummarizeByDate returns every student's status for a single date,
// latest-wins on duplicate rows. Students without a record come back
// unmarked.
func SummarizeByDate(students []models.Student, records []models.AttendanceRecord, date models.Date) []DayStatus {
	byStudent := make(map[string]models.AttendanceRecord)
	for _, r := range DedupeLatest(records) {
		if r.Date.String() == date.String() {
			byStudent[r.StudentID] = r
		}
	}

	statuses := make([]DayStatus, 0, len(students))
	for _, s := range students {
		ds := DayStatus{
			StudentID:      s.ID,
			Name:           s.Name,
			UniversityRoll: s.UniversityRoll,
			Status:         StatusUnmarked,
		}
		if r, ok := byStudent[s.ID]; ok {
			ds.Status = string(r.Status)
			ds.AbsenceReason = r.AbsenceReason
		}
		statuses = append(statuses, ds)
	}
	return statuses
}

// FormatPercentage renders present/total as a percentage with one decimal,
// clamped to 100 so pathological duplicate data can never exceed it. A zero
// total yields "0.0" rather than a division by zero.
func FormatPercentage(present, total int) string {
	if total <= 0 {
		return "0.0"
	}
	pct := math.Min(100, float64(present)/float64(total)*100)
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
