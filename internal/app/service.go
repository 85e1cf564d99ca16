package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/rollcall"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

var (
	// ErrHolidayDate rejects attendance transitions on dates flagged as
	// holidays.
	ErrHolidayDate = errors.New("date is marked as a holiday")
	// ErrUnknownStudent rejects marks against students that do not exist.
	ErrUnknownStudent = errors.New("unknown student")
)

type Service struct {
	Config *Config
	Store  store.RegisterStore
	Auth   *Auth
	Cache  *SummaryCache

	// now is swappable in tests; working-day math depends on "today"
	now func() time.Time
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config: config,
		Store:  store,
		Auth:   auth,
		Cache:  NewSummaryCache(config, auth.Redis()),
		now:    time.Now,
	}, nil
}

func (s *Service) Today() models.Date {
	return models.DateOf(s.now())
}

// SessionToken pulls the bearer token out of a request.
func (s *Service) SessionToken(r *http.Request) string {
	header := r.Header.Get(s.Auth.TokenHeader())
	return strings.TrimPrefix(header, "Bearer ")
}

func (s *Service) ValidateRequest(r *http.Request) error {
	if !s.Auth.Enabled() {
		return nil
	}

	header := r.Header.Get(s.Auth.TokenHeader())
	if !strings.HasPrefix(header, "Bearer ") {
		return fmt.Errorf("invalid authorization header format")
	}

	return s.Auth.ValidateSession(r.Context(), strings.TrimPrefix(header, "Bearer "))
}

// MonthlySummaries computes per-student rollups for the month containing
// anchor. Working days are re-derived from the current holiday set on every
// call; stored attendance totals are never trusted.
func (s *Service) MonthlySummaries(ctx context.Context, anchor models.Date) ([]rollcall.Summary, error) {
	first, last := models.MonthRange(anchor)
	return s.RangeSummaries(ctx, first, last)
}

// RangeSummaries is MonthlySummaries for an arbitrary inclusive range.
func (s *Service) RangeSummaries(ctx context.Context, start, end models.Date) ([]rollcall.Summary, error) {
	key := SummaryKey(start.String(), end.String())
	if cached, ok := s.Cache.Get(ctx, key); ok {
		return cached, nil
	}

	students, err := s.Store.ListStudents("roll")
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	records, err := s.Store.ListAttendanceRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	holidays, err := s.Store.ListHolidaysRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	holidayDates := make([]models.Date, 0, len(holidays))
	for _, h := range holidays {
		holidayDates = append(holidayDates, h.Date)
	}

	workingDays := rollcall.WorkingDays(start, end, s.Today(), holidayDates)
	summaries := rollcall.SummarizeAll(students, records, workingDays)

	s.Cache.Put(ctx, key, summaries)
	return summaries, nil
}

// DaySummary returns every student's status for one date, with optional
// drafts overlaid for preview. The holiday for the date, if any, rides along
// so callers can flag the day.
func (s *Service) DaySummary(date models.Date, drafts map[string]rollcall.Draft) ([]rollcall.DayStatus, *models.Holiday, error) {
	students, err := s.Store.ListStudents("name")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list students: %w", err)
	}

	records, err := s.Store.ListAttendanceByDate(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	holiday, err := s.Store.GetHoliday(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check holiday: %w", err)
	}

	statuses := rollcall.SummarizeByDate(students, records, date)
	return rollcall.OverlayDrafts(statuses, drafts), holiday, nil
}

func (s *Service) CreateStudent(ctx context.Context, student *models.Student) error {
	if err := student.Validate(); err != nil {
		return err
	}
	if err := s.Store.CreateStudent(student); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

func (s *Service) UpdateStudent(ctx context.Context, student *models.Student) error {
	if err := student.Validate(); err != nil {
		return err
	}
	if err := s.Store.UpdateStudent(student); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// DeleteStudent drops the student row. Attendance history stays behind for
// audit and is filtered out of aggregates by the range queries.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.Store.DeleteStudent(id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// MarkAttendance upserts one mark. Holidays block the transition; the
// student must exist.
func (s *Service) MarkAttendance(ctx context.Context, rec *models.AttendanceRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	holiday, err := s.Store.GetHoliday(rec.Date)
	if err != nil {
		return fmt.Errorf("failed to check holiday: %w", err)
	}
	if holiday != nil {
		return ErrHolidayDate
	}

	student, err := s.Store.GetStudent(rec.StudentID)
	if err != nil {
		return fmt.Errorf("failed to look up student: %w", err)
	}
	if student == nil {
		return ErrUnknownStudent
	}

	if err := s.Store.UpsertAttendance(rec); err != nil {
		return err
	}

	s.Cache.Invalidate(ctx)
	return nil
}

func (s *Service) ClearAttendance(ctx context.Context, studentID string, date models.Date) error {
	if err := s.Store.DeleteAttendance(studentID, date); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// ClearDay wipes a date and hands back the removed rows for undo.
func (s *Service) ClearDay(ctx context.Context, date models.Date) ([]models.AttendanceRecord, error) {
	deleted, err := s.Store.DeleteAttendanceForDate(date)
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return deleted, nil
}

func (s *Service) RestoreDay(ctx context.Context, records []models.AttendanceRecord) error {
	if err := s.Store.RestoreAttendance(records); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// AddHoliday declares a date a holiday. Existing attendance rows for the
// date are left alone; the aggregation engine excludes the date from
// working-day totals from here on.
func (s *Service) AddHoliday(ctx context.Context, h *models.Holiday) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if err := s.Store.CreateHoliday(h); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

func (s *Service) RemoveHoliday(ctx context.Context, date models.Date) error {
	if err := s.Store.DeleteHoliday(date); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// Dashboard assembles the landing-view numbers plus the count of working
// days elapsed this month.
func (s *Service) Dashboard(ctx context.Context) (*store.DashboardCounts, int, error) {
	today := s.Today()
	first, last := models.MonthRange(today)

	count, err := s.Store.CountStudents()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	students, err := s.Store.ListStudents("name")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}

	records, err := s.Store.ListAttendanceByDate(today)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list today's attendance: %w", err)
	}

	// count through the same per-date rollup the day view uses, so rows
	// orphaned by student deletion never skew the headline numbers
	var present, absent int
	for _, ds := range rollcall.SummarizeByDate(students, records, today) {
		switch ds.Status {
		case string(models.StatusPresent):
			present++
		case string(models.StatusAbsent):
			absent++
		}
	}

	holidays, err := s.Store.ListHolidaysRange(first, last)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list holidays: %w", err)
	}

	holidayDates := make([]models.Date, 0, len(holidays))
	for _, h := range holidays {
		holidayDates = append(holidayDates, h.Date)
	}
	workingDays := rollcall.WorkingDays(first, last, today, holidayDates)

	counts := &store.DashboardCounts{
		Students:      count,
		PresentToday:  present,
		AbsentToday:   absent,
		HolidaysMonth: len(holidays),
	}
	return counts, len(workingDays), nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
