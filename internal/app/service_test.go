package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) ApplyMigrations(dir string) error {
	return nil
}

func (m *MockStore) CreateStudent(s *models.Student) error {
	return nil
}

func (m *MockStore) UpdateStudent(s *models.Student) error {
	return nil
}

func (m *MockStore) DeleteStudent(id string) error {
	return nil
}

func (m *MockStore) GetStudent(id string) (*models.Student, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStore) ListStudents(orderBy string) ([]models.Student, error) {
	args := m.Called(orderBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockStore) CountStudents() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UpsertAttendance(rec *models.AttendanceRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

func (m *MockStore) DeleteAttendance(studentID string, date models.Date) error {
	return nil
}

func (m *MockStore) DeleteAttendanceForDate(date models.Date) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func (m *MockStore) RestoreAttendance(records []models.AttendanceRecord) error {
	return nil
}

func (m *MockStore) ListAttendanceByDate(date models.Date) ([]models.AttendanceRecord, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttendanceRecord), args.Error(1)
}

func (m *MockStore) ListAttendanceRange(start, end models.Date) ([]models.AttendanceRecord, error) {
	args := m.Called(start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttendanceRecord), args.Error(1)
}

func (m *MockStore) CreateHoliday(h *models.Holiday) error {
	args := m.Called(h)
	return args.Error(0)
}

func (m *MockStore) DeleteHoliday(date models.Date) error {
	return nil
}

func (m *MockStore) GetHoliday(date models.Date) (*models.Holiday, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Holiday), args.Error(1)
}

func (m *MockStore) ListHolidays() ([]models.Holiday, error) {
	return nil, nil
}

func (m *MockStore) ListHolidaysRange(start, end models.Date) ([]models.Holiday, error) {
	args := m.Called(start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Holiday), args.Error(1)
}

func newTestService(store *MockStore, today time.Time) *Service {
	config := &Config{}
	return &Service{
		Config: config,
		Store:  store,
		Auth:   &Auth{enabled: false},
		Cache:  NewSummaryCache(config, nil),
		now:    func() time.Time { return today },
	}
}

func TestMarkAttendance(t *testing.T) {
	day := models.NewDate(2024, time.March, 5)
	holiday := models.NewDate(2024, time.March, 15)

	t.Run("holiday blocks marking", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))

		store.On("GetHoliday", holiday).
			Return(&models.Holiday{ID: "h1", Date: holiday}, nil).Once()

		err := svc.MarkAttendance(context.Background(), &models.AttendanceRecord{
			StudentID: "s1",
			Date:      holiday,
			Status:    models.StatusPresent,
		})
		assert.ErrorIs(t, err, ErrHolidayDate)
		store.AssertExpectations(t)
	})

	t.Run("unknown student is rejected", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))

		store.On("GetHoliday", day).Return(nil, nil).Once()
		store.On("GetStudent", "ghost").Return(nil, nil).Once()

		err := svc.MarkAttendance(context.Background(), &models.AttendanceRecord{
			StudentID: "ghost",
			Date:      day,
			Status:    models.StatusPresent,
		})
		assert.ErrorIs(t, err, ErrUnknownStudent)
		store.AssertExpectations(t)
	})

	t.Run("valid mark is upserted", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))

		rec := &models.AttendanceRecord{
			StudentID: "s1",
			Date:      day,
			Status:    models.StatusPresent,
		}

		store.On("GetHoliday", day).Return(nil, nil).Once()
		store.On("GetStudent", "s1").
			Return(&models.Student{ID: "s1", Name: "Asha Rao"}, nil).Once()
		store.On("UpsertAttendance", rec).Return(nil).Once()

		require.NoError(t, svc.MarkAttendance(context.Background(), rec))
		store.AssertExpectations(t)
	})

	t.Run("reason on present mark fails validation", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))

		reason := "should not be here"
		err := svc.MarkAttendance(context.Background(), &models.AttendanceRecord{
			StudentID:     "s1",
			Date:          day,
			Status:        models.StatusPresent,
			AbsenceReason: &reason,
		})
		assert.Error(t, err)
	})
}

func TestDashboardAgreesWithDayView(t *testing.T) {
	// Tuesday mid-month
	today := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	day := models.NewDate(2024, time.March, 5)
	first := models.NewDate(2024, time.March, 1)
	last := models.NewDate(2024, time.March, 31)

	store := new(MockStore)
	svc := newTestService(store, today)

	students := []models.Student{
		{ID: "s1", Name: "Asha Rao", UniversityRoll: "21CS014"},
	}

	// одна запись валидная, одна осталась от удалённого студента
	written := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		{ID: "r1", StudentID: "s1", Date: day, Status: models.StatusPresent, CreatedAt: written, UpdatedAt: written},
		{ID: "r2", StudentID: "ghost", Date: day, Status: models.StatusPresent, CreatedAt: written, UpdatedAt: written},
	}

	store.On("CountStudents").Return(1, nil)
	store.On("ListStudents", "name").Return(students, nil)
	store.On("ListAttendanceByDate", day).Return(records, nil)
	store.On("ListHolidaysRange", first, last).Return(nil, nil)
	store.On("GetHoliday", day).Return(nil, nil)

	counts, workingDays, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Students)
	assert.Equal(t, 1, counts.PresentToday, "orphan record must not count toward today's present")
	assert.Equal(t, 0, counts.AbsentToday)
	// Mar 1, 4, 5 have elapsed; 2-3 are a weekend
	assert.Equal(t, 3, workingDays)

	// the day view reports the same headline numbers
	statuses, _, err := svc.DaySummary(day, nil)
	require.NoError(t, err)
	var present int
	for _, s := range statuses {
		if s.Status == string(models.StatusPresent) {
			present++
		}
	}
	assert.Equal(t, counts.PresentToday, present)
}

func TestMonthlySummaries(t *testing.T) {
	// today falls mid-month, so only elapsed days count
	today := time.Date(2024, 3, 8, 18, 0, 0, 0, time.UTC)
	first := models.NewDate(2024, time.March, 1)
	last := models.NewDate(2024, time.March, 31)

	store := new(MockStore)
	svc := newTestService(store, today)

	students := []models.Student{
		{ID: "s1", Name: "Asha Rao", UniversityRoll: "21CS014"},
	}

	written := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		{ID: "r1", StudentID: "s1", Date: models.NewDate(2024, time.March, 1), Status: models.StatusPresent, CreatedAt: written, UpdatedAt: written},
		{ID: "r2", StudentID: "s1", Date: models.NewDate(2024, time.March, 4), Status: models.StatusPresent, CreatedAt: written, UpdatedAt: written},
		{ID: "r3", StudentID: "s1", Date: models.NewDate(2024, time.March, 5), Status: models.StatusAbsent, CreatedAt: written, UpdatedAt: written},
	}

	holidays := []models.Holiday{
		{ID: "h1", Date: models.NewDate(2024, time.March, 7)},
	}

	store.On("ListStudents", "roll").Return(students, nil).Once()
	store.On("ListAttendanceRange", first, last).Return(records, nil).Once()
	store.On("ListHolidaysRange", first, last).Return(holidays, nil).Once()

	summaries, err := svc.MonthlySummaries(context.Background(), models.NewDate(2024, time.March, 15))
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	// working days: Mar 1, 4, 5, 6, 8 (Mar 2/3 weekend, Mar 7 holiday)
	assert.Equal(t, 5, summaries[0].Total)
	assert.Equal(t, 2, summaries[0].Present)
	assert.Equal(t, 1, summaries[0].Absent)
	assert.Equal(t, "40.0", summaries[0].Percentage)

	store.AssertExpectations(t)
}
