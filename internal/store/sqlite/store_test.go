package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func mustCreateStudent(t *testing.T, s *SQLiteStore, name, roll string) *models.Student {
	t.Helper()
	student := &models.Student{
		Name:           name,
		UniversityRoll: roll,
		PhoneNumber:    "9999999999",
	}
	require.NoError(t, s.CreateStudent(student))
	return student
}

func TestStudentOperations(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	student := mustCreateStudent(t, s, "Asha Rao", "21CS014")

	t.Run("get student", func(t *testing.T) {
		got, err := s.GetStudent(student.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Asha Rao", got.Name)
		assert.Equal(t, "21CS014", got.UniversityRoll)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("get non-existent student", func(t *testing.T) {
		got, err := s.GetStudent("no-such-id")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate roll rejected", func(t *testing.T) {
		dup := &models.Student{Name: "Other", UniversityRoll: "21CS014"}
		err := s.CreateStudent(dup)
		assert.Error(t, err)
	})

	t.Run("update student", func(t *testing.T) {
		student.Name = "Asha R Rao"
		require.NoError(t, s.UpdateStudent(student))

		got, err := s.GetStudent(student.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha R Rao", got.Name)
	})

	t.Run("list ordered by roll", func(t *testing.T) {
		mustCreateStudent(t, s, "Dev Narang", "21CS001")

		students, err := s.ListStudents("roll")
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "21CS001", students[0].UniversityRoll)
	})

	t.Run("count", func(t *testing.T) {
		count, err := s.CountStudents()
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("delete keeps attendance rows but list range drops orphans", func(t *testing.T) {
		day := models.NewDate(2024, time.March, 5)
		rec := &models.AttendanceRecord{
			StudentID: student.ID,
			Date:      day,
			Status:    models.StatusPresent,
		}
		require.NoError(t, s.UpsertAttendance(rec))

		require.NoError(t, s.DeleteStudent(student.ID))

		// raw day listing still has the orphan row
		raw, err := s.ListAttendanceByDate(day)
		require.NoError(t, err)
		assert.Len(t, raw, 1)

		// the aggregate-facing range query does not
		ranged, err := s.ListAttendanceRange(day, day)
		require.NoError(t, err)
		assert.Empty(t, ranged)
	})
}

func TestAttendanceUpsert(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	student := mustCreateStudent(t, s, "Asha Rao", "21CS014")
	day := models.NewDate(2024, time.March, 5)

	reason := "medical leave"
	first := &models.AttendanceRecord{
		StudentID:     student.ID,
		Date:          day,
		Status:        models.StatusAbsent,
		AbsenceReason: &reason,
	}
	require.NoError(t, s.UpsertAttendance(first))

	t.Run("second upsert overwrites instead of duplicating", func(t *testing.T) {
		second := &models.AttendanceRecord{
			StudentID: student.ID,
			Date:      day,
			Status:    models.StatusPresent,
		}
		require.NoError(t, s.UpsertAttendance(second))

		records, err := s.ListAttendanceByDate(day)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, models.StatusPresent, records[0].Status)
		assert.Nil(t, records[0].AbsenceReason)
	})

	t.Run("range query includes the day", func(t *testing.T) {
		records, err := s.ListAttendanceRange(
			models.NewDate(2024, time.March, 1),
			models.NewDate(2024, time.March, 31),
		)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, day.String(), records[0].Date.String())
	})

	t.Run("delete single mark", func(t *testing.T) {
		require.NoError(t, s.DeleteAttendance(student.ID, day))

		records, err := s.ListAttendanceByDate(day)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestClearDayAndRestore(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	a := mustCreateStudent(t, s, "Asha Rao", "21CS014")
	b := mustCreateStudent(t, s, "Dev Narang", "21CS015")
	day := models.NewDate(2024, time.March, 5)

	for _, st := range []*models.Student{a, b} {
		rec := &models.AttendanceRecord{StudentID: st.ID, Date: day, Status: models.StatusPresent}
		require.NoError(t, s.UpsertAttendance(rec))
	}

	deleted, err := s.DeleteAttendanceForDate(day)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	records, err := s.ListAttendanceByDate(day)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.RestoreAttendance(deleted))

	records, err = s.ListAttendanceByDate(day)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestHolidayOperations(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	day := models.NewDate(2024, time.March, 15)
	note := "college fest"

	require.NoError(t, s.CreateHoliday(&models.Holiday{Date: day, Note: &note}))

	t.Run("get holiday", func(t *testing.T) {
		got, err := s.GetHoliday(day)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.Note)
		assert.Equal(t, note, *got.Note)
	})

	t.Run("one holiday per date", func(t *testing.T) {
		err := s.CreateHoliday(&models.Holiday{Date: day})
		assert.Error(t, err)
	})

	t.Run("list range", func(t *testing.T) {
		require.NoError(t, s.CreateHoliday(&models.Holiday{Date: models.NewDate(2024, time.April, 1)}))

		holidays, err := s.ListHolidaysRange(
			models.NewDate(2024, time.March, 1),
			models.NewDate(2024, time.March, 31),
		)
		require.NoError(t, err)
		require.Len(t, holidays, 1)
		assert.Equal(t, day.String(), holidays[0].Date.String())
	})

	t.Run("delete holiday", func(t *testing.T) {
		require.NoError(t, s.DeleteHoliday(day))

		got, err := s.GetHoliday(day)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
