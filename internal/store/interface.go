package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

type RegisterStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateStudent(s *models.Student) error
	UpdateStudent(s *models.Student) error
	DeleteStudent(id string) error
	GetStudent(id string) (*models.Student, error)
	ListStudents(orderBy string) ([]models.Student, error)
	CountStudents() (int, error)

	UpsertAttendance(rec *models.AttendanceRecord) error
	DeleteAttendance(studentID string, date models.Date) error
	DeleteAttendanceForDate(date models.Date) ([]models.AttendanceRecord, error)
	RestoreAttendance(records []models.AttendanceRecord) error
	ListAttendanceByDate(date models.Date) ([]models.AttendanceRecord, error)
	ListAttendanceRange(start, end models.Date) ([]models.AttendanceRecord, error)

	CreateHoliday(h *models.Holiday) error
	DeleteHoliday(date models.Date) error
	GetHoliday(date models.Date) (*models.Holiday, error)
	ListHolidays() ([]models.Holiday, error)
	ListHolidaysRange(start, end models.Date) ([]models.Holiday, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CreateStudent(student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO students (id, name, university_roll, phone_number)
		VALUES (:id, :name, :university_roll, :phone_number)
	`, student)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateStudent(student *models.Student) error {
	query := s.Converter(`
		UPDATE students
		SET name = ?, university_roll = ?, phone_number = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	res, err := s.DB.Exec(query, student.Name, student.UniversityRoll, student.PhoneNumber, student.ID)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteStudent removes the student row only. Historical attendance rows are
// retained for audit; range queries join on students so orphans never reach
// the aggregates.
func (s *BaseStore) DeleteStudent(id string) error {
	query := s.Converter(`DELETE FROM students WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *BaseStore) GetStudent(id string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT id, name, university_roll, phone_number, created_at, updated_at
		FROM students
		WHERE id = ?
	`)

	err := s.DB.Get(&student, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *BaseStore) ListStudents(orderBy string) ([]models.Student, error) {
	order := "name"
	if orderBy == "roll" {
		order = "university_roll"
	}

	var students []models.Student
	err := s.DB.Select(&students, `
		SELECT id, name, university_roll, phone_number, created_at, updated_at
		FROM students
		ORDER BY `+order+` ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) CountStudents() (int, error) {
	var count int
	err := s.DB.Get(&count, `SELECT COUNT(*) FROM students`)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// UpsertAttendance inserts a mark, or on a (student_id, date) conflict
// overwrites status and reason moving updated_at forward. This is the
// last-write-wins policy for a single-admin tool.
func (s *BaseStore) UpsertAttendance(rec *models.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query := s.Converter(`
		INSERT INTO attendance (id, student_id, date, status, absence_reason)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_id, date) DO UPDATE SET
			status = excluded.status,
			absence_reason = excluded.absence_reason,
			updated_at = CURRENT_TIMESTAMP
	`)
	_, err := s.DB.Exec(query, rec.ID, rec.StudentID, rec.Date, rec.Status, rec.AbsenceReason)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteAttendance(studentID string, date models.Date) error {
	query := s.Converter(`DELETE FROM attendance WHERE student_id = ? AND date = ?`)
	if _, err := s.DB.Exec(query, studentID, date); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}

// DeleteAttendanceForDate clears a whole day and returns the removed rows so
// the caller can offer an undo.
func (s *BaseStore) DeleteAttendanceForDate(date models.Date) ([]models.AttendanceRecord, error) {
	deleted, err := s.ListAttendanceByDate(date)
	if err != nil {
		return nil, err
	}

	query := s.Converter(`DELETE FROM attendance WHERE date = ?`)
	if _, err := s.DB.Exec(query, date); err != nil {
		return nil, fmt.Errorf("failed to clear attendance for %s: %w", date, err)
	}
	return deleted, nil
}

func (s *BaseStore) RestoreAttendance(records []models.AttendanceRecord) error {
	for i := range records {
		if err := s.UpsertAttendance(&records[i]); err != nil {
			return fmt.Errorf("failed to restore attendance: %w", err)
		}
	}
	return nil
}

func (s *BaseStore) ListAttendanceByDate(date models.Date) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	query := s.Converter(`
		SELECT id, student_id, date, status, absence_reason, created_at, updated_at
		FROM attendance
		WHERE date = ?
		ORDER BY student_id ASC
	`)

	err := s.DB.Select(&records, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}
	return records, nil
}

// ListAttendanceRange returns records in [start, end] for students that still
// exist. The join drops orphan rows left behind by student deletion.
func (s *BaseStore) ListAttendanceRange(start, end models.Date) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	query := s.Converter(`
		SELECT a.id, a.student_id, a.date, a.status, a.absence_reason, a.created_at, a.updated_at
		FROM attendance a
		JOIN students st ON st.id = a.student_id
		WHERE a.date >= ? AND a.date <= ?
		ORDER BY a.student_id, a.date ASC
	`)

	err := s.DB.Select(&records, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	return records, nil
}

func (s *BaseStore) CreateHoliday(h *models.Holiday) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO holidays (id, date, note)
		VALUES (:id, :date, :note)
	`, h)
	if err != nil {
		return fmt.Errorf("failed to create holiday: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteHoliday(date models.Date) error {
	query := s.Converter(`DELETE FROM holidays WHERE date = ?`)
	res, err := s.DB.Exec(query, date)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *BaseStore) GetHoliday(date models.Date) (*models.Holiday, error) {
	var holiday models.Holiday
	query := s.Converter(`
		SELECT id, date, note, created_at
		FROM holidays
		WHERE date = ?
	`)

	err := s.DB.Get(&holiday, query, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holiday: %w", err)
	}
	return &holiday, nil
}

func (s *BaseStore) ListHolidays() ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := s.DB.Select(&holidays, `
		SELECT id, date, note, created_at
		FROM holidays
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

func (s *BaseStore) ListHolidaysRange(start, end models.Date) ([]models.Holiday, error) {
	var holidays []models.Holiday
	query := s.Converter(`
		SELECT id, date, note, created_at
		FROM holidays
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`)

	err := s.DB.Select(&holidays, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays range: %w", err)
	}
	return holidays, nil
}
