package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// DeleteAttendanceForDate clears a day in one round trip with RETURNING.
func (s *PostgresStore) DeleteAttendanceForDate(date models.Date) ([]models.AttendanceRecord, error) {
	var deleted []models.AttendanceRecord
	err := s.DB.Select(&deleted, `
		DELETE FROM attendance
		WHERE date = $1
		RETURNING id, student_id, date, status, absence_reason, created_at, updated_at
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to clear attendance for %s: %w", date, err)
	}
	return deleted, nil
}
