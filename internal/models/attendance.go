package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// AttendanceRecord is one mark for one student on one calendar date.
// The store keeps at most one row per (student_id, date) via upsert;
// should duplicates ever appear, rollcall keeps the latest-written row.
type AttendanceRecord struct {
	ID            string           `db:"id" json:"id"`
	StudentID     string           `db:"student_id" json:"student_id" validate:"required"`
	Date          Date             `db:"date" json:"date"`
	Status        AttendanceStatus `db:"status" json:"status" validate:"required,oneof=present absent"`
	AbsenceReason *string          `db:"absence_reason" json:"absence_reason,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

func (a *AttendanceRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(a); err != nil {
		return err
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.Status == StatusPresent && a.AbsenceReason != nil {
		return fmt.Errorf("absence_reason is only allowed when status is absent")
	}
	return nil
}

// WrittenAt is the timestamp used for last-write-wins conflict resolution.
func (a *AttendanceRecord) WrittenAt() time.Time {
	if a.UpdatedAt.After(a.CreatedAt) {
		return a.UpdatedAt
	}
	return a.CreatedAt
}
