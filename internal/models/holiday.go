package models

import (
	"fmt"
	"time"
)

// Holiday marks a date as a non-attendance day. At most one row per date.
type Holiday struct {
	ID        string    `db:"id" json:"id"`
	Date      Date      `db:"date" json:"date"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (h *Holiday) Validate() error {
	if h.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}
