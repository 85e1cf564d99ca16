package rollcall

import (
	"github.com/go-playground/validator/v10"

	"github.com/shrimpsizemoose/lussekatt/internal/models"
)

// Draft is an unsaved attendance edit for one student. Drafts live only in
// the caller's hands (a UI form, a preview request) and are merged over
// persisted records strictly at display time; they are never a second source
// of truth.
type Draft struct {
	Status models.AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
	Reason *string                 `json:"reason,omitempty"`
}

func (d Draft) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// OverlayDrafts applies a student-id keyed draft map on top of a date's
// statuses. A draft for an unknown student is ignored. Reasons only survive
// on absent drafts, mirroring the present/absent state machine where the
// reason is cleared on the transition to present.
func OverlayDrafts(statuses []DayStatus, drafts map[string]Draft) []DayStatus {
	if len(drafts) == 0 {
		return statuses
	}

	out := make([]DayStatus, len(statuses))
	copy(out, statuses)
	for i, ds := range out {
		d, ok := drafts[ds.StudentID]
		if !ok {
			continue
		}
		out[i].Status = string(d.Status)
		if d.Status == models.StatusAbsent {
			out[i].AbsenceReason = d.Reason
		} else {
			out[i].AbsenceReason = nil
		}
	}
	return out
}
