package lifecycle

import "github.com/dmitrijs2005/milestonegate/internal/server/models"

// Label is a display-only status used by UI surfaces. Labels are derived
// from the persisted status and never stored.
type Label string

const (
	LabelInProgress        Label = "in_progress"
	LabelUnderReview       Label = "under_review"
	LabelRevisionRequested Label = "revision_requested"
	LabelOnHold            Label = "on_hold"
	LabelCancelled         Label = "cancelled"
	LabelCompleted         Label = "completed"
)

// StatusLabel maps a persisted status onto the display vocabulary.
// on_hold and cancelled have no persisted counterpart.
func StatusLabel(s models.Status) Label {
	switch s {
	case models.StatusPaymentSubmitted:
		return LabelUnderReview
	case models.StatusRejected:
		return LabelRevisionRequested
	case models.StatusApproved:
		return LabelCompleted
	default:
		return LabelInProgress
	}
}
