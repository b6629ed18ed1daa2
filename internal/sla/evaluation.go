package sla

import "time"

// Target holds the SLA hours configured for a priority. A nil field means no
// SLA of that kind is configured.
type Target struct {
	ResponseHours   *int
	ResolutionHours *int
}

// Evaluation is the derived, display-only SLA state of one ticket. It is
// recomputed on every read and never persisted.
type Evaluation struct {
	ResponseDueAt    *time.Time
	ResolutionDueAt  *time.Time
	ResponseStatus   ResponseStatus
	ResolutionStatus ResolutionStatus
}

// Evaluate computes both SLA tracks for a ticket against one calendar
// snapshot and one clock reading.
func Evaluate(t TicketSnapshot, target Target, cfg Config, now time.Time) (Evaluation, error) {
	responseDue, err := ComputeDueDate(t.CreatedAt, target.ResponseHours, cfg)
	if err != nil {
		return Evaluation{}, err
	}
	resolutionDue, err := ComputeDueDate(t.CreatedAt, target.ResolutionHours, cfg)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		ResponseDueAt:    responseDue,
		ResolutionDueAt:  resolutionDue,
		ResponseStatus:   EvaluateResponseStatus(t, responseDue, now),
		ResolutionStatus: EvaluateResolutionStatus(t, resolutionDue, now),
	}, nil
}
