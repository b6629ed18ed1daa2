package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ResponseStatus classifies the response SLA track.
type ResponseStatus string

const (
	ResponseNotApplicable ResponseStatus = "NOT_APPLICABLE"
	ResponsePending       ResponseStatus = "PENDING"
	ResponseMet           ResponseStatus = "MET"
	ResponseBreached      ResponseStatus = "BREACHED"
)

// ResolutionStatus classifies the resolution SLA track.
type ResolutionStatus string

const (
	ResolutionNotApplicable ResolutionStatus = "NOT_APPLICABLE"
	ResolutionOnTrack       ResolutionStatus = "ON_TRACK"
	ResolutionBreached      ResolutionStatus = "BREACHED"
)

// TicketSnapshot carries the ticket fields the evaluators read. UpdatedAt is
// nil when the ticket has never been touched since creation.
type TicketSnapshot struct {
	CreatedAt time.Time
	Status    domain.TicketStatus
	AgentID   *string
	UpdatedAt *time.Time
}

// Snapshot extracts an evaluation snapshot from a ticket.
func Snapshot(t *domain.Ticket) TicketSnapshot {
	s := TicketSnapshot{
		CreatedAt: t.CreatedAt,
		Status:    t.Status,
		AgentID:   t.AgentID,
	}
	if !t.UpdatedAt.IsZero() {
		updated := t.UpdatedAt
		s.UpdatedAt = &updated
	}
	return s
}

// Responded reports whether the ticket has seen first meaningful engagement:
// an agent assignment or any move out of Open.
func (s TicketSnapshot) Responded() bool {
	return s.AgentID != nil || s.Status != domain.TicketStatusOpen
}

// EvaluateResponseStatus classifies the response SLA against its due
// timestamp. now must be captured once per batch by the caller.
func EvaluateResponseStatus(t TicketSnapshot, dueAt *time.Time, now time.Time) ResponseStatus {
	if dueAt == nil {
		return ResponseNotApplicable
	}
	if t.Responded() {
		if t.UpdatedAt == nil {
			return ResponseMet
		}
		if t.UpdatedAt.After(*dueAt) {
			return ResponseBreached
		}
		return ResponseMet
	}
	if now.After(*dueAt) {
		return ResponseBreached
	}
	return ResponsePending
}

// EvaluateResolutionStatus classifies the resolution SLA. Resolved and closed
// tickets always report not-applicable: the tracker alerts on currently open
// risk and does not grade finished tickets retroactively.
func EvaluateResolutionStatus(t TicketSnapshot, dueAt *time.Time, now time.Time) ResolutionStatus {
	if t.Status == domain.TicketStatusResolved || t.Status == domain.TicketStatusClosed {
		return ResolutionNotApplicable
	}
	if dueAt == nil {
		return ResolutionNotApplicable
	}
	if now.After(*dueAt) {
		return ResolutionBreached
	}
	return ResolutionOnTrack
}
