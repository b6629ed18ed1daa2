package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventSlaBreached           EventType = "sla_breached"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// SystemActor marks events emitted by background workers.
func SystemActor() Actor {
	return Actor{Type: domain.SubjectTypeSystem}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CategoryID string `json:"category_id"`
	PriorityID string `json:"priority_id"`
	Subject    string `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriorityID string `json:"old_priority_id"`
	NewPriorityID string `json:"new_priority_id"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentStaffID *string `json:"agent_staff_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string                   `json:"comment_id"`
	CommentType domain.TicketCommentType `json:"comment_type"`
	AuthorType  domain.CommentAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	BodyPreview string                   `json:"body_preview"`
}

// SlaTrack names which SLA deadline was missed.
type SlaTrack string

const (
	SlaTrackResponse   SlaTrack = "response"
	SlaTrackResolution SlaTrack = "resolution"
)

// SlaBreachedPayload payload.
type SlaBreachedPayload struct {
	Track            SlaTrack             `json:"track"`
	DueAt            time.Time            `json:"due_at"`
	ResponseStatus   sla.ResponseStatus   `json:"response_status"`
	ResolutionStatus sla.ResolutionStatus `json:"resolution_status"`
}
