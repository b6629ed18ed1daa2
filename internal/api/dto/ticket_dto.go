package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CategoryID  string `json:"category_id"`
	PriorityID  string `json:"priority_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// SlaInfo is the transient SLA view attached to ticket responses. It is
// computed per request and never stored.
type SlaInfo struct {
	ResponseDueAt    *time.Time           `json:"response_due_at"`
	ResolutionDueAt  *time.Time           `json:"resolution_due_at"`
	ResponseStatus   sla.ResponseStatus   `json:"response_status"`
	ResolutionStatus sla.ResolutionStatus `json:"resolution_status"`
}

// NewSlaInfo maps an evaluation onto the wire shape.
func NewSlaInfo(eval sla.Evaluation) SlaInfo {
	return SlaInfo{
		ResponseDueAt:    eval.ResponseDueAt,
		ResolutionDueAt:  eval.ResolutionDueAt,
		ResponseStatus:   eval.ResponseStatus,
		ResolutionStatus: eval.ResolutionStatus,
	}
}

// TicketSummary response.
type TicketSummary struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"external_key"`
	CategoryID  string              `json:"category_id"`
	PriorityID  string              `json:"priority_id"`
	AgentID     *string             `json:"agent_id"`
	Subject     string              `json:"subject"`
	Status      domain.TicketStatus `json:"status"`
	Sla         SlaInfo             `json:"sla"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewTicketSummary maps a ticket plus its SLA evaluation.
func NewTicketSummary(ticket *domain.Ticket, eval sla.Evaluation) TicketSummary {
	return TicketSummary{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		CategoryID:  ticket.CategoryID,
		PriorityID:  ticket.PriorityID,
		AgentID:     ticket.AgentID,
		Subject:     ticket.Subject,
		Status:      ticket.Status,
		Sla:         NewSlaInfo(eval),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// TicketDetailResponse provides full ticket info with the comment thread.
type TicketDetailResponse struct {
	ID          string                 `json:"id"`
	ExternalKey string                 `json:"external_key"`
	CategoryID  string                 `json:"category_id"`
	PriorityID  string                 `json:"priority_id"`
	AgentID     *string                `json:"agent_id"`
	Subject     string                 `json:"subject"`
	Description string                 `json:"description"`
	Status      domain.TicketStatus    `json:"status"`
	Sla         SlaInfo                `json:"sla"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ResolvedAt  *time.Time             `json:"resolved_at"`
	ClosedAt    *time.Time             `json:"closed_at"`
	Comments    []TicketCommentPayload `json:"comments"`
}

// NewTicketDetail maps a ticket, its thread and its SLA evaluation.
func NewTicketDetail(ticket *domain.Ticket, comments []domain.TicketComment, eval sla.Evaluation) TicketDetailResponse {
	payloads := make([]TicketCommentPayload, 0, len(comments))
	for i := range comments {
		payloads = append(payloads, NewTicketCommentPayload(&comments[i]))
	}
	return TicketDetailResponse{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		CategoryID:  ticket.CategoryID,
		PriorityID:  ticket.PriorityID,
		AgentID:     ticket.AgentID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      ticket.Status,
		Sla:         NewSlaInfo(eval),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ResolvedAt:  ticket.ResolvedAt,
		ClosedAt:    ticket.ClosedAt,
		Comments:    payloads,
	}
}

// TicketCommentPayload represents one thread entry.
type TicketCommentPayload struct {
	ID          string                   `json:"id"`
	CommentType domain.TicketCommentType `json:"comment_type"`
	AuthorType  domain.CommentAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id"`
	Body        string                   `json:"body"`
	CreatedAt   time.Time                `json:"created_at"`
}

// NewTicketCommentPayload maps a comment.
func NewTicketCommentPayload(comment *domain.TicketComment) TicketCommentPayload {
	return TicketCommentPayload{
		ID:          comment.ID,
		CommentType: comment.CommentType,
		AuthorType:  comment.AuthorType,
		AuthorID:    comment.AuthorID,
		Body:        comment.Body,
		CreatedAt:   comment.CreatedAt,
	}
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body        string                    `json:"body"`
	CommentType *domain.TicketCommentType `json:"comment_type,omitempty"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	PriorityID string `json:"priority_id"`
}

// UpdateCategoryRequest payload.
type UpdateCategoryRequest struct {
	CategoryID string `json:"category_id"`
}

// AssignRequest payload.
type AssignRequest struct {
	AgentID string `json:"agent_id"`
}

// TicketHistoryPayload represents an audit entry.
type TicketHistoryPayload struct {
	ID            string                   `json:"id"`
	ChangedByType domain.CommentAuthorType `json:"changed_by_type"`
	ChangedByID   *string                  `json:"changed_by_id"`
	ChangeType    domain.TicketChangeType  `json:"change_type"`
	OldValue      map[string]any           `json:"old_value"`
	NewValue      map[string]any           `json:"new_value"`
	CreatedAt     time.Time                `json:"created_at"`
}

// NewTicketHistoryPayload maps a history entry.
func NewTicketHistoryPayload(entry *domain.TicketHistory) TicketHistoryPayload {
	return TicketHistoryPayload{
		ID:            entry.ID,
		ChangedByType: entry.ChangedByType,
		ChangedByID:   entry.ChangedByID,
		ChangeType:    entry.ChangeType,
		OldValue:      entry.OldValue,
		NewValue:      entry.NewValue,
		CreatedAt:     entry.CreatedAt,
	}
}
