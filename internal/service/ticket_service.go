package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	comments   repository.TicketCommentRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	PriorityRepo repository.PriorityRepository
	CommentRepo  repository.TicketCommentRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CategoryID  string
	PriorityID  string
	Subject     string
	Description string
}

// TicketUserFilter describes end-user listing filters.
type TicketUserFilter struct {
	Statuses    []domain.TicketStatus
	CategoryID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketStaffFilter describes staff listing filters.
type TicketStaffFilter struct {
	CategoryID  *string
	PriorityID  *string
	AgentID     *string
	Unassigned  bool
	Statuses    []domain.TicketStatus
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket for a requester. Category must exist and not
// be archived; priority must exist.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, errorutil.MapError(err)
	}
	if category.Archived {
		return nil, errorutil.NewConflict("category archived", map[string]any{"category_id": category.ID})
	}
	if _, err := s.priorities.GetByID(ctx, input.PriorityID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("priority", map[string]any{"priority_id": input.PriorityID})
		}
		return nil, errorutil.MapError(err)
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, errorutil.NewValidationError("subject is required", nil)
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		RequesterID: userID,
		CategoryID:  input.CategoryID,
		PriorityID:  input.PriorityID,
		Subject:     subject,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload: events.TicketCreatedPayload{
			CategoryID: ticket.CategoryID,
			PriorityID: ticket.PriorityID,
			Subject:    ticket.Subject,
		},
	})
	return ticket, nil
}

// ListUserTickets returns paginated tickets for a requester.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, filter TicketUserFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		RequesterID: &userID,
		CategoryID:  filter.CategoryID,
		Statuses:    filter.Statuses,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForUser fetches a ticket ensuring ownership. Internal notes are
// never returned to requesters.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, errorutil.MapError(err)
	}
	if ticket.RequesterID != userID {
		return nil, nil, errorutil.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, false)
	if err != nil {
		return nil, nil, errorutil.MapError(err)
	}
	return ticket, comments, nil
}

// ListStaffTickets returns tickets matching the staff filter. The org is
// flat, so any active staff member sees the full queue.
func (s *TicketService) ListStaffTickets(ctx context.Context, filter TicketStaffFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		CategoryID:  filter.CategoryID,
		PriorityID:  filter.PriorityID,
		AgentID:     filter.AgentID,
		Unassigned:  filter.Unassigned,
		Statuses:    filter.Statuses,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForStaff fetches a ticket with its full comment thread.
func (s *TicketService) GetTicketForStaff(ctx context.Context, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, errorutil.MapError(err)
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return nil, nil, errorutil.MapError(err)
	}
	return ticket, comments, nil
}

// AddComment appends a comment to a ticket. Users may only post public
// replies on their own tickets; staff may also post internal notes.
func (s *TicketService) AddComment(ctx context.Context, actor domain.SubjectType, actorID string, ticketID string, commentType domain.TicketCommentType, body string) (*domain.TicketComment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}

	comment := &domain.TicketComment{
		TicketID:    ticket.ID,
		CommentType: commentType,
		Body:        strings.TrimSpace(body),
	}
	if comment.Body == "" {
		return nil, errorutil.NewValidationError("comment body is required", nil)
	}

	switch actor {
	case domain.SubjectTypeUser:
		if ticket.RequesterID != actorID {
			return nil, errorutil.NewForbidden("access denied")
		}
		if commentType != domain.CommentTypePublicReply {
			return nil, errorutil.NewForbidden("users can only post public replies")
		}
		comment.AuthorType = domain.AuthorTypeUser
	case domain.SubjectTypeStaff:
		if commentType != domain.CommentTypePublicReply && commentType != domain.CommentTypeInternalNote {
			return nil, errorutil.NewValidationError("invalid comment type", nil)
		}
		comment.AuthorType = domain.AuthorTypeStaff
	default:
		return nil, errorutil.NewForbidden("unknown actor")
	}
	id := actorID
	comment.AuthorID = &id

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    actorFromSubject(actor, actorID),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			CommentType: comment.CommentType,
			AuthorType:  comment.AuthorType,
			AuthorID:    comment.AuthorID,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// CloseTicketAsUser lets the requester close their resolved ticket.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	if ticket.RequesterID != userID {
		return nil, errorutil.NewForbidden("access denied")
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, errorutil.NewConflict("only resolved tickets can be closed", map[string]any{"status": ticket.Status})
	}
	return s.applyStatusChange(ctx, ticket, domain.TicketStatusClosed, domain.AuthorTypeUser, &userID, "requester_closed")
}

// UpdateStatus moves a ticket through its lifecycle on behalf of staff.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, errorutil.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}
	return s.applyStatusChange(ctx, ticket, newStatus, domain.AuthorTypeStaff, &staff.ID, comment)
}

// UpdatePriority changes ticket priority by staff.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, ticketID, newPriorityID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	if _, err := s.priorities.GetByID(ctx, newPriorityID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("priority", map[string]any{"priority_id": newPriorityID})
		}
		return nil, errorutil.MapError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	if ticket.PriorityID == newPriorityID {
		return ticket, nil
	}
	oldPriority := ticket.PriorityID
	ticket.PriorityID = newPriorityID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      ticket.ID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   &staff.ID,
		ChangeType:    domain.ChangeTypePriority,
		OldValue:      map[string]any{"priority_id": oldPriority},
		NewValue:      map[string]any{"priority_id": newPriorityID},
	}); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    staffActor(staff.ID),
		Payload: events.TicketPriorityChangedPayload{
			OldPriorityID: oldPriority,
			NewPriorityID: newPriorityID,
		},
	})
	return ticket, nil
}

// UpdateCategory moves a ticket to another category by staff.
func (s *TicketService) UpdateCategory(ctx context.Context, staff *domain.StaffMember, ticketID, newCategoryID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	category, err := s.categories.GetByID(ctx, newCategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("category", map[string]any{"category_id": newCategoryID})
		}
		return nil, errorutil.MapError(err)
	}
	if category.Archived {
		return nil, errorutil.NewConflict("category archived", map[string]any{"category_id": category.ID})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	if ticket.CategoryID == newCategoryID {
		return ticket, nil
	}
	oldCategory := ticket.CategoryID
	ticket.CategoryID = newCategoryID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      ticket.ID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   &staff.ID,
		ChangeType:    domain.ChangeTypeCategory,
		OldValue:      map[string]any{"category_id": oldCategory},
		NewValue:      map[string]any{"category_id": newCategoryID},
	}); err != nil {
		return nil, errorutil.MapError(err)
	}
	return ticket, nil
}

// ListHistory returns the audit trail for a ticket. Staff only.
func (s *TicketService) ListHistory(ctx context.Context, staff *domain.StaffMember, ticketID string) ([]domain.TicketHistory, error) {
	if staff == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	return s.history.ListByTicket(ctx, ticketID)
}

func (s *TicketService) applyStatusChange(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, actorType domain.CommentAuthorType, actorID *string, comment string) (*domain.Ticket, error) {
	oldStatus := ticket.Status
	now := time.Now().UTC()

	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	case domain.TicketStatusInProgress:
		// reopen clears the resolution stamp
		ticket.ResolvedAt = nil
	}
	ticket.Status = newStatus

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      ticket.ID,
		ChangedByType: actorType,
		ChangedByID:   actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue:      map[string]any{"status": oldStatus},
		NewValue:      map[string]any{"status": newStatus, "comment": comment},
	}); err != nil {
		return nil, errorutil.MapError(err)
	}

	actor := events.Actor{Type: domain.SubjectTypeStaff, StaffID: actorID}
	if actorType == domain.AuthorTypeUser {
		actor = events.Actor{Type: domain.SubjectTypeUser, UserID: actorID}
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// isValidTransition encodes the ticket lifecycle. Reopening is only allowed
// from Resolved; closed tickets are final.
func isValidTransition(from, to domain.TicketStatus) bool {
	switch from {
	case domain.TicketStatusOpen:
		return to == domain.TicketStatusInProgress || to == domain.TicketStatusResolved
	case domain.TicketStatusInProgress:
		return to == domain.TicketStatusResolved
	case domain.TicketStatusResolved:
		return to == domain.TicketStatusClosed || to == domain.TicketStatusInProgress
	default:
		return false
	}
}

func generateTicketKey() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeUser, UserID: &userID}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &staffID}
}

func actorFromSubject(subject domain.SubjectType, actorID string) events.Actor {
	if subject == domain.SubjectTypeUser {
		return userActor(actorID)
	}
	return staffActor(actorID)
}

// stringPreview truncates to at most max bytes without splitting a rune.
func stringPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
