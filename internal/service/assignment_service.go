package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AssignmentService handles ticket assignment operations.
type AssignmentService struct {
	tickets    repository.TicketRepository
	staff      repository.StaffRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	StaffRepo   repository.StaffRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		staff:      deps.StaffRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// SelfAssignTicket lets a staff member take an unassigned ticket.
func (s *AssignmentService) SelfAssignTicket(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AgentID != nil && *ticket.AgentID != staff.ID {
		return nil, errorutil.NewConflict("ticket already assigned", map[string]any{"agent_staff_id": *ticket.AgentID})
	}
	return s.assign(ctx, staff.ID, ticket, &staff.ID)
}

// AssignTicketToStaff assigns a ticket to a given agent. Admin only; the
// handler enforces the role, the assignee is validated here.
func (s *AssignmentService) AssignTicketToStaff(ctx context.Context, actor *domain.StaffMember, ticketID, agentStaffID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	assignee, err := s.staff.GetByID(ctx, agentStaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("staff", map[string]any{"staff_id": agentStaffID})
		}
		return nil, errorutil.MapError(err)
	}
	if !assignee.Active {
		return nil, errorutil.NewConflict("assignee inactive", map[string]any{"staff_id": agentStaffID})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.assign(ctx, actor.ID, ticket, &assignee.ID)
}

// UnassignTicket clears the assignee.
func (s *AssignmentService) UnassignTicket(ctx context.Context, actor *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("staff required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AgentID == nil {
		return ticket, nil
	}
	return s.assign(ctx, actor.ID, ticket, nil)
}

// AutoAssignTicket picks an active agent deterministically from the ticket id
// so repeated calls for the same ticket land on the same agent.
func (s *AssignmentService) AutoAssignTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	active := true
	role := domain.StaffRoleAgent
	agents, err := s.staff.List(ctx, repository.StaffFilter{Role: &role, Active: &active, Limit: 1000})
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if len(agents) == 0 {
		return nil, errorutil.NewConflict("no active agents available", nil)
	}
	sort.Slice(agents, func(i, j int) bool {
		// CreatedAt alone is not a total order: same-transaction inserts tie.
		if !agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].CreatedAt.Before(agents[j].CreatedAt)
		}
		return agents[i].ID < agents[j].ID
	})

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignee := agents[selectIndex(ticket.ID, len(agents))]
	return s.assign(ctx, assignee.ID, ticket, &assignee.ID)
}

func (s *AssignmentService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) assign(ctx context.Context, actorID string, ticket *domain.Ticket, agentID *string) (*domain.Ticket, error) {
	oldAgent := ticket.AgentID
	ticket.AgentID = agentID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      ticket.ID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   &actorID,
		ChangeType:    domain.ChangeTypeAssignee,
		OldValue:      map[string]any{"agent_staff_id": oldAgent},
		NewValue:      map[string]any{"agent_staff_id": agentID},
	}); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.publishAssignmentEvent(ctx, actorID, ticket)
	return ticket, nil
}

func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, actorID string, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Actor:     events.Actor{Type: domain.SubjectTypeStaff, StaffID: &actorID},
		Timestamp: time.Now(),
		Payload:   events.TicketAssignedPayload{AgentStaffID: ticket.AgentID},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
