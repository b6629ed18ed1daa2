package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func newAssignmentFixture(staffMembers ...domain.StaffMember) (*AssignmentService, *fakeTicketRepo) {
	tickets := newFakeTicketRepo()
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:  tickets,
		StaffRepo:   newFakeStaffRepo(staffMembers...),
		HistoryRepo: &fakeHistoryRepo{},
		Dispatcher:  events.NewInMemoryDispatcher(zap.NewNop()),
	})
	return svc, tickets
}

func seedTicket(t *testing.T, tickets *fakeTicketRepo) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		RequesterID: "user-1",
		CategoryID:  "cat-net",
		PriorityID:  "pri-high",
		Subject:     "vpn",
		Status:      domain.TicketStatusOpen,
	}
	require.NoError(t, tickets.Create(context.Background(), ticket))
	return ticket
}

func TestSelfAssignTicket(t *testing.T) {
	agent := domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true}
	svc, tickets := newAssignmentFixture(agent)
	ticket := seedTicket(t, tickets)

	assigned, err := svc.SelfAssignTicket(context.Background(), &agent, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AgentID)
	assert.Equal(t, "staff-1", *assigned.AgentID)

	// taking someone else's ticket is a conflict
	other := domain.StaffMember{ID: "staff-2", Role: domain.StaffRoleAgent, Active: true}
	_, err = svc.SelfAssignTicket(context.Background(), &other, ticket.ID)
	require.Error(t, err)
}

func TestAssignTicketToStaffRejectsInactiveAssignee(t *testing.T) {
	admin := domain.StaffMember{ID: "staff-admin", Role: domain.StaffRoleAdmin, Active: true}
	inactive := domain.StaffMember{ID: "staff-gone", Role: domain.StaffRoleAgent, Active: false}
	svc, tickets := newAssignmentFixture(admin, inactive)
	ticket := seedTicket(t, tickets)

	_, err := svc.AssignTicketToStaff(context.Background(), &admin, ticket.ID, "staff-gone")
	require.Error(t, err)
}

func TestUnassignTicket(t *testing.T) {
	admin := domain.StaffMember{ID: "staff-admin", Role: domain.StaffRoleAdmin, Active: true}
	agent := domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true}
	svc, tickets := newAssignmentFixture(admin, agent)
	ticket := seedTicket(t, tickets)

	assigned, err := svc.AssignTicketToStaff(context.Background(), &admin, ticket.ID, "staff-1")
	require.NoError(t, err)
	require.NotNil(t, assigned.AgentID)

	cleared, err := svc.UnassignTicket(context.Background(), &admin, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.AgentID)
}

func TestAutoAssignIsDeterministicOverActiveAgents(t *testing.T) {
	agents := []domain.StaffMember{
		{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true},
		{ID: "staff-2", Role: domain.StaffRoleAgent, Active: true},
		{ID: "staff-admin", Role: domain.StaffRoleAdmin, Active: true},
		{ID: "staff-off", Role: domain.StaffRoleAgent, Active: false},
	}
	svc, tickets := newAssignmentFixture(agents...)
	ticket := seedTicket(t, tickets)

	first, err := svc.AutoAssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, first.AgentID)
	// only active agents are eligible
	assert.Contains(t, []string{"staff-1", "staff-2"}, *first.AgentID)

	second, err := svc.AutoAssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.AgentID, *second.AgentID)
}

func TestAutoAssignBreaksCreatedAtTiesByID(t *testing.T) {
	// agents provisioned in the same transaction share CreatedAt; the id
	// tie-break keeps the pick stable across repository return orders
	agents := []domain.StaffMember{
		{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true},
		{ID: "staff-2", Role: domain.StaffRoleAgent, Active: true},
		{ID: "staff-3", Role: domain.StaffRoleAgent, Active: true},
	}
	svc, tickets := newAssignmentFixture(agents...)
	ticket := seedTicket(t, tickets)

	first, err := svc.AutoAssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, first.AgentID)

	for i := 0; i < 20; i++ {
		again, err := svc.AutoAssignTicket(context.Background(), ticket.ID)
		require.NoError(t, err)
		require.NotNil(t, again.AgentID)
		assert.Equal(t, *first.AgentID, *again.AgentID)
	}
}

func TestAutoAssignFailsWithoutActiveAgents(t *testing.T) {
	svc, tickets := newAssignmentFixture(
		domain.StaffMember{ID: "staff-off", Role: domain.StaffRoleAgent, Active: false},
	)
	ticket := seedTicket(t, tickets)

	_, err := svc.AutoAssignTicket(context.Background(), ticket.ID)
	require.Error(t, err)
}
