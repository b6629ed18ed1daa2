package service

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"go.uber.org/zap"
)

func newTicketServiceFixture() (*TicketService, *fakeTicketRepo, *fakeHistoryRepo) {
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		CategoryRepo: newFakeCategoryRepo(
			domain.Category{ID: "cat-net", Name: "Network"},
			domain.Category{ID: "cat-old", Name: "Legacy", Archived: true},
		),
		PriorityRepo: newFakePriorityRepo(
			domain.Priority{ID: "pri-high", Name: "High", SortOrder: 1},
			domain.Priority{ID: "pri-low", Name: "Low", SortOrder: 4},
		),
		CommentRepo: &fakeCommentRepo{},
		HistoryRepo: history,
		Dispatcher:  events.NewInMemoryDispatcher(zap.NewNop()),
	})
	return svc, tickets, history
}

func TestCreateTicket(t *testing.T) {
	svc, _, _ := newTicketServiceFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		CategoryID:  "cat-net",
		PriorityID:  "pri-high",
		Subject:     "  VPN down  ",
		Description: "cannot connect since this morning",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "VPN down", ticket.Subject)
	assert.Nil(t, ticket.AgentID)
	assert.NotEmpty(t, ticket.ExternalKey)
}

func TestCreateTicketRejectsArchivedCategory(t *testing.T) {
	svc, _, _ := newTicketServiceFixture()

	_, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		CategoryID: "cat-old",
		PriorityID: "pri-high",
		Subject:    "anything",
	})
	require.Error(t, err)
}

func TestCreateTicketRejectsUnknownPriority(t *testing.T) {
	svc, _, _ := newTicketServiceFixture()

	_, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		CategoryID: "cat-net",
		PriorityID: "pri-missing",
		Subject:    "anything",
	})
	require.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusResolved, true},
		{domain.TicketStatusOpen, domain.TicketStatusClosed, false},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, false},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress, true},
		{domain.TicketStatusClosed, domain.TicketStatusInProgress, false},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, isValidTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusRecordsHistoryAndTimestamps(t *testing.T) {
	svc, _, history := newTicketServiceFixture()
	ctx := context.Background()
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true}

	ticket, err := svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		CategoryID: "cat-net", PriorityID: "pri-high", Subject: "printer jam",
	})
	require.NoError(t, err)

	ticket, err = svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusInProgress, "picking up")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)

	ticket, err = svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusResolved, "fixed")
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)

	// reopening clears the resolution stamp
	ticket, err = svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusInProgress, "came back")
	require.NoError(t, err)
	assert.Nil(t, ticket.ResolvedAt)

	assert.Len(t, history.entries, 3)
	for _, entry := range history.entries {
		assert.Equal(t, domain.ChangeTypeStatus, entry.ChangeType)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	svc, _, _ := newTicketServiceFixture()
	ctx := context.Background()
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true}

	ticket, err := svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		CategoryID: "cat-net", PriorityID: "pri-high", Subject: "x",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusClosed, "")
	require.Error(t, err)
}

func TestCloseTicketAsUser(t *testing.T) {
	svc, _, _ := newTicketServiceFixture()
	ctx := context.Background()
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true}

	ticket, err := svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		CategoryID: "cat-net", PriorityID: "pri-high", Subject: "x",
	})
	require.NoError(t, err)

	// not resolved yet
	_, err = svc.CloseTicketAsUser(ctx, "user-1", ticket.ID)
	require.Error(t, err)

	_, err = svc.UpdateStatus(ctx, staff, ticket.ID, domain.TicketStatusResolved, "done")
	require.NoError(t, err)

	// wrong requester
	_, err = svc.CloseTicketAsUser(ctx, "user-2", ticket.ID)
	require.Error(t, err)

	closed, err := svc.CloseTicketAsUser(ctx, "user-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
}

func TestAddCommentPermissions(t *testing.T) {
	svc, _, _ := newTicketServiceFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		CategoryID: "cat-net", PriorityID: "pri-low", Subject: "slow wifi",
	})
	require.NoError(t, err)

	// requester may post public replies
	comment, err := svc.AddComment(ctx, domain.SubjectTypeUser, "user-1", ticket.ID, domain.CommentTypePublicReply, "still broken")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorTypeUser, comment.AuthorType)

	// but not internal notes
	_, err = svc.AddComment(ctx, domain.SubjectTypeUser, "user-1", ticket.ID, domain.CommentTypeInternalNote, "sneaky")
	require.Error(t, err)

	// other users are rejected entirely
	_, err = svc.AddComment(ctx, domain.SubjectTypeUser, "user-2", ticket.ID, domain.CommentTypePublicReply, "me too")
	require.Error(t, err)

	// staff may post internal notes
	note, err := svc.AddComment(ctx, domain.SubjectTypeStaff, "staff-1", ticket.ID, domain.CommentTypeInternalNote, "checked the AP")
	require.NoError(t, err)
	assert.Equal(t, domain.CommentTypeInternalNote, note.CommentType)

	// internal notes stay hidden from the requester
	_, comments, err := svc.GetTicketForUser(ctx, "user-1", ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, domain.CommentTypePublicReply, comments[0].CommentType)

	_, staffComments, err := svc.GetTicketForStaff(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, staffComments, 2)
}

func TestUpdatePriorityRecordsHistory(t *testing.T) {
	svc, _, history := newTicketServiceFixture()
	ctx := context.Background()
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent, Active: true}

	ticket, err := svc.CreateTicket(ctx, "user-1", TicketCreateInput{
		CategoryID: "cat-net", PriorityID: "pri-low", Subject: "x",
	})
	require.NoError(t, err)

	updated, err := svc.UpdatePriority(ctx, staff, ticket.ID, "pri-high")
	require.NoError(t, err)
	assert.Equal(t, "pri-high", updated.PriorityID)
	require.Len(t, history.entries, 1)
	assert.Equal(t, domain.ChangeTypePriority, history.entries[0].ChangeType)

	// no-op change writes no history
	_, err = svc.UpdatePriority(ctx, staff, ticket.ID, "pri-high")
	require.NoError(t, err)
	assert.Len(t, history.entries, 1)
}

func TestStringPreviewKeepsRuneBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii untouched", "hello", 120, "hello"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte cut before rune", "abécd", 3, "ab"},
		{"multibyte kept whole", "ééé", 4, "éé"},
		{"emoji not split", "hi \U0001F600 there", 5, "hi "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stringPreview(tc.in, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
