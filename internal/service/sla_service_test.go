package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

func newSlaServiceFixture(settings map[string]string, targets map[string]domain.SlaTarget) *SlaService {
	return NewSlaService(
		&fakeSettingsRepo{values: settings},
		&fakeSlaTargetRepo{targets: targets},
		zap.NewNop(),
	)
}

func intPtr(v int) *int { return &v }

func TestNewBatchParsesStoredSettings(t *testing.T) {
	svc := newSlaServiceFixture(map[string]string{
		domain.SettingSlaMode:          "business_hours",
		domain.SettingTimezone:         "UTC",
		domain.SettingWorkingDays:      "Mon,Tue,Wed,Thu,Fri",
		domain.SettingWorkingHourStart: "09:00",
		domain.SettingWorkingHourEnd:   "17:00",
	}, map[string]domain.SlaTarget{
		"pri-high": {PriorityID: "pri-high", ResponseHours: intPtr(4), ResolutionHours: intPtr(24)},
	})

	batch, err := svc.NewBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sla.ModeBusinessHours, batch.Config.Mode)
	assert.Equal(t, time.UTC, batch.Config.Location)
	require.Contains(t, batch.Targets, "pri-high")
	assert.Equal(t, 4, *batch.Targets["pri-high"].ResponseHours)
	assert.False(t, batch.Now.IsZero())
}

func TestNewBatchFallsBackOnGarbageSettings(t *testing.T) {
	svc := newSlaServiceFixture(map[string]string{
		domain.SettingSlaMode:          "lunar_hours",
		domain.SettingTimezone:         "Mars/Olympus",
		domain.SettingWorkingDays:      "Funday",
		domain.SettingWorkingHourStart: "25:61",
		domain.SettingWorkingHourEnd:   "banana",
	}, nil)

	batch, err := svc.NewBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sla.ModeCalendarHours, batch.Config.Mode)
	assert.Equal(t, time.UTC, batch.Config.Location)
	assert.Equal(t, 9*time.Hour, batch.Config.DayStart)
	assert.Equal(t, 17*time.Hour, batch.Config.DayEnd)
}

func TestBatchEvaluateWeekendSkip(t *testing.T) {
	svc := newSlaServiceFixture(map[string]string{
		domain.SettingSlaMode:          "business_hours",
		domain.SettingTimezone:         "UTC",
		domain.SettingWorkingDays:      "Mon,Tue,Wed,Thu,Fri",
		domain.SettingWorkingHourStart: "09:00",
		domain.SettingWorkingHourEnd:   "17:00",
	}, map[string]domain.SlaTarget{
		"pri-high": {PriorityID: "pri-high", ResponseHours: intPtr(4)},
	})

	batch, err := svc.NewBatch(context.Background())
	require.NoError(t, err)

	// Friday 15:00 UTC + 4 business hours lands Monday 11:00.
	ticket := &domain.Ticket{
		ID:         "t-1",
		PriorityID: "pri-high",
		Status:     domain.TicketStatusOpen,
		CreatedAt:  time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC),
	}
	eval, err := batch.Evaluate(ticket)
	require.NoError(t, err)
	require.NotNil(t, eval.ResponseDueAt)
	assert.Equal(t, time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC), eval.ResponseDueAt.UTC())
	assert.Nil(t, eval.ResolutionDueAt)
	assert.Equal(t, sla.ResolutionNotApplicable, eval.ResolutionStatus)
}

func TestEvaluateTicketsSharesOneSnapshot(t *testing.T) {
	svc := newSlaServiceFixture(map[string]string{
		domain.SettingSlaMode: "calendar_hours",
	}, map[string]domain.SlaTarget{
		"pri-high": {PriorityID: "pri-high", ResponseHours: intPtr(2), ResolutionHours: intPtr(8)},
	})

	old := time.Now().UTC().Add(-72 * time.Hour)
	fresh := time.Now().UTC().Add(-10 * time.Minute)
	tickets := []domain.Ticket{
		{ID: "t-old", PriorityID: "pri-high", Status: domain.TicketStatusOpen, CreatedAt: old},
		{ID: "t-fresh", PriorityID: "pri-high", Status: domain.TicketStatusOpen, CreatedAt: fresh},
		{ID: "t-untargeted", PriorityID: "pri-unknown", Status: domain.TicketStatusOpen, CreatedAt: fresh},
	}

	evals, err := svc.EvaluateTickets(context.Background(), tickets)
	require.NoError(t, err)
	require.Len(t, evals, 3)

	assert.Equal(t, sla.ResponseBreached, evals["t-old"].ResponseStatus)
	assert.Equal(t, sla.ResolutionBreached, evals["t-old"].ResolutionStatus)

	assert.Equal(t, sla.ResponsePending, evals["t-fresh"].ResponseStatus)
	assert.Equal(t, sla.ResolutionOnTrack, evals["t-fresh"].ResolutionStatus)

	assert.Equal(t, sla.ResponseNotApplicable, evals["t-untargeted"].ResponseStatus)
	assert.Equal(t, sla.ResolutionNotApplicable, evals["t-untargeted"].ResolutionStatus)
}

func TestEvaluateTicketResolvedIsNotGraded(t *testing.T) {
	svc := newSlaServiceFixture(map[string]string{
		domain.SettingSlaMode: "calendar_hours",
	}, map[string]domain.SlaTarget{
		"pri-high": {PriorityID: "pri-high", ResolutionHours: intPtr(1)},
	})

	resolvedAt := time.Now().UTC().Add(-time.Hour)
	ticket := &domain.Ticket{
		ID:         "t-1",
		PriorityID: "pri-high",
		Status:     domain.TicketStatusResolved,
		CreatedAt:  time.Now().UTC().Add(-48 * time.Hour),
		ResolvedAt: &resolvedAt,
	}
	eval, err := svc.EvaluateTicket(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, sla.ResolutionNotApplicable, eval.ResolutionStatus)
}
