package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// SlaMonitor periodically sweeps open tickets and emits breach events.
// Each sweep evaluates every ticket against one settings snapshot and one
// clock reading, so a sweep can never report mixed calendars.
type SlaMonitor struct {
	cfg        config.MonitorConfig
	tickets    repository.TicketRepository
	slaService *service.SlaService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewSlaMonitor constructs the monitor without starting it.
func NewSlaMonitor(
	cfg config.MonitorConfig,
	tickets repository.TicketRepository,
	slaService *service.SlaService,
	dispatcher events.Dispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SlaMonitor {
	return &SlaMonitor{
		cfg:        cfg,
		tickets:    tickets,
		slaService: slaService,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start schedules the sweep on the configured cron spec.
func (m *SlaMonitor) Start() error {
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.cfg.CronSpec, m.runSweep); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("sla monitor started", zap.String("cron", m.cfg.CronSpec))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (m *SlaMonitor) Stop() {
	if m.cron == nil {
		return
	}
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("sla monitor stopped")
}

func (m *SlaMonitor) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.SweepTimeout)
	defer cancel()

	if err := m.Sweep(ctx); err != nil {
		m.logger.Error("sla sweep failed", zap.Error(err))
	}
}

// Sweep evaluates open tickets under one snapshot and publishes a breach
// event per breached track. Closed and resolved tickets are never swept.
func (m *SlaMonitor) Sweep(ctx context.Context) error {
	started := time.Now()

	tickets, err := m.tickets.ListOpen(ctx, m.cfg.SweepLimit)
	if err != nil {
		return err
	}
	batch, err := m.slaService.NewBatch(ctx)
	if err != nil {
		return err
	}

	breached := 0
	for i := range tickets {
		ticket := &tickets[i]
		eval, err := batch.Evaluate(ticket)
		if err != nil {
			m.logger.Warn("sla evaluation failed during sweep",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err),
			)
			continue
		}
		if eval.ResponseStatus == sla.ResponseBreached && eval.ResponseDueAt != nil {
			m.publishBreach(ctx, ticket, events.SlaTrackResponse, *eval.ResponseDueAt, eval)
			breached++
		}
		if eval.ResolutionStatus == sla.ResolutionBreached && eval.ResolutionDueAt != nil {
			m.publishBreach(ctx, ticket, events.SlaTrackResolution, *eval.ResolutionDueAt, eval)
			breached++
		}
	}

	m.logger.Info("sla sweep finished",
		zap.Int("swept", len(tickets)),
		zap.Int("breached_tracks", breached),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

func (m *SlaMonitor) publishBreach(ctx context.Context, ticket *domain.Ticket, track events.SlaTrack, dueAt time.Time, eval sla.Evaluation) {
	m.metrics.RecordSlaBreach(string(track))
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSlaBreached,
		TicketID:  ticket.ID,
		Actor:     events.SystemActor(),
		Timestamp: time.Now().UTC(),
		Payload: events.SlaBreachedPayload{
			Track:            track,
			DueAt:            dueAt,
			ResponseStatus:   eval.ResponseStatus,
			ResolutionStatus: eval.ResolutionStatus,
		},
	}
	if err := m.dispatcher.Publish(ctx, event); err != nil {
		m.logger.Warn("failed to publish sla breach event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
}
