package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SlaService bridges stored configuration and the pure sla package. Every
// batch of evaluations runs against one settings read and one clock reading,
// so a settings change mid-request cannot produce mixed results.
type SlaService struct {
	settings repository.SettingsRepository
	targets  repository.SlaTargetRepository
	logger   *zap.Logger
}

// NewSlaService builds the service.
func NewSlaService(settings repository.SettingsRepository, targets repository.SlaTargetRepository, logger *zap.Logger) *SlaService {
	return &SlaService{settings: settings, targets: targets, logger: logger}
}

// SlaBatch is an immutable evaluation snapshot: calendar config, per-priority
// targets and the clock, all captured at the same moment.
type SlaBatch struct {
	Config  sla.Config
	Targets map[string]sla.Target
	Now     time.Time
}

// NewBatch reads settings and targets fresh and captures now. Parse fallbacks
// are logged at Warn; they indicate misconfiguration, not failure.
func (s *SlaService) NewBatch(ctx context.Context) (*SlaBatch, error) {
	stored, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	cfg, fallbacks := sla.ParseSettings(sla.RawSettings{
		Mode:        stored[domain.SettingSlaMode],
		Timezone:    stored[domain.SettingTimezone],
		WorkingDays: stored[domain.SettingWorkingDays],
		StartTime:   stored[domain.SettingWorkingHourStart],
		EndTime:     stored[domain.SettingWorkingHourEnd],
	})
	for _, fb := range fallbacks {
		s.logger.Warn("sla setting fell back to default",
			zap.String("setting", fb.Setting),
			zap.String("given", fb.Given),
			zap.String("used", fb.Used),
		)
	}

	storedTargets, err := s.targets.GetAll(ctx)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	targets := make(map[string]sla.Target, len(storedTargets))
	for priorityID, t := range storedTargets {
		targets[priorityID] = sla.Target{
			ResponseHours:   t.ResponseHours,
			ResolutionHours: t.ResolutionHours,
		}
	}

	return &SlaBatch{
		Config:  cfg,
		Targets: targets,
		Now:     time.Now().UTC(),
	}, nil
}

// Evaluate computes both SLA tracks for one ticket against the batch
// snapshot. A priority without a configured target evaluates to
// not-applicable on both tracks.
func (b *SlaBatch) Evaluate(ticket *domain.Ticket) (sla.Evaluation, error) {
	return sla.Evaluate(sla.Snapshot(ticket), b.Targets[ticket.PriorityID], b.Config, b.Now)
}

// EvaluateTickets evaluates a slice of tickets under one fresh snapshot,
// keyed by ticket id.
func (s *SlaService) EvaluateTickets(ctx context.Context, tickets []domain.Ticket) (map[string]sla.Evaluation, error) {
	batch, err := s.NewBatch(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]sla.Evaluation, len(tickets))
	for i := range tickets {
		eval, err := batch.Evaluate(&tickets[i])
		if err != nil {
			return nil, errorutil.MapError(err)
		}
		result[tickets[i].ID] = eval
	}
	return result, nil
}

// EvaluateTicket evaluates a single ticket with a fresh snapshot.
func (s *SlaService) EvaluateTicket(ctx context.Context, ticket *domain.Ticket) (sla.Evaluation, error) {
	batch, err := s.NewBatch(ctx)
	if err != nil {
		return sla.Evaluation{}, err
	}
	eval, err := batch.Evaluate(ticket)
	if err != nil {
		return sla.Evaluation{}, errorutil.MapError(err)
	}
	return eval, nil
}
