package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rickar/cal/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const dashboardCacheKey = "analytics:dashboard"

// Dashboard aggregates queue health numbers for the staff overview screen.
type Dashboard struct {
	CountsByStatus   map[domain.TicketStatus]int `json:"counts_by_status"`
	CountsByPriority map[string]int              `json:"counts_by_priority"`
	CountsByCategory map[string]int              `json:"counts_by_category"`
	// Averages cover tickets resolved in the trailing 30 days.
	AvgResolutionHours         float64   `json:"avg_resolution_hours"`
	AvgBusinessResolutionHours float64   `json:"avg_business_resolution_hours"`
	ResolvedLast30Days         int       `json:"resolved_last_30_days"`
	GeneratedAt                time.Time `json:"generated_at"`
}

// AnalyticsService computes dashboard aggregates. Results are cached in Redis
// for a short TTL since the queries scan the whole tickets table.
type AnalyticsService struct {
	tickets  repository.TicketRepository
	slaSvc   *SlaService
	redis    *redis.Client
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewAnalyticsService builds the service.
func NewAnalyticsService(tickets repository.TicketRepository, slaSvc *SlaService, redisClient *redis.Client, logger *zap.Logger, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		tickets:  tickets,
		slaSvc:   slaSvc,
		redis:    redisClient,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// GetDashboard returns the cached dashboard, recomputing on miss.
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var dashboard Dashboard
			if jsonErr := json.Unmarshal([]byte(cached), &dashboard); jsonErr == nil {
				return &dashboard, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	dashboard, err := s.computeDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		encoded, err := json.Marshal(dashboard)
		if err == nil {
			if err := s.redis.Set(ctx, dashboardCacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return dashboard, nil
}

func (s *AnalyticsService) computeDashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{GeneratedAt: time.Now().UTC()}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		counts, err := s.tickets.CountByStatus(gctx)
		if err != nil {
			return err
		}
		dashboard.CountsByStatus = counts
		return nil
	})
	group.Go(func() error {
		counts, err := s.tickets.CountByPriority(gctx)
		if err != nil {
			return err
		}
		dashboard.CountsByPriority = counts
		return nil
	})
	group.Go(func() error {
		counts, err := s.tickets.CountByCategory(gctx)
		if err != nil {
			return err
		}
		dashboard.CountsByCategory = counts
		return nil
	})
	group.Go(func() error {
		return s.computeResolutionAverages(gctx, dashboard)
	})
	if err := group.Wait(); err != nil {
		return nil, errorutil.MapError(err)
	}
	return dashboard, nil
}

// computeResolutionAverages measures wall-clock and business-hours time to
// resolution over the trailing 30 days. Business hours follow the same
// calendar the SLA engine uses, mapped onto a rickar/cal business calendar.
func (s *AnalyticsService) computeResolutionAverages(ctx context.Context, dashboard *Dashboard) error {
	since := time.Now().UTC().AddDate(0, 0, -30)
	resolved, err := s.tickets.ListResolvedSince(ctx, since, 1000)
	if err != nil {
		return err
	}
	dashboard.ResolvedLast30Days = len(resolved)
	if len(resolved) == 0 {
		return nil
	}

	batch, err := s.slaSvc.NewBatch(ctx)
	if err != nil {
		return err
	}
	calendar := businessCalendar(batch.Config)

	var totalHours, totalBusinessHours float64
	counted := 0
	for i := range resolved {
		ticket := &resolved[i]
		if ticket.ResolvedAt == nil {
			continue
		}
		start := ticket.CreatedAt.In(batch.Config.Location)
		end := ticket.ResolvedAt.In(batch.Config.Location)
		if end.Before(start) {
			continue
		}
		totalHours += end.Sub(start).Hours()
		totalBusinessHours += calendar.WorkHoursInRange(start, end).Hours()
		counted++
	}
	if counted > 0 {
		dashboard.AvgResolutionHours = totalHours / float64(counted)
		dashboard.AvgBusinessResolutionHours = totalBusinessHours / float64(counted)
	}
	return nil
}

// businessCalendar translates the SLA calendar config into a rickar/cal
// business calendar for elapsed-time measurement.
func businessCalendar(cfg sla.Config) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		c.SetWorkday(wd, cfg.WorkingDays[wd])
	}
	c.SetWorkHours(cfg.DayStart, cfg.DayEnd)
	return c
}
