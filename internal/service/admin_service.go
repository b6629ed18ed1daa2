package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AdminService covers installation management: categories, priorities, SLA
// targets, calendar settings and staff accounts. Every mutation is written to
// the activity log.
type AdminService struct {
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	targets    repository.SlaTargetRepository
	settings   repository.SettingsRepository
	staff      repository.StaffRepository
	activity   repository.ActivityLogRepository
	logger     *zap.Logger
	bcryptCost int
}

// AdminDependencies bundles repositories for the admin service.
type AdminDependencies struct {
	CategoryRepo  repository.CategoryRepository
	PriorityRepo  repository.PriorityRepository
	SlaTargetRepo repository.SlaTargetRepository
	SettingsRepo  repository.SettingsRepository
	StaffRepo     repository.StaffRepository
	ActivityRepo  repository.ActivityLogRepository
	Logger        *zap.Logger
	BcryptCost    int
}

// NewAdminService builds the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		targets:    deps.SlaTargetRepo,
		settings:   deps.SettingsRepo,
		staff:      deps.StaffRepo,
		activity:   deps.ActivityRepo,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
	}
}

// CategoryInput carries category fields for create/update.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// CreateCategory adds a new ticket category.
func (s *AdminService) CreateCategory(ctx context.Context, actorID string, input CategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, errorutil.NewValidationError("category name is required", nil)
	}
	category := &domain.Category{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.logActivity(ctx, actorID, "category_created", "category", category.ID, category.Name)
	return category, nil
}

// UpdateCategory edits an existing category.
func (s *AdminService) UpdateCategory(ctx context.Context, actorID, categoryID string, input CategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("category", map[string]any{"category_id": categoryID})
		}
		return nil, errorutil.MapError(err)
	}
	if input.Name != "" {
		category.Name = input.Name
	}
	category.Description = input.Description
	category.Color = input.Color
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.logActivity(ctx, actorID, "category_updated", "category", category.ID, category.Name)
	return category, nil
}

// SetCategoryArchived archives or restores a category. Archived categories
// stay attached to existing tickets but reject new ones.
func (s *AdminService) SetCategoryArchived(ctx context.Context, actorID, categoryID string, archived bool) error {
	if err := s.categories.SetArchived(ctx, categoryID, archived); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewNotFound("category", map[string]any{"category_id": categoryID})
		}
		return errorutil.MapError(err)
	}
	action := "category_archived"
	if !archived {
		action = "category_restored"
	}
	s.logActivity(ctx, actorID, action, "category", categoryID, "")
	return nil
}

// ListCategories returns categories, optionally including archived ones.
func (s *AdminService) ListCategories(ctx context.Context, includeArchived bool) ([]domain.Category, error) {
	return s.categories.List(ctx, includeArchived)
}

// ListPriorities returns the fixed priority ladder.
func (s *AdminService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	return s.priorities.List(ctx)
}

// UpdatePriorityAppearance edits a priority's description and color. Names
// and ordering are fixed at install time.
func (s *AdminService) UpdatePriorityAppearance(ctx context.Context, actorID, priorityID, description, color string) error {
	if err := s.priorities.UpdateAppearance(ctx, priorityID, description, color); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewNotFound("priority", map[string]any{"priority_id": priorityID})
		}
		return errorutil.MapError(err)
	}
	s.logActivity(ctx, actorID, "priority_updated", "priority", priorityID, "")
	return nil
}

// UpsertSlaTarget sets the SLA hours for a priority. Nil hours clear that
// track. Negative values are rejected.
func (s *AdminService) UpsertSlaTarget(ctx context.Context, actorID, priorityID string, responseHours, resolutionHours *int) (*domain.SlaTarget, error) {
	if responseHours != nil && *responseHours < 0 {
		return nil, errorutil.NewValidationError("response hours must be non-negative", nil)
	}
	if resolutionHours != nil && *resolutionHours < 0 {
		return nil, errorutil.NewValidationError("resolution hours must be non-negative", nil)
	}
	if _, err := s.priorities.GetByID(ctx, priorityID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("priority", map[string]any{"priority_id": priorityID})
		}
		return nil, errorutil.MapError(err)
	}
	target := &domain.SlaTarget{
		PriorityID:      priorityID,
		ResponseHours:   responseHours,
		ResolutionHours: resolutionHours,
	}
	if err := s.targets.Upsert(ctx, target); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.logActivity(ctx, actorID, "sla_target_updated", "priority", priorityID,
		fmt.Sprintf("response=%s resolution=%s", formatHours(responseHours), formatHours(resolutionHours)))
	return target, nil
}

// ListSlaTargets returns every configured SLA target keyed by priority.
func (s *AdminService) ListSlaTargets(ctx context.Context) (map[string]domain.SlaTarget, error) {
	return s.targets.GetAll(ctx)
}

// GetSettings returns the current system settings.
func (s *AdminService) GetSettings(ctx context.Context) (map[string]string, error) {
	return s.settings.GetAll(ctx)
}

// UpdateSettings writes calendar settings after validating that the resulting
// configuration is usable. A business_hours calendar with no working days is
// rejected here so the evaluator never sees one from our own writes.
func (s *AdminService) UpdateSettings(ctx context.Context, actorID string, updates map[string]string) error {
	current, err := s.settings.GetAll(ctx)
	if err != nil {
		return errorutil.MapError(err)
	}
	merged := make(map[string]string, len(current)+len(updates))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}

	cfg, fallbacks := sla.ParseSettings(sla.RawSettings{
		Mode:        merged[domain.SettingSlaMode],
		Timezone:    merged[domain.SettingTimezone],
		WorkingDays: merged[domain.SettingWorkingDays],
		StartTime:   merged[domain.SettingWorkingHourStart],
		EndTime:     merged[domain.SettingWorkingHourEnd],
	})
	if len(fallbacks) > 0 {
		details := make(map[string]any, len(fallbacks))
		for _, fb := range fallbacks {
			details[fb.Setting] = fmt.Sprintf("%q is invalid, would fall back to %q", fb.Given, fb.Used)
		}
		return errorutil.NewValidationError("invalid calendar settings", details)
	}
	if err := cfg.Validate(); err != nil {
		return errorutil.NewValidationError(err.Error(), nil)
	}

	for key, value := range updates {
		if err := s.settings.Set(ctx, key, value, &actorID); err != nil {
			return errorutil.MapError(err)
		}
		s.logActivity(ctx, actorID, "setting_updated", "setting", key, value)
	}
	return nil
}

// StaffInput carries staff account fields for creation.
type StaffInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
}

// CreateStaff provisions a new agent or admin account.
func (s *AdminService) CreateStaff(ctx context.Context, actorID string, input StaffInput) (*domain.StaffMember, error) {
	if input.Role != domain.StaffRoleAgent && input.Role != domain.StaffRoleAdmin {
		return nil, errorutil.NewValidationError("unknown staff role", map[string]any{"role": input.Role})
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if _, err := s.staff.GetByEmail(ctx, input.Email); err == nil {
		return nil, errorutil.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errorutil.MapError(err)
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	staff := &domain.StaffMember{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.logActivity(ctx, actorID, "staff_created", "staff", staff.ID, string(staff.Role))
	return staff, nil
}

// SetStaffActive activates or deactivates a staff account.
func (s *AdminService) SetStaffActive(ctx context.Context, actorID, staffID string, active bool) (*domain.StaffMember, error) {
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return nil, errorutil.MapError(err)
	}
	staff.Active = active
	if err := s.staff.Update(ctx, staff); err != nil {
		return nil, errorutil.MapError(err)
	}
	action := "staff_deactivated"
	if active {
		action = "staff_activated"
	}
	s.logActivity(ctx, actorID, action, "staff", staffID, "")
	return staff, nil
}

// ListStaff returns staff accounts matching the filter.
func (s *AdminService) ListStaff(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	return s.staff.List(ctx, filter)
}

// ListActivity returns the most recent admin activity entries.
func (s *AdminService) ListActivity(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	return s.activity.ListRecent(ctx, limit)
}

func (s *AdminService) logActivity(ctx context.Context, actorID, action, targetType, targetID, details string) {
	entry := &domain.ActivityLog{
		Action:     action,
		TargetType: targetType,
		Details:    details,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.logger.Warn("activity log write failed", zap.String("action", action), zap.Error(err))
	}
}

func formatHours(h *int) string {
	if h == nil {
		return "none"
	}
	return fmt.Sprintf("%dh", *h)
}
