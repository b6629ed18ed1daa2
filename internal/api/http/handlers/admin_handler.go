package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AdminHandler exposes configuration, staff management and reporting
// endpoints.
type AdminHandler struct {
	admin     *service.AdminService
	analytics *service.AnalyticsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, analyticsService *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{admin: adminService, analytics: analyticsService}
}

// Dashboard GET /staff/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.analytics.GetDashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}

// ListCategories GET /staff/categories.
func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	includeArchived := c.Query("include_archived") == "true"
	categories, err := h.admin.ListCategories(c.Context(), includeArchived)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.NewCategoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListPriorities GET /staff/priorities. Each priority carries its SLA
// target when one is configured.
func (h *AdminHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.admin.ListPriorities(c.Context())
	if err != nil {
		return err
	}
	targets, err := h.admin.ListSlaTargets(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PriorityResponse, 0, len(priorities))
	for i := range priorities {
		var target *domain.SlaTarget
		if t, ok := targets[priorities[i].ID]; ok {
			target = &t
		}
		items = append(items, dto.NewPriorityResponse(&priorities[i], target))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /admin/categories.
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	category, err := h.admin.CreateCategory(c.Context(), principal.Staff.ID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// UpdateCategory PATCH /admin/categories/:id.
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	category, err := h.admin.UpdateCategory(c.Context(), principal.Staff.ID, c.Params("id"), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// ArchiveCategory POST /admin/categories/:id/archive.
func (h *AdminHandler) ArchiveCategory(c *fiber.Ctx) error {
	return h.setCategoryArchived(c, true)
}

// RestoreCategory POST /admin/categories/:id/restore.
func (h *AdminHandler) RestoreCategory(c *fiber.Ctx) error {
	return h.setCategoryArchived(c, false)
}

func (h *AdminHandler) setCategoryArchived(c *fiber.Ctx, archived bool) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	if err := h.admin.SetCategoryArchived(c.Context(), principal.Staff.ID, c.Params("id"), archived); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"archived": archived}})
}

// UpdatePriorityAppearance PATCH /admin/priorities/:id.
func (h *AdminHandler) UpdatePriorityAppearance(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.PriorityAppearanceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if err := h.admin.UpdatePriorityAppearance(c.Context(), principal.Staff.ID, c.Params("id"), req.Description, req.Color); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// UpsertSlaTarget PUT /admin/priorities/:id/sla-target.
func (h *AdminHandler) UpsertSlaTarget(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.SlaTargetRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	target, err := h.admin.UpsertSlaTarget(c.Context(), principal.Staff.ID, c.Params("id"), req.ResponseHours, req.ResolutionHours)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSlaTargetResponse(target)})
}

// GetSettings GET /admin/settings.
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.admin.GetSettings(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// UpdateSettings PATCH /admin/settings. Rejected wholesale if the merged
// result would not parse cleanly.
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.SettingsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if len(req.Settings) == 0 {
		return errorutil.NewValidationError("settings required", nil)
	}
	if err := h.admin.UpdateSettings(c.Context(), principal.Staff.ID, req.Settings); err != nil {
		return err
	}
	settings, err := h.admin.GetSettings(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// CreateStaff POST /admin/staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errorutil.NewValidationError("name, email, password required", nil)
	}
	staff, err := h.admin.CreateStaff(c.Context(), principal.Staff.ID, service.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStaffProfile(staff)})
}

// ListStaff GET /admin/staff.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	filter := repository.StaffFilter{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.StaffRole(roleStr)
		filter.Role = &role
	}
	if activeStr := c.Query("active"); activeStr != "" {
		active := activeStr == "true"
		filter.Active = &active
	}
	members, err := h.admin.ListStaff(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.StaffProfile, 0, len(members))
	for i := range members {
		items = append(items, dto.NewStaffProfile(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetStaffActive PATCH /admin/staff/:id/active.
func (h *AdminHandler) SetStaffActive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.SetStaffActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	staff, err := h.admin.SetStaffActive(c.Context(), principal.Staff.ID, c.Params("id"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffProfile(staff)})
}

// ListActivity GET /admin/activity.
func (h *AdminHandler) ListActivity(c *fiber.Ctx) error {
	entries, err := h.admin.ListActivity(c.Context(), parseInt(c.Query("limit"), 50))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityLogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewActivityLogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
