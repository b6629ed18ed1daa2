package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffTicketsHandler manages the staff ticket queue.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	sla         *service.SlaService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService, assignmentService *service.AssignmentService, slaService *service.SlaService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: ticketService, assignments: assignmentService, sla: slaService}
}

// ListTickets GET /staff/tickets.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListStaffTickets(c.Context(), parseStaffTicketQuery(c))
	if err != nil {
		return err
	}
	evals, err := h.sla.EvaluateTickets(c.Context(), tickets)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i], evals[tickets[i].ID]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /staff/tickets/:id.
func (h *StaffTicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, comments, err := h.tickets.GetTicketForStaff(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	eval, err := h.sla.EvaluateTicket(c.Context(), ticket)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket, comments, eval)})
}

// GetHistory GET /staff/tickets/:id/history.
func (h *StaffTicketsHandler) GetHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	entries, err := h.tickets.ListHistory(c.Context(), principal.Staff, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryPayload, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewTicketHistoryPayload(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /staff/tickets/:id/comments. Staff may post public
// replies or internal notes.
func (h *StaffTicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return errorutil.NewValidationError("body required", nil)
	}
	commentType := domain.CommentTypePublicReply
	if req.CommentType != nil {
		commentType = *req.CommentType
	}

	comment, err := h.tickets.AddComment(c.Context(), domain.SubjectTypeStaff, principal.Staff.ID,
		c.Params("id"), commentType, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketCommentPayload(comment)})
}

// UpdateStatus PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return errorutil.NewValidationError("status required", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), principal.Staff, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

// UpdatePriority PATCH /staff/tickets/:id/priority.
func (h *StaffTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.PriorityID == "" {
		return errorutil.NewValidationError("priority_id required", nil)
	}

	ticket, err := h.tickets.UpdatePriority(c.Context(), principal.Staff, c.Params("id"), req.PriorityID)
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

// UpdateCategory PATCH /staff/tickets/:id/category.
func (h *StaffTicketsHandler) UpdateCategory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.CategoryID == "" {
		return errorutil.NewValidationError("category_id required", nil)
	}

	ticket, err := h.tickets.UpdateCategory(c.Context(), principal.Staff, c.Params("id"), req.CategoryID)
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

// SelfAssign POST /staff/tickets/:id/assign/self.
func (h *StaffTicketsHandler) SelfAssign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	ticket, err := h.assignments.SelfAssignTicket(c.Context(), principal.Staff, c.Params("id"))
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

// AutoAssign POST /staff/tickets/:id/assign/auto.
func (h *StaffTicketsHandler) AutoAssign(c *fiber.Ctx) error {
	ticket, err := h.assignments.AutoAssignTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

// Assign POST /staff/tickets/:id/assign. Admin only.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return errorutil.NewValidationError("agent_id required", nil)
	}

	ticket, err := h.assignments.AssignTicketToStaff(c.Context(), principal.Staff, c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

// Unassign DELETE /staff/tickets/:id/assign. Admin only.
func (h *StaffTicketsHandler) Unassign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return errorutil.NewUnauthorized("staff required")
	}
	ticket, err := h.assignments.UnassignTicket(c.Context(), principal.Staff, c.Params("id"))
	if err != nil {
		return err
	}
	return h.respondWithSummary(c, ticket)
}

func (h *StaffTicketsHandler) respondWithSummary(c *fiber.Ctx, ticket *domain.Ticket) error {
	eval, err := h.sla.EvaluateTicket(c.Context(), ticket)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket, eval)})
}

func parseStaffTicketQuery(c *fiber.Ctx) service.TicketStaffFilter {
	filter := service.TicketStaffFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if category := c.Query("category_id"); category != "" {
		filter.CategoryID = &category
	}
	if priority := c.Query("priority_id"); priority != "" {
		filter.PriorityID = &priority
	}
	if agent := c.Query("agent_id"); agent != "" {
		filter.AgentID = &agent
	}
	if c.Query("unassigned") == "true" {
		filter.Unassigned = true
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
