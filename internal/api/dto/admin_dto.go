package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CategoryRequest payload for category create/update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CategoryResponse payload.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategoryResponse maps a category.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		Archived:    category.Archived,
		CreatedAt:   category.CreatedAt,
	}
}

// PriorityAppearanceRequest edits the display fields of a priority.
type PriorityAppearanceRequest struct {
	Description string `json:"description"`
	Color       string `json:"color"`
}

// PriorityResponse payload.
type PriorityResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Color       string             `json:"color"`
	SortOrder   int                `json:"sort_order"`
	SlaTarget   *SlaTargetResponse `json:"sla_target,omitempty"`
}

// NewPriorityResponse maps a priority and its optional SLA target.
func NewPriorityResponse(priority *domain.Priority, target *domain.SlaTarget) PriorityResponse {
	resp := PriorityResponse{
		ID:          priority.ID,
		Name:        priority.Name,
		Description: priority.Description,
		Color:       priority.Color,
		SortOrder:   priority.SortOrder,
	}
	if target != nil {
		t := NewSlaTargetResponse(target)
		resp.SlaTarget = &t
	}
	return resp
}

// SlaTargetRequest payload for target upsert.
type SlaTargetRequest struct {
	ResponseHours   *int `json:"response_time_hours"`
	ResolutionHours *int `json:"resolution_time_hours"`
}

// SlaTargetResponse payload.
type SlaTargetResponse struct {
	PriorityID      string    `json:"priority_id"`
	ResponseHours   *int      `json:"response_time_hours"`
	ResolutionHours *int      `json:"resolution_time_hours"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSlaTargetResponse maps an SLA target.
func NewSlaTargetResponse(target *domain.SlaTarget) SlaTargetResponse {
	return SlaTargetResponse{
		PriorityID:      target.PriorityID,
		ResponseHours:   target.ResponseHours,
		ResolutionHours: target.ResolutionHours,
		UpdatedAt:       target.UpdatedAt,
	}
}

// SettingsUpdateRequest carries key/value setting updates.
type SettingsUpdateRequest struct {
	Settings map[string]string `json:"settings"`
}

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
}

// SetStaffActiveRequest payload.
type SetStaffActiveRequest struct {
	Active bool `json:"active"`
}

// ActivityLogResponse payload.
type ActivityLogResponse struct {
	ID         string    `json:"id"`
	ActorID    *string   `json:"actor_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   *string   `json:"target_id"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewActivityLogResponse maps an activity entry.
func NewActivityLogResponse(entry *domain.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt,
	}
}
