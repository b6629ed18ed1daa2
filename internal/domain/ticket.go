package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Ticket is the aggregate for support requests. AgentID is nil while the
// ticket is unassigned. CreatedAt is immutable once set; UpdatedAt moves on
// every change.
type Ticket struct {
	ID          string
	ExternalKey string
	RequesterID string
	CategoryID  string
	PriorityID  string
	AgentID     *string
	Subject     string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
	ClosedAt    *time.Time
}
