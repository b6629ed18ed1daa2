package domain

import "time"

// Priority is an urgency level tickets are filed under. Names are fixed at
// seed time; admins may edit description and color only.
type Priority struct {
	ID          string
	Name        string
	Description string
	Color       string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SlaTarget holds the SLA hours configured for one priority. Nil hours mean
// no SLA of that kind applies.
type SlaTarget struct {
	PriorityID      string
	ResponseHours   *int
	ResolutionHours *int
	UpdatedAt       time.Time
}
