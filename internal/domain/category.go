package domain

import "time"

// Category groups tickets by topic. Archived categories stay attached to
// existing tickets but cannot be used for new ones.
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
