package domain

import "time"

// ActivityLog records administrative and system actions for auditing.
type ActivityLog struct {
	ID         string
	ActorID    *string
	Action     string
	TargetType string
	TargetID   *string
	Details    string
	CreatedAt  time.Time
}
