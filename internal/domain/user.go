package domain

import "time"

// UserStatus represents lifecycle states for an end-user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for end-users who raise tickets. Staff accounts
// live in StaffMember; the two credential spaces never mix.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAuthenticate reports whether the account may log in. Suspended users
// keep their tickets but lose access.
func (u *User) CanAuthenticate() bool {
	return u.Status == UserStatusActive
}
