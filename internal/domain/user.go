package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleTechnician UserRole = "TECHNICIAN"
	RoleAssistant  UserRole = "ASSISTANT"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for staff accounts. Technicians are the
// assignable subset.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTechnician reports whether the user can be assigned to a reclamation.
func (u *User) IsTechnician() bool {
	return u != nil && u.Role == RoleTechnician && u.Status == UserStatusActive
}
