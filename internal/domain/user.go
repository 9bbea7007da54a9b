package domain

import "time"

// UserRole distinguishes administrators from broker agents.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleAgent UserRole = "user"
)

// UserStatus represents lifecycle states for an agent account.
type UserStatus string

const (
	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "block"
)

// User is the domain model for portal accounts: admins and the broker
// agents who submit requests on behalf of students.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	IsDeleted    bool

	// Audit references: the admin who performed the transition. Nil
	// until the corresponding transition happens.
	ApprovedBy *string
	BlockedBy  *string
	DeletedBy  *string

	// Profile attributes, inert with respect to lifecycle logic.
	Organization string
	Phone        string
	State        string
	City         string
	DocumentURLs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
