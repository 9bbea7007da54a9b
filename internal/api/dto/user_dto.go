package dto

import (
	"time"

	"github.com/spec-kit/agent-portal/internal/domain"
)

// RegisterRequest payload for agent self-registration.
type RegisterRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Organization string   `json:"organization"`
	Phone        string   `json:"phone"`
	State        string   `json:"state"`
	City         string   `json:"city"`
	Documents    []string `json:"documents"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the sanitized user record: the password hash is
// never serialized.
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	IsDeleted    bool      `json:"is_deleted"`
	ApprovedBy   *string   `json:"approved_by,omitempty"`
	BlockedBy    *string   `json:"blocked_by,omitempty"`
	DeletedBy    *string   `json:"deleted_by,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	State        string    `json:"state,omitempty"`
	City         string    `json:"city,omitempty"`
	Documents    []string  `json:"documents,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		Status:       string(user.Status),
		IsDeleted:    user.IsDeleted,
		ApprovedBy:   user.ApprovedBy,
		BlockedBy:    user.BlockedBy,
		DeletedBy:    user.DeletedBy,
		Organization: user.Organization,
		Phone:        user.Phone,
		State:        user.State,
		City:         user.City,
		Documents:    user.DocumentURLs,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// NewUserListResponse maps a slice of users.
func NewUserListResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
