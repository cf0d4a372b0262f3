package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/worktodo-api/internal/domain"
)

// Common request/response structures. Task and file responses serialize the
// domain types directly; their JSON tags already hide storage-only fields
// such as the file's path on disk.

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title        string `json:"title"        validate:"required,min=3,max=40"`
	Description  string `json:"description"  validate:"max=2000"`
	Project      string `json:"project"      validate:"required,min=3,max=63"`
	Organisation string `json:"organisation" validate:"required,min=3,max=255"`
	Status       string `json:"status"       validate:"omitempty,oneof=new in_progress done"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title        *string `json:"title"        validate:"omitempty,min=3,max=40"`
	Description  *string `json:"description"  validate:"omitempty,max=2000"`
	Project      *string `json:"project"      validate:"omitempty,min=3,max=63"`
	Organisation *string `json:"organisation" validate:"omitempty,min=3,max=255"`
	Status       *string `json:"status"       validate:"omitempty,oneof=new in_progress done"`
}

// UpdateTaskStatusRequest defines the payload for the status transition
// endpoint.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new in_progress done"`
}

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username        string `json:"username"         validate:"required,min=3,max=32"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse is the public representation of a user. Credentials never
// appear here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// MessageResponse is a minimal acknowledgement payload for endpoints whose
// effect is carried in cookies rather than the body.
type MessageResponse struct {
	Message string `json:"message"`
}
