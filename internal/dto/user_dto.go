// FILE: internal/dto/user_dto.go
package dto

import (
	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SessionResponse is the tab's session as the UI needs it. The token itself
// never leaves the console.
type SessionResponse struct {
	Authenticated bool                 `json:"authenticated"`
	UserId        int64                `json:"userId,omitempty"`
	Subject       string               `json:"sub,omitempty"`
	Role          entity.UserRole      `json:"role,omitempty"`
	Organization  *entity.Organization `json:"currentOrganization,omitempty"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	Enabled  *bool  `json:"enabled"`
}

type UpdateUserRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	Enabled  *bool  `json:"enabled"`
}
