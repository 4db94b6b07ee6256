package transport

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the request body for citizen self-registration.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName string  `json:"fullName" validate:"required,min=2,max=120"`
	Phone    *string `json:"phone,omitempty"`
}

// CreateAccountRequest is the admin request body for creating staff, PRO,
// and external maintainer accounts. CompanyID is required for maintainers.
type CreateAccountRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8,max=72"`
	FullName  string     `json:"fullName" validate:"required,min=2,max=120"`
	Phone     *string    `json:"phone,omitempty"`
	UserType  string     `json:"userType" validate:"required,oneof=technical_staff external_maintainer pro admin"`
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
}

// LoginRequest is the request body for credential sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the request body for rotating a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the response body for a user profile.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Phone     *string    `json:"phone,omitempty"`
	UserType  string     `json:"userType"`
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
