package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=2,max=100"`
	OfficeID *uuid.UUID `json:"officeId,omitempty"`
}

// UpdateCategoryRequest is the request body for renaming a category or
// moving it to another office. Omitted fields are left unchanged.
type UpdateCategoryRequest struct {
	Name     *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	OfficeID *uuid.UUID `json:"officeId,omitempty"`
}

// CreateOfficeRequest is the request body for creating an office.
type CreateOfficeRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// MemberRequest is the request body for office membership changes.
type MemberRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// CategoryResponse is the response body for a category.
type CategoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	OfficeID  *uuid.UUID `json:"officeId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// OfficeResponse is the response body for an office.
type OfficeResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemberListResponse lists the staff enrolled in an office.
type MemberListResponse struct {
	OfficeID uuid.UUID   `json:"officeId"`
	UserIDs  []uuid.UUID `json:"userIds"`
}
