package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateReportRequest is the request body for filing a new report.
// Images are storage keys produced by the upload service; between 1 and 3
// are required.
type CreateReportRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"required,min=1,max=4000"`
	CategoryID  uuid.UUID `json:"categoryId" validate:"required"`
	Images      []string  `json:"images" validate:"required,min=1,max=3,dive,required"`
	Latitude    float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64   `json:"longitude" validate:"min=-180,max=180"`
	Anonymous   bool      `json:"anonymous"`
}

// DecisionRequest is the request body for PRO/admin triage of a pending
// report: accept (route to staff) or reject with a reason.
type DecisionRequest struct {
	TargetStatus    string  `json:"targetStatus" validate:"required,oneof=assigned rejected"`
	RejectionReason *string `json:"rejectionReason,omitempty" validate:"omitempty,min=1,max=1000"`
}

// UpdateStatusRequest is the request body for staff-driven status changes.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress suspended resolved"`
}

// UpdateCategoryRequest is the request body for administrative category
// correction.
type UpdateCategoryRequest struct {
	CategoryID uuid.UUID `json:"categoryId" validate:"required"`
}

// AssignMaintainerRequest is the request body for external maintainer
// co-assignment.
type AssignMaintainerRequest struct {
	MaintainerID uuid.UUID `json:"maintainerId" validate:"required"`
}

// ReportImage carries a stored image key together with a time-limited URL.
type ReportImage struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}

// ReportResponse is the response body for a report.
type ReportResponse struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	CategoryID      uuid.UUID     `json:"categoryId"`
	Images          []ReportImage `json:"images"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	Status          string        `json:"status"`
	Anonymous       bool          `json:"anonymous"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	CreatorID       *uuid.UUID    `json:"creatorId,omitempty"`
	AssigneeID      *uuid.UUID    `json:"assigneeId,omitempty"`
	CoAssigneeID    *uuid.UUID    `json:"coAssigneeId,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ReportListResponse is the response body for report listings.
type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
	Total int              `json:"total"`
}
