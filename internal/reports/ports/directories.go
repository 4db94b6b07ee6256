// Package ports defines the collaborator interfaces the report lifecycle
// engine consumes. Implementations live in internal/adapters, keeping this
// module decoupled from the other bounded contexts.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// UserType classifies a platform account.
type UserType string

const (
	UserTypeCitizen            UserType = "citizen"
	UserTypeTechnicalStaff     UserType = "technical_staff"
	UserTypeExternalMaintainer UserType = "external_maintainer"
	UserTypePRO                UserType = "pro"
	UserTypeAdmin              UserType = "admin"
)

// User is the directory view of an account, as the engine needs it.
type User struct {
	ID        uuid.UUID
	Type      UserType
	CompanyID *uuid.UUID // external maintainers only
}

// CanTriage reports whether the user may accept, reject, or recategorize
// reports.
func (u User) CanTriage() bool {
	return u.Type == UserTypePRO || u.Type == UserTypeAdmin
}

// Category is the directory view of a report category.
type Category struct {
	ID       uuid.UUID
	Name     string
	OfficeID *uuid.UUID // absence blocks assignment
}

// CategoryDirectory is the read-only category → office lookup.
type CategoryDirectory interface {
	// FindByID returns the category, or nil when the id does not resolve.
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
}

// UserDirectory looks up arbitrary users by id.
type UserDirectory interface {
	// FindByID returns the user, or nil when the id does not resolve.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
