package adapters

import (
	"context"

	"github.com/google/uuid"

	catsvc "cityreport_backend/internal/categories/service"
	"cityreport_backend/internal/reports/ports"
	usersrepo "cityreport_backend/internal/users/repository"
	userssvc "cityreport_backend/internal/users/service"
	"cityreport_backend/platform/apperr"
)

// UserDirectory adapts the users repository for the report engine and the
// office membership checks of the categories module.
type UserDirectory struct {
	repo *usersrepo.Repository
}

// NewUserDirectory creates a new user directory adapter.
func NewUserDirectory(repo *usersrepo.Repository) *UserDirectory {
	return &UserDirectory{repo: repo}
}

// FindByID returns the user, or nil when the id does not resolve.
func (a *UserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*ports.User, error) {
	user, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ports.User{
		ID:        user.ID,
		Type:      ports.UserType(user.UserType),
		CompanyID: user.CompanyID,
	}, nil
}

// IsTechnicalStaff reports whether the user exists and is technical staff.
func (a *UserDirectory) IsTechnicalStaff(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := a.repo.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.UserType == userssvc.TypeTechnicalStaff, nil
}

// Compile-time checks for the interfaces UserDirectory serves.
var (
	_ ports.UserDirectory   = (*UserDirectory)(nil)
	_ catsvc.StaffDirectory = (*UserDirectory)(nil)
)
