package service

import (
	"context"
	"strings"

	"cityreport_backend/internal/categories/repository"
	"cityreport_backend/internal/categories/transport"
	"cityreport_backend/platform/apperr"

	"github.com/google/uuid"
)

// StaffDirectory answers whether a user is an enrollable technical staff
// member. Implemented by the adapters package against the users module.
type StaffDirectory interface {
	IsTechnicalStaff(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Service provides category and office management.
type Service struct {
	repo  *repository.Repository
	staff StaffDirectory
}

// New creates a new categories service.
func New(repo *repository.Repository, staff StaffDirectory) *Service {
	return &Service{repo: repo, staff: staff}
}

// CreateCategory creates a category, optionally bound to an owning office.
func (s *Service) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*transport.CategoryResponse, error) {
	if req.OfficeID != nil {
		if _, err := s.repo.GetOfficeByID(ctx, *req.OfficeID); err != nil {
			return nil, err
		}
	}

	category, err := s.repo.CreateCategory(ctx, strings.TrimSpace(req.Name), req.OfficeID)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// UpdateCategory renames a category or moves it to another office.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (*transport.CategoryResponse, error) {
	if req.Name == nil && req.OfficeID == nil {
		return nil, apperr.Validation("nothing to update")
	}
	if req.OfficeID != nil {
		if _, err := s.repo.GetOfficeByID(ctx, *req.OfficeID); err != nil {
			return nil, err
		}
	}

	var name *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		name = &trimmed
	}

	category, err := s.repo.UpdateCategory(ctx, id, name, req.OfficeID)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]transport.CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CategoryResponse, len(categories))
	for i := range categories {
		out[i] = *toCategoryResponse(&categories[i])
	}
	return out, nil
}

// CreateOffice creates a municipal office.
func (s *Service) CreateOffice(ctx context.Context, req transport.CreateOfficeRequest) (*transport.OfficeResponse, error) {
	office, err := s.repo.CreateOffice(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	return toOfficeResponse(office), nil
}

// ListOffices returns all offices.
func (s *Service) ListOffices(ctx context.Context) ([]transport.OfficeResponse, error) {
	offices, err := s.repo.ListOffices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.OfficeResponse, len(offices))
	for i := range offices {
		out[i] = *toOfficeResponse(&offices[i])
	}
	return out, nil
}

// AddMember enrolls a technical staff member in an office, making them
// eligible for assignment routing of that office's categories.
func (s *Service) AddMember(ctx context.Context, officeID uuid.UUID, req transport.MemberRequest) error {
	if _, err := s.repo.GetOfficeByID(ctx, officeID); err != nil {
		return err
	}

	isStaff, err := s.staff.IsTechnicalStaff(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !isStaff {
		return apperr.Validation("office members must be technical staff")
	}

	return s.repo.AddMember(ctx, officeID, req.UserID)
}

// RemoveMember removes a staff member from an office. Reports already
// assigned to them are unaffected.
func (s *Service) RemoveMember(ctx context.Context, officeID, userID uuid.UUID) error {
	return s.repo.RemoveMember(ctx, officeID, userID)
}

// ListMembers returns the staff enrolled in an office.
func (s *Service) ListMembers(ctx context.Context, officeID uuid.UUID) (*transport.MemberListResponse, error) {
	if _, err := s.repo.GetOfficeByID(ctx, officeID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, officeID)
	if err != nil {
		return nil, err
	}
	return &transport.MemberListResponse{OfficeID: officeID, UserIDs: members}, nil
}

func toCategoryResponse(c *repository.Category) *transport.CategoryResponse {
	return &transport.CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		OfficeID:  c.OfficeID,
		CreatedAt: c.CreatedAt,
	}
}

func toOfficeResponse(o *repository.Office) *transport.OfficeResponse {
	return &transport.OfficeResponse{
		ID:        o.ID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
	}
}
