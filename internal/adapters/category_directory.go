// Package adapters wires the bounded contexts together. Each adapter
// translates one module's surface into the interface another module consumes,
// so the modules never import each other directly.
package adapters

import (
	"context"

	"github.com/google/uuid"

	catrepo "cityreport_backend/internal/categories/repository"
	"cityreport_backend/internal/reports/ports"
	"cityreport_backend/platform/apperr"
)

// CategoryDirectory adapts the categories repository for the report engine.
type CategoryDirectory struct {
	repo *catrepo.Repository
}

// NewCategoryDirectory creates a new category directory adapter.
func NewCategoryDirectory(repo *catrepo.Repository) *CategoryDirectory {
	return &CategoryDirectory{repo: repo}
}

// FindByID returns the category, or nil when the id does not resolve.
func (a *CategoryDirectory) FindByID(ctx context.Context, id uuid.UUID) (*ports.Category, error) {
	category, err := a.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ports.Category{
		ID:       category.ID,
		Name:     category.Name,
		OfficeID: category.OfficeID,
	}, nil
}

// Compile-time check that CategoryDirectory implements ports.CategoryDirectory.
var _ ports.CategoryDirectory = (*CategoryDirectory)(nil)
