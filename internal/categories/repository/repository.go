package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cityreport_backend/platform/apperr"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const (
	categoryNotFoundMessage = "category not found"
	officeNotFoundMessage   = "office not found"
)

// Category is a report category owned by at most one municipal office.
type Category struct {
	ID        uuid.UUID  `db:"id"`
	Name      string     `db:"name"`
	OfficeID  *uuid.UUID `db:"office_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Office is a municipal office that owns categories and employs technical
// staff.
type Office struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Repository provides database operations for categories and offices.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new categories repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, name string, officeID *uuid.UUID) (*Category, error) {
	query := `
		INSERT INTO categories (id, name, office_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, office_id, created_at, updated_at`

	var c Category
	err := r.pool.QueryRow(ctx, query, uuid.New(), name, officeID).Scan(
		&c.ID, &c.Name, &c.OfficeID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("a category with this name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// UpdateCategory renames a category or moves it to another office.
func (r *Repository) UpdateCategory(ctx context.Context, id uuid.UUID, name *string, officeID *uuid.UUID) (*Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name),
			office_id = COALESCE($3, office_id),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, office_id, created_at, updated_at`

	var c Category
	err := r.pool.QueryRow(ctx, query, id, name, officeID).Scan(
		&c.ID, &c.Name, &c.OfficeID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(categoryNotFoundMessage)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// GetCategoryByID retrieves a category by id.
func (r *Repository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	query := `
		SELECT id, name, office_id, created_at, updated_at
		FROM categories
		WHERE id = $1`

	var c Category
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.OfficeID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(categoryNotFoundMessage)
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return &c, nil
}

// ListCategories lists all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, office_id, created_at, updated_at
		FROM categories
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.OfficeID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateOffice inserts a new office.
func (r *Repository) CreateOffice(ctx context.Context, name string) (*Office, error) {
	query := `
		INSERT INTO offices (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at, updated_at`

	var o Office
	err := r.pool.QueryRow(ctx, query, uuid.New(), name).Scan(
		&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("an office with this name already exists")
		}
		return nil, fmt.Errorf("create office: %w", err)
	}
	return &o, nil
}

// GetOfficeByID retrieves an office by id.
func (r *Repository) GetOfficeByID(ctx context.Context, id uuid.UUID) (*Office, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM offices
		WHERE id = $1`

	var o Office
	err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(officeNotFoundMessage)
		}
		return nil, fmt.Errorf("get office by id: %w", err)
	}
	return &o, nil
}

// ListOffices lists all offices ordered by name.
func (r *Repository) ListOffices(ctx context.Context) ([]Office, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM offices
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	defer rows.Close()

	var out []Office
	for rows.Next() {
		var o Office
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan office: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// AddMember enrolls a staff user in an office. Adding an existing member is a
// no-op.
func (r *Repository) AddMember(ctx context.Context, officeID, userID uuid.UUID) error {
	query := `
		INSERT INTO office_members (office_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (office_id, user_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, officeID, userID); err != nil {
		return fmt.Errorf("add office member: %w", err)
	}
	return nil
}

// RemoveMember removes a staff user from an office.
func (r *Repository) RemoveMember(ctx context.Context, officeID, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM office_members WHERE office_id = $1 AND user_id = $2`,
		officeID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove office member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("office membership not found")
	}
	return nil
}

// ListMembers lists the user ids enrolled in an office.
func (r *Repository) ListMembers(ctx context.Context, officeID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM office_members WHERE office_id = $1 ORDER BY user_id`,
		officeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list office members: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan office member: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
