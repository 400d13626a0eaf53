package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/database"
	"finanzas-be/internal/entities"
)

// CategoryFilter narrows a category listing. Zero values mean "any".
type CategoryFilter struct {
	Predefined   *bool
	Kinds        []entities.CategoryKind
	NameContains string
	HasMovements *bool
}

// CategoryRepository defines the interface for category database operations
type CategoryRepository interface {
	List(ctx context.Context, filter CategoryFilter) ([]*entities.Category, error)
	FindByID(ctx context.Context, id string) (*entities.Category, error)
	FindByName(ctx context.Context, name string) (*entities.Category, error)
	Create(ctx context.Context, category *entities.Category) (*entities.Category, error)
	Update(ctx context.Context, id, name, description string) (*entities.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db database.DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

// categorySelect joins the movement count onto every row.
const categorySelect = `
	SELECT c.id, c.name, c.description, c.kind, c.is_predefined, c.created_by,
	       COUNT(m.id) AS movement_count, c.created_at, c.updated_at
	FROM categories c
	LEFT JOIN movements m ON m.category_id = c.id`

func scanCategory(row rowScanner) (*entities.Category, error) {
	var c entities.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Kind,
		&c.IsPredefined,
		&c.CreatedBy,
		&c.MovementCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories matching filter, ordered by name
func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]*entities.Category, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Predefined != nil {
		where = append(where, "c.is_predefined = "+arg(*filter.Predefined))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		where = append(where, "c.kind = ANY("+arg(pq.Array(kinds))+")")
	}
	if filter.NameContains != "" {
		where = append(where, "c.name ILIKE "+arg(containsPattern(filter.NameContains)))
	}

	query := categorySelect
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tGROUP BY c.id"
	if filter.HasMovements != nil {
		if *filter.HasMovements {
			query += "\n\tHAVING COUNT(m.id) > 0"
		} else {
			query += "\n\tHAVING COUNT(m.id) = 0"
		}
	}
	query += "\n\tORDER BY LOWER(c.name)"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*entities.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) findOne(ctx context.Context, where string, arg any) (*entities.Category, error) {
	query := categorySelect + "\n\tWHERE " + where + "\n\tGROUP BY c.id"

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, apperrors.NotFound("category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return c, nil
}

// FindByID finds a category by ID (UUID)
func (r *categoryRepository) FindByID(ctx context.Context, id string) (*entities.Category, error) {
	return r.findOne(ctx, "c.id = $1", id)
}

// FindByName finds a category by name, ignoring case
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entities.Category, error) {
	return r.findOne(ctx, "LOWER(c.name) = LOWER($1)", name)
}

// Create inserts a new category
func (r *categoryRepository) Create(ctx context.Context, category *entities.Category) (*entities.Category, error) {
	query := `
		INSERT INTO categories (name, description, kind, is_predefined, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, kind, is_predefined, created_by, 0, created_at, updated_at
	`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query,
		category.Name,
		category.Description,
		category.Kind,
		category.IsPredefined,
		category.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("category %q already exists", category.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return c, nil
}

// Update renames a category and overwrites its description
func (r *categoryRepository) Update(ctx context.Context, id, name, description string) (*entities.Category, error) {
	query := `
		WITH updated AS (
			UPDATE categories
			SET name = $2, description = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING id, name, description, kind, is_predefined, created_by, created_at, updated_at
		)
		SELECT u.id, u.name, u.description, u.kind, u.is_predefined, u.created_by,
		       (SELECT COUNT(*) FROM movements m WHERE m.category_id = u.id), u.created_at, u.updated_at
		FROM updated u
	`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id, name, description))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, apperrors.NotFound("category not found")
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("category %q already exists", name)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return c, nil
}

// Delete removes a category that no movement references. The check and the
// delete happen in one statement.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM categories
		WHERE id = $1
		AND NOT EXISTS (SELECT 1 FROM movements WHERE category_id = $1)
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if isMalformedID(err) {
		return apperrors.NotFound("category not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.Validation("category not found or still referenced by movements")
	}

	return nil
}
