package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/repository"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	ListAll(ctx context.Context) ([]*entities.Category, error)
	GetByID(ctx context.Context, id string) (*entities.Category, error)
	FindByName(ctx context.Context, name string) (*entities.Category, error)
	ListPredefined(ctx context.Context) ([]*entities.Category, error)
	ListCustom(ctx context.Context) ([]*entities.Category, error)
	Create(ctx context.Context, ownerID, name, description string, kind *entities.CategoryKind) (*entities.Category, error)
	Update(ctx context.Context, id, ownerID string, name, description *string) (*entities.Category, error)
	Delete(ctx context.Context, id, ownerID string) error
	Search(ctx context.Context, text string) ([]*entities.Category, error)
	ListEmpty(ctx context.Context) ([]*entities.Category, error)
	ListWithMovements(ctx context.Context) ([]*entities.Category, error)
	ListForExpenses(ctx context.Context) ([]*entities.Category, error)
	ListForIncome(ctx context.Context) ([]*entities.Category, error)
	EnsureSeeded(ctx context.Context) (int, error)
}

const (
	minCategoryNameLength = 2
	maxCategoryNameLength = 50
	maxDescriptionLength  = 200
)

type categoryService struct {
	categories repository.CategoryRepository
	tx         repository.TxRunner
	logger     *logging.Logger
}

// NewCategoryService creates a new category service. tx is used for seeding.
func NewCategoryService(categories repository.CategoryRepository, tx repository.TxRunner, logger *logging.Logger) CategoryService {
	return &categoryService{
		categories: categories,
		tx:         tx,
		logger:     logger.WithComponent(logging.ComponentCategory),
	}
}

func boolPtr(b bool) *bool { return &b }

func validateCategoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return apperrors.Validation("category name is required")
	}
	if n < minCategoryNameLength || n > maxCategoryNameLength {
		return apperrors.Validation("category name must be between %d and %d characters", minCategoryNameLength, maxCategoryNameLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return apperrors.Validation("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

// ensureOwned rejects writes to predefined categories and to custom ones
// created by somebody else.
func ensureOwned(c *entities.Category, ownerID string) error {
	if c.IsPredefined {
		return apperrors.Validation("predefined category %q cannot be modified", c.Name)
	}
	if c.CreatedBy == nil || *c.CreatedBy != ownerID {
		return apperrors.NotFound("category not found")
	}
	return nil
}

func (s *categoryService) ListAll(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{})
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*entities.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *categoryService) FindByName(ctx context.Context, name string) (*entities.Category, error) {
	return s.categories.FindByName(ctx, strings.TrimSpace(name))
}

func (s *categoryService) ListPredefined(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{Predefined: boolPtr(true)})
}

func (s *categoryService) ListCustom(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{Predefined: boolPtr(false)})
}

// Create adds a custom category. Without an explicit kind, names on the
// income allowlist become income categories and everything else "either".
func (s *categoryService) Create(ctx context.Context, ownerID, name, description string, kind *entities.CategoryKind) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	k := entities.KindEither
	if entities.IsIncomeCategoryName(name) {
		k = entities.KindIncome
	}
	if kind != nil {
		if !kind.Valid() {
			return nil, apperrors.Validation("unknown category kind %q", *kind)
		}
		k = *kind
	}

	_, err := s.categories.FindByName(ctx, name)
	if err == nil {
		return nil, apperrors.Validation("category %q already exists", name)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	created, err := s.categories.Create(ctx, &entities.Category{
		Name:        name,
		Description: description,
		Kind:        k,
		CreatedBy:   &ownerID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created",
		logging.FieldCategoryID, created.ID,
		logging.FieldUserID, ownerID,
		logging.FieldOperation, logging.OpCreate)
	return created, nil
}

// Update renames a category and/or replaces its description
func (s *categoryService) Update(ctx context.Context, id, ownerID string, name, description *string) (*entities.Category, error) {
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwned(current, ownerID); err != nil {
		return nil, err
	}

	newName := current.Name
	if name != nil {
		newName = strings.TrimSpace(*name)
		if err := validateCategoryName(newName); err != nil {
			return nil, err
		}
		if !strings.EqualFold(newName, current.Name) {
			_, err := s.categories.FindByName(ctx, newName)
			if err == nil {
				return nil, apperrors.Validation("category %q already exists", newName)
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
		}
	}

	newDescription := current.Description
	if description != nil {
		newDescription = strings.TrimSpace(*description)
		if err := validateDescription(newDescription); err != nil {
			return nil, err
		}
	}

	return s.categories.Update(ctx, id, newName, newDescription)
}

// Delete removes a custom category nobody has used yet
func (s *categoryService) Delete(ctx context.Context, id, ownerID string) error {
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.MovementCount > 0 {
		return apperrors.Validation("cannot delete category %q: it has %d referencing movements", current.Name, current.MovementCount)
	}
	if err := ensureOwned(current, ownerID); err != nil {
		return err
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "category deleted",
		logging.FieldCategoryID, id,
		logging.FieldUserID, ownerID,
		logging.FieldOperation, logging.OpDelete)
	return nil
}

// Search matches a substring of the name, ignoring case. Blank text lists
// everything.
func (s *categoryService) Search(ctx context.Context, text string) ([]*entities.Category, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.ListAll(ctx)
	}
	return s.categories.List(ctx, repository.CategoryFilter{NameContains: text})
}

func (s *categoryService) ListEmpty(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{HasMovements: boolPtr(false)})
}

func (s *categoryService) ListWithMovements(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{HasMovements: boolPtr(true)})
}

func (s *categoryService) ListForExpenses(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{
		Kinds: []entities.CategoryKind{entities.KindExpense, entities.KindEither},
	})
}

func (s *categoryService) ListForIncome(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{
		Kinds: []entities.CategoryKind{entities.KindIncome},
	})
}

// EnsureSeeded inserts the predefined categories that are missing, matching
// names without regard to case. It returns how many were inserted and is
// safe to run on every startup.
func (s *categoryService) EnsureSeeded(ctx context.Context) (int, error) {
	inserted := 0
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		inserted = 0
		for _, p := range predefinedCategories {
			_, err := repos.Categories.FindByName(ctx, p.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}

			_, err = repos.Categories.Create(ctx, &entities.Category{
				Name:         p.Name,
				Description:  p.Description,
				Kind:         seedKind(p.Name),
				IsPredefined: true,
			})
			if err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "predefined categories checked",
		logging.FieldOperation, logging.OpSeed,
		logging.FieldCount, inserted)
	return inserted, nil
}
