package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/cache"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/money"
	"finanzas-be/internal/repository"
)

// MovementInput is what a caller supplies to record a movement
type MovementInput struct {
	Description string
	Amount      decimal.Decimal
	CategoryID  string
	Date        *time.Time // stored at start of day; nil means now
}

// MovementUpdate carries the fields to overwrite; nil means keep
type MovementUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	CategoryID  *string
	Date        *time.Time
	Type        *entities.MovementType
}

// MovementService defines the ledger. Every operation is scoped to the
// owner passed in; there is no unscoped path.
type MovementService interface {
	RecordExpense(ctx context.Context, ownerID string, in MovementInput) (*entities.Movement, error)
	RecordIncome(ctx context.Context, ownerID string, in MovementInput) (*entities.Movement, error)
	GetByID(ctx context.Context, id, ownerID string) (*entities.Movement, error)
	ListAll(ctx context.Context, ownerID string) ([]*entities.Movement, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]*entities.Movement, error)
	ListByType(ctx context.Context, ownerID string, movementType entities.MovementType) ([]*entities.Movement, error)
	ListByCategory(ctx context.Context, ownerID, categoryID string) ([]*entities.Movement, error)
	ListByPeriod(ctx context.Context, ownerID string, start, end time.Time) ([]*entities.Movement, error)
	Search(ctx context.Context, ownerID, text string) ([]*entities.Movement, error)
	Update(ctx context.Context, id, ownerID string, upd MovementUpdate) (*entities.Movement, error)
	Delete(ctx context.Context, id, ownerID string) error

	TotalIncome(ctx context.Context, ownerID string) (decimal.Decimal, error)
	TotalExpense(ctx context.Context, ownerID string) (decimal.Decimal, error)
	Balance(ctx context.Context, ownerID string) (entities.Totals, error)
	MonthTotals(ctx context.Context, ownerID string, month Month) (entities.Totals, error)
	ExpensesByCategory(ctx context.Context, ownerID string, month Month) ([]entities.CategoryAmount, error)
	ExpensesByCategoryThisMonth(ctx context.Context, ownerID string) ([]entities.CategoryAmount, error)
	Statistics(ctx context.Context, ownerID string) (*entities.Statistics, error)
	CurrentMonth() Month
}

const (
	minMovementDescription = 3
	maxMovementDescription = 200
	defaultRecentLimit     = 10
	maxRecentLimit         = 100
)

type movementService struct {
	movements  repository.MovementRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	cache      cache.Cache // optional
	statsTTL   time.Duration
	loc        *time.Location
	now        func() time.Time
	logger     *logging.Logger
}

// NewMovementService creates a new movement service. cacheClient may be
// nil, in which case statistics are always computed.
func NewMovementService(
	movements repository.MovementRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	cacheClient cache.Cache,
	statsTTL time.Duration,
	logger *logging.Logger,
) MovementService {
	return &movementService{
		movements:  movements,
		categories: categories,
		users:      users,
		cache:      cacheClient,
		statsTTL:   statsTTL,
		loc:        time.Local,
		now:        time.Now,
		logger:     logger.WithComponent(logging.ComponentMovement),
	}
}

func statsKey(ownerID string) string {
	return "stats:" + ownerID
}

func validateMovementDescription(description string) error {
	n := utf8.RuneCountInString(description)
	if n < minMovementDescription {
		return apperrors.Validation("description must be at least %d characters", minMovementDescription)
	}
	if n > maxMovementDescription {
		return apperrors.Validation("description must be at most %d characters", maxMovementDescription)
	}
	return nil
}

func (s *movementService) RecordExpense(ctx context.Context, ownerID string, in MovementInput) (*entities.Movement, error) {
	return s.record(ctx, entities.MovementExpense, ownerID, in)
}

func (s *movementService) RecordIncome(ctx context.Context, ownerID string, in MovementInput) (*entities.Movement, error) {
	return s.record(ctx, entities.MovementIncome, ownerID, in)
}

func (s *movementService) record(ctx context.Context, movementType entities.MovementType, ownerID string, in MovementInput) (*entities.Movement, error) {
	description := strings.TrimSpace(in.Description)
	if err := validateMovementDescription(description); err != nil {
		return nil, err
	}
	if !money.IsPositive(in.Amount) {
		return nil, apperrors.Validation("amount must be greater than zero")
	}
	amount := money.Round(in.Amount)
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, apperrors.Validation("category is required")
	}

	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	occurredAt := s.now()
	if in.Date != nil {
		occurredAt = startOfDay(*in.Date, s.loc)
	}

	created, err := s.movements.Create(ctx, &entities.Movement{
		Description: description,
		Amount:      amount,
		Type:        movementType,
		CategoryID:  category.ID,
		UserID:      ownerID,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, ownerID)
	s.logger.InfoContext(ctx, "movement recorded",
		logging.FieldMovementID, created.ID,
		logging.FieldUserID, ownerID,
		logging.FieldType, string(movementType),
		logging.FieldAmount, money.Format(amount))
	return created, nil
}

func (s *movementService) GetByID(ctx context.Context, id, ownerID string) (*entities.Movement, error) {
	return s.movements.FindByID(ctx, id, ownerID)
}

func (s *movementService) ListAll(ctx context.Context, ownerID string) ([]*entities.Movement, error) {
	return s.movements.List(ctx, ownerID, repository.MovementFilter{})
}

// ListRecent returns the newest movements. limit <= 0 means the default of
// 10; anything above 100 is capped.
func (s *movementService) ListRecent(ctx context.Context, ownerID string, limit int) ([]*entities.Movement, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.movements.List(ctx, ownerID, repository.MovementFilter{Limit: limit})
}

func (s *movementService) ListByType(ctx context.Context, ownerID string, movementType entities.MovementType) ([]*entities.Movement, error) {
	return s.movements.List(ctx, ownerID, repository.MovementFilter{Type: &movementType})
}

func (s *movementService) ListByCategory(ctx context.Context, ownerID, categoryID string) ([]*entities.Movement, error) {
	return s.movements.List(ctx, ownerID, repository.MovementFilter{CategoryID: categoryID})
}

// ListByPeriod includes every movement from start 00:00 to the last instant
// of end.
func (s *movementService) ListByPeriod(ctx context.Context, ownerID string, start, end time.Time) ([]*entities.Movement, error) {
	from, to := dayRange(start, end, s.loc)
	if !to.After(from) {
		return nil, apperrors.Validation("period end must not be before its start")
	}
	return s.movements.List(ctx, ownerID, repository.MovementFilter{
		Period: repository.Period{From: from, To: to},
	})
}

// Search matches a substring of the description, ignoring case. Blank text
// lists everything.
func (s *movementService) Search(ctx context.Context, ownerID, text string) ([]*entities.Movement, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.ListAll(ctx, ownerID)
	}
	return s.movements.List(ctx, ownerID, repository.MovementFilter{DescriptionContains: text})
}

// Update applies a partial update. A blank description or a non-positive
// amount leaves the stored value untouched.
func (s *movementService) Update(ctx context.Context, id, ownerID string, upd MovementUpdate) (*entities.Movement, error) {
	m, err := s.movements.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if upd.Description != nil {
		if d := strings.TrimSpace(*upd.Description); d != "" {
			if err := validateMovementDescription(d); err != nil {
				return nil, err
			}
			m.Description = d
		}
	}
	if upd.Amount != nil {
		if money.IsPositive(*upd.Amount) {
			m.Amount = money.Round(*upd.Amount)
		}
	}
	if upd.CategoryID != nil && strings.TrimSpace(*upd.CategoryID) != "" {
		category, err := s.categories.FindByID(ctx, *upd.CategoryID)
		if err != nil {
			return nil, err
		}
		m.CategoryID = category.ID
	}
	if upd.Date != nil {
		m.OccurredAt = startOfDay(*upd.Date, s.loc)
	}
	if upd.Type != nil {
		m.Type = *upd.Type
	}

	updated, err := s.movements.Update(ctx, m)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, ownerID)
	s.logger.InfoContext(ctx, "movement updated",
		logging.FieldMovementID, id,
		logging.FieldUserID, ownerID,
		logging.FieldOperation, logging.OpUpdate)
	return updated, nil
}

func (s *movementService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.movements.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidateStats(ctx, ownerID)
	s.logger.InfoContext(ctx, "movement deleted",
		logging.FieldMovementID, id,
		logging.FieldUserID, ownerID,
		logging.FieldOperation, logging.OpDelete)
	return nil
}

func (s *movementService) Balance(ctx context.Context, ownerID string) (entities.Totals, error) {
	return s.movements.Totals(ctx, ownerID, repository.Period{})
}

func (s *movementService) TotalIncome(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	t, err := s.Balance(ctx, ownerID)
	return t.Income, err
}

func (s *movementService) TotalExpense(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	t, err := s.Balance(ctx, ownerID)
	return t.Expense, err
}

func (s *movementService) CurrentMonth() Month {
	return MonthOf(s.now().In(s.loc))
}

func (s *movementService) monthPeriod(month Month) (repository.Period, error) {
	if !month.Valid() {
		return repository.Period{}, apperrors.Validation("invalid month %d-%02d", month.Year, int(month.Month))
	}
	from, to := monthRange(month, s.loc)
	return repository.Period{From: from, To: to}, nil
}

func (s *movementService) MonthTotals(ctx context.Context, ownerID string, month Month) (entities.Totals, error) {
	period, err := s.monthPeriod(month)
	if err != nil {
		return entities.Totals{}, err
	}
	return s.movements.Totals(ctx, ownerID, period)
}

// ExpensesByCategory sums the month's expenses per category, largest first
func (s *movementService) ExpensesByCategory(ctx context.Context, ownerID string, month Month) ([]entities.CategoryAmount, error) {
	period, err := s.monthPeriod(month)
	if err != nil {
		return nil, err
	}
	return s.movements.SumByCategory(ctx, ownerID, entities.MovementExpense, period)
}

func (s *movementService) ExpensesByCategoryThisMonth(ctx context.Context, ownerID string) ([]entities.CategoryAmount, error) {
	return s.ExpensesByCategory(ctx, ownerID, s.CurrentMonth())
}

// Statistics bundles all-time and current-month aggregates. Results are
// cached per owner until the owner's next write or the TTL, whichever
// comes first.
func (s *movementService) Statistics(ctx context.Context, ownerID string) (*entities.Statistics, error) {
	if s.cache != nil && s.statsTTL > 0 {
		var cached entities.Statistics
		err := s.cache.GetJSON(ctx, statsKey(ownerID), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "statistics cache read failed", logging.FieldUserID, ownerID, logging.FieldError, err)
		}
	}

	stats, err := s.computeStatistics(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.statsTTL > 0 {
		if err := s.cache.SetJSON(ctx, statsKey(ownerID), stats, s.statsTTL); err != nil {
			s.logger.WarnContext(ctx, "statistics cache write failed", logging.FieldUserID, ownerID, logging.FieldError, err)
		}
	}
	return stats, nil
}

func (s *movementService) computeStatistics(ctx context.Context, ownerID string) (*entities.Statistics, error) {
	total, err := s.movements.Totals(ctx, ownerID, repository.Period{})
	if err != nil {
		return nil, err
	}
	month, err := s.MonthTotals(ctx, ownerID, s.CurrentMonth())
	if err != nil {
		return nil, err
	}
	income, expense, err := s.movements.TypeStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load statistics: %w", err)
	}
	income.Average = money.Round(income.Average)
	expense.Average = money.Round(expense.Average)

	return &entities.Statistics{
		Total:   total,
		Month:   month,
		Income:  income,
		Expense: expense,
	}, nil
}

func (s *movementService) invalidateStats(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsKey(ownerID)); err != nil {
		s.logger.WarnContext(ctx, "statistics cache invalidation failed", logging.FieldUserID, ownerID, logging.FieldError, err)
	}
}
