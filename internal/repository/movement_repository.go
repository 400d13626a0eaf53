package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/database"
	"finanzas-be/internal/entities"
)

// Period is a half-open time range [From, To). A zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

// MovementFilter narrows a movement listing. Zero values mean "any".
type MovementFilter struct {
	Type                *entities.MovementType
	CategoryID          string
	Period              Period
	DescriptionContains string
	Limit               int
}

// MovementRepository defines the interface for movement database operations.
// Every method is scoped to one owner.
type MovementRepository interface {
	Create(ctx context.Context, movement *entities.Movement) (*entities.Movement, error)
	FindByID(ctx context.Context, id, userID string) (*entities.Movement, error)
	List(ctx context.Context, userID string, filter MovementFilter) ([]*entities.Movement, error)
	Update(ctx context.Context, movement *entities.Movement) (*entities.Movement, error)
	Delete(ctx context.Context, id, userID string) error
	Totals(ctx context.Context, userID string, period Period) (entities.Totals, error)
	SumByCategory(ctx context.Context, userID string, movementType entities.MovementType, period Period) ([]entities.CategoryAmount, error)
	TypeStats(ctx context.Context, userID string) (income, expense entities.TypeStats, err error)
}

type movementRepository struct {
	db database.DBTX
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db database.DBTX) MovementRepository {
	return &movementRepository{db: db}
}

const movementColumns = `m.id, m.description, m.amount, m.type, m.category_id, c.name, m.user_id, m.occurred_at, m.created_at, m.updated_at`

func scanMovement(row rowScanner) (*entities.Movement, error) {
	var m entities.Movement
	err := row.Scan(
		&m.ID,
		&m.Description,
		&m.Amount,
		&m.Type,
		&m.CategoryID,
		&m.CategoryName,
		&m.UserID,
		&m.OccurredAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// periodClause appends occurred_at bounds to where/args.
func periodClause(p Period, where []string, args []any) ([]string, []any) {
	if !p.From.IsZero() {
		args = append(args, p.From.UTC())
		where = append(where, fmt.Sprintf("m.occurred_at >= $%d", len(args)))
	}
	if !p.To.IsZero() {
		args = append(args, p.To.UTC())
		where = append(where, fmt.Sprintf("m.occurred_at < $%d", len(args)))
	}
	return where, args
}

// Create inserts a movement and returns it with its category name
func (r *movementRepository) Create(ctx context.Context, movement *entities.Movement) (*entities.Movement, error) {
	query := `
		WITH m AS (
			INSERT INTO movements (description, amount, type, category_id, user_id, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT ` + movementColumns + `
		FROM m
		JOIN categories c ON c.id = m.category_id
	`

	m, err := scanMovement(r.db.QueryRowContext(ctx, query,
		movement.Description,
		movement.Amount,
		movement.Type,
		movement.CategoryID,
		movement.UserID,
		movement.OccurredAt.UTC(),
	))
	if isMalformedID(err) {
		return nil, apperrors.NotFound("category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}

	return m, nil
}

// FindByID finds a movement owned by userID
func (r *movementRepository) FindByID(ctx context.Context, id, userID string) (*entities.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements m
		JOIN categories c ON c.id = m.category_id
		WHERE m.id = $1 AND m.user_id = $2
	`

	m, err := scanMovement(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, apperrors.NotFound("movement not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movement: %w", err)
	}

	return m, nil
}

// List returns the owner's movements matching filter, newest first
func (r *movementRepository) List(ctx context.Context, userID string, filter MovementFilter) ([]*entities.Movement, error) {
	where := []string{"m.user_id = $1"}
	args := []any{userID}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		where = append(where, fmt.Sprintf("m.type = $%d", len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("m.category_id = $%d", len(args)))
	}
	if filter.DescriptionContains != "" {
		args = append(args, containsPattern(filter.DescriptionContains))
		where = append(where, fmt.Sprintf("m.description ILIKE $%d", len(args)))
	}
	where, args = periodClause(filter.Period, where, args)

	query := `
		SELECT ` + movementColumns + `
		FROM movements m
		JOIN categories c ON c.id = m.category_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY m.occurred_at DESC, m.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if isMalformedID(err) {
		return []*entities.Movement{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := []*entities.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movements: %w", err)
	}

	return movements, nil
}

// Update overwrites the mutable fields of a movement owned by movement.UserID
func (r *movementRepository) Update(ctx context.Context, movement *entities.Movement) (*entities.Movement, error) {
	query := `
		WITH m AS (
			UPDATE movements
			SET description = $3, amount = $4, type = $5, category_id = $6, occurred_at = $7, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING *
		)
		SELECT ` + movementColumns + `
		FROM m
		JOIN categories c ON c.id = m.category_id
	`

	m, err := scanMovement(r.db.QueryRowContext(ctx, query,
		movement.ID,
		movement.UserID,
		movement.Description,
		movement.Amount,
		movement.Type,
		movement.CategoryID,
		movement.OccurredAt.UTC(),
	))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, apperrors.NotFound("movement not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update movement: %w", err)
	}

	return m, nil
}

// Delete removes a movement (only if userID owns it)
func (r *movementRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = $1 AND user_id = $2`, id, userID)
	if isMalformedID(err) {
		return apperrors.NotFound("movement not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NotFound("movement not found")
	}

	return nil
}

// Totals sums income and expense for the owner within period
func (r *movementRepository) Totals(ctx context.Context, userID string, period Period) (entities.Totals, error) {
	where, args := periodClause(period, []string{"m.user_id = $1"}, []any{userID})
	query := `
		SELECT COALESCE(SUM(m.amount) FILTER (WHERE m.type = 'INCOME'), 0),
		       COALESCE(SUM(m.amount) FILTER (WHERE m.type = 'EXPENSE'), 0)
		FROM movements m
		WHERE ` + strings.Join(where, " AND ")

	var income, expense decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&income, &expense); err != nil {
		return entities.Totals{}, fmt.Errorf("failed to sum movements: %w", err)
	}

	return entities.NewTotals(income, expense), nil
}

// SumByCategory sums one movement type per category within period, largest
// first
func (r *movementRepository) SumByCategory(ctx context.Context, userID string, movementType entities.MovementType, period Period) ([]entities.CategoryAmount, error) {
	where, args := periodClause(period,
		[]string{"m.user_id = $1", "m.type = $2"},
		[]any{userID, string(movementType)})
	query := `
		SELECT c.id, c.name, SUM(m.amount) AS total
		FROM movements m
		JOIN categories c ON c.id = m.category_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements by category: %w", err)
	}
	defer rows.Close()

	sums := []entities.CategoryAmount{}
	for rows.Next() {
		var s entities.CategoryAmount
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan category sum: %w", err)
		}
		sums = append(sums, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category sums: %w", err)
	}

	return sums, nil
}

// TypeStats returns count, total, average and max per movement type. A type
// with no rows comes back as all zeroes.
func (r *movementRepository) TypeStats(ctx context.Context, userID string) (income, expense entities.TypeStats, err error) {
	query := `
		SELECT m.type, COUNT(*), COALESCE(SUM(m.amount), 0), COALESCE(AVG(m.amount), 0), COALESCE(MAX(m.amount), 0)
		FROM movements m
		WHERE m.user_id = $1
		GROUP BY m.type
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return income, expense, fmt.Errorf("failed to compute statistics: %w", err)
	}
	defer rows.Close()

	income = zeroStats()
	expense = zeroStats()
	for rows.Next() {
		var (
			movementType entities.MovementType
			s            entities.TypeStats
		)
		if err := rows.Scan(&movementType, &s.Count, &s.Total, &s.Average, &s.Max); err != nil {
			return income, expense, fmt.Errorf("failed to scan statistics: %w", err)
		}
		switch movementType {
		case entities.MovementIncome:
			income = s
		case entities.MovementExpense:
			expense = s
		}
	}

	if err = rows.Err(); err != nil {
		return income, expense, fmt.Errorf("error iterating statistics: %w", err)
	}

	return income, expense, nil
}

func zeroStats() entities.TypeStats {
	return entities.TypeStats{Total: decimal.Zero, Average: decimal.Zero, Max: decimal.Zero}
}
