package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a movement.
type MovementType string

const (
	MovementIncome  MovementType = "INCOME"
	MovementExpense MovementType = "EXPENSE"
)

// ParseMovementType accepts the type in any case.
func ParseMovementType(s string) (MovementType, bool) {
	switch MovementType(strings.ToUpper(strings.TrimSpace(s))) {
	case MovementIncome:
		return MovementIncome, true
	case MovementExpense:
		return MovementExpense, true
	}
	return "", false
}

// Movement is a single dated income or expense entry owned by one user
type Movement struct {
	ID           string          `json:"id"` // UUID
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"` // always > 0, two fraction digits
	Type         MovementType    `json:"type"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"` // joined on read
	UserID       string          `json:"user_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Totals is income, expense and balance over some scope.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// NewTotals derives the balance from income and expense.
func NewTotals(income, expense decimal.Decimal) Totals {
	return Totals{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// CategoryAmount is one row of a per-category sum.
type CategoryAmount struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
}

// TypeStats aggregates the movements of a single type.
type TypeStats struct {
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
	Max     decimal.Decimal `json:"max"`
	Count   int             `json:"count"`
}

// Statistics is the ledger-wide summary for one owner. Missing values are
// zero, never null.
type Statistics struct {
	Total   Totals    `json:"total"`
	Month   Totals    `json:"month"`
	Income  TypeStats `json:"income"`
	Expense TypeStats `json:"expense"`
}
