package entities

import (
	"strings"
	"time"
)

// CategoryKind says which movements a category is meant for.
type CategoryKind string

const (
	KindIncome  CategoryKind = "income"
	KindExpense CategoryKind = "expense"
	KindEither  CategoryKind = "either"
)

// Valid reports whether k is one of the known kinds.
func (k CategoryKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindEither:
		return true
	}
	return false
}

// IncomeCategoryNames is the name allowlist used to classify categories
// as income when no kind is given.
var IncomeCategoryNames = []string{"Salario", "Inversiones", "Negocios", "Otros Ingresos", "Regalos"}

// IsIncomeCategoryName reports whether name is in the income allowlist,
// ignoring case.
func IsIncomeCategoryName(name string) bool {
	name = strings.TrimSpace(name)
	for _, n := range IncomeCategoryNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Category labels movements. Names are unique regardless of case.
type Category struct {
	ID            string       `json:"id"` // UUID
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Kind          CategoryKind `json:"kind"`
	IsPredefined  bool         `json:"is_predefined"`
	CreatedBy     *string      `json:"created_by,omitempty"` // nil for predefined categories
	MovementCount int          `json:"movement_count"`       // derived, not stored
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// ForIncome reports whether the category is offered for income movements.
func (c *Category) ForIncome() bool {
	return c.Kind == KindIncome
}
