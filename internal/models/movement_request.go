package models

import "finanzas-be/internal/money"

// DateLayout is the accepted format for movement dates
const DateLayout = "2006-01-02"

// CreateMovementRequest represents the request body for recording an income
// or an expense. The type comes from the route.
type CreateMovementRequest struct {
	Description string        `json:"description" binding:"required"`
	Amount      *money.Amount `json:"amount" binding:"required"`
	CategoryID  string        `json:"category_id" binding:"required"`
	Date        *string       `json:"date"` // YYYY-MM-DD, defaults to now
}

// UpdateMovementRequest carries the fields to overwrite; nil means keep
type UpdateMovementRequest struct {
	Description *string       `json:"description"`
	Amount      *money.Amount `json:"amount"`
	CategoryID  *string       `json:"category_id"`
	Date        *string       `json:"date"`
	Type        *string       `json:"type" binding:"omitempty,oneof=INCOME EXPENSE income expense"`
}
