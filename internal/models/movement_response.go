package models

import (
	"time"

	"finanzas-be/internal/entities"
	"finanzas-be/internal/money"
)

// MovementResponse is a movement with its amount rendered to two decimals
type MovementResponse struct {
	ID           string                `json:"id"`
	Description  string                `json:"description"`
	Amount       string                `json:"amount"`
	Type         entities.MovementType `json:"type"`
	CategoryID   string                `json:"category_id"`
	CategoryName string                `json:"category_name"`
	OccurredAt   time.Time             `json:"occurred_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func NewMovementResponse(m *entities.Movement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		Description:  m.Description,
		Amount:       money.Format(m.Amount),
		Type:         m.Type,
		CategoryID:   m.CategoryID,
		CategoryName: m.CategoryName,
		OccurredAt:   m.OccurredAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func NewMovementResponses(ms []*entities.Movement) []MovementResponse {
	out := make([]MovementResponse, len(ms))
	for i, m := range ms {
		out[i] = NewMovementResponse(m)
	}
	return out
}

// TotalsResponse is income, expense and balance as fixed-point strings
type TotalsResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

func NewTotalsResponse(t entities.Totals) TotalsResponse {
	return TotalsResponse{
		Income:  money.Format(t.Income),
		Expense: money.Format(t.Expense),
		Balance: money.Format(t.Balance),
	}
}

// TypeStatsResponse aggregates one movement type
type TypeStatsResponse struct {
	Total   string `json:"total"`
	Average string `json:"average"`
	Max     string `json:"max"`
	Count   int    `json:"count"`
}

// StatisticsResponse represents GET /movements/statistics
type StatisticsResponse struct {
	Total   TotalsResponse    `json:"total"`
	Month   TotalsResponse    `json:"month"`
	Income  TypeStatsResponse `json:"income"`
	Expense TypeStatsResponse `json:"expense"`
}

func newTypeStatsResponse(s entities.TypeStats) TypeStatsResponse {
	return TypeStatsResponse{
		Total:   money.Format(s.Total),
		Average: money.Format(s.Average),
		Max:     money.Format(s.Max),
		Count:   s.Count,
	}
}

func NewStatisticsResponse(s *entities.Statistics) StatisticsResponse {
	return StatisticsResponse{
		Total:   NewTotalsResponse(s.Total),
		Month:   NewTotalsResponse(s.Month),
		Income:  newTypeStatsResponse(s.Income),
		Expense: newTypeStatsResponse(s.Expense),
	}
}

// CategoryAmountResponse is one row of a per-category sum
type CategoryAmountResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Amount       string `json:"amount"`
}

func NewCategoryAmountResponses(rows []entities.CategoryAmount) []CategoryAmountResponse {
	out := make([]CategoryAmountResponse, len(rows))
	for i, r := range rows {
		out[i] = CategoryAmountResponse{
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			Amount:       money.Format(r.Amount),
		}
	}
	return out
}
