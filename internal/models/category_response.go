package models

import (
	"time"

	"finanzas-be/internal/entities"
)

// CategoryResponse is a category as returned by the API
type CategoryResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Kind          entities.CategoryKind `json:"kind"`
	IsPredefined  bool                  `json:"is_predefined"`
	ForIncome     bool                  `json:"for_income"` // offered when recording income
	Owned         bool                  `json:"owned"`      // created by the caller
	MovementCount int                   `json:"movement_count"`
	CreatedAt     time.Time             `json:"created_at"`
}

// NewCategoryResponses maps categories for callerID
func NewCategoryResponses(cs []*entities.Category, callerID string) []CategoryResponse {
	out := make([]CategoryResponse, len(cs))
	for i, c := range cs {
		out[i] = NewCategoryResponse(c, callerID)
	}
	return out
}

func NewCategoryResponse(c *entities.Category, callerID string) CategoryResponse {
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Kind:          c.Kind,
		IsPredefined:  c.IsPredefined,
		ForIncome:     c.ForIncome(),
		Owned:         c.CreatedBy != nil && *c.CreatedBy == callerID,
		MovementCount: c.MovementCount,
		CreatedAt:     c.CreatedAt,
	}
}
