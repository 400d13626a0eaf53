package models

// CreateCategoryRequest represents the request body for a custom category
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"max=200"`
	Kind        *string `json:"kind" binding:"omitempty,oneof=income expense either"` // derived from the name when omitted
}

// UpdateCategoryRequest carries the fields to overwrite; nil means keep.
// An empty description clears it.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description" binding:"omitempty,max=200"`
}
