package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finanzas-be/internal/entities"
)

func TestNewCategoryResponse(t *testing.T) {
	owner := "u1"
	cs := []*entities.Category{
		{ID: "c1", Name: "Salario", Kind: entities.KindIncome, IsPredefined: true},
		{ID: "c2", Name: "Mascotas", Kind: entities.KindEither, CreatedBy: &owner, MovementCount: 3},
	}

	got := NewCategoryResponses(cs, "u1")
	assert.True(t, got[0].ForIncome)
	assert.False(t, got[0].Owned)
	assert.False(t, got[1].ForIncome)
	assert.True(t, got[1].Owned)
	assert.Equal(t, 3, got[1].MovementCount)

	assert.False(t, NewCategoryResponse(cs[1], "u2").Owned)
}
