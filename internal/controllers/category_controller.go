package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/entities"
	"finanzas-be/internal/models"
	"finanzas-be/internal/service"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type categoryLister func(ctx context.Context) ([]*entities.Category, error)

// list adapts a lister into a handler
func (cc *CategoryController) list(fn categoryLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		categories, err := fn(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.NewCategoryResponses(categories, userID))
	}
}

// List handles GET /api/v1/categories
func (cc *CategoryController) List(c *gin.Context) { cc.list(cc.categoryService.ListAll)(c) }

// ListPredefined handles GET /api/v1/categories/predefined
func (cc *CategoryController) ListPredefined(c *gin.Context) {
	cc.list(cc.categoryService.ListPredefined)(c)
}

// ListCustom handles GET /api/v1/categories/custom
func (cc *CategoryController) ListCustom(c *gin.Context) { cc.list(cc.categoryService.ListCustom)(c) }

// ListForExpenses handles GET /api/v1/categories/expenses
func (cc *CategoryController) ListForExpenses(c *gin.Context) {
	cc.list(cc.categoryService.ListForExpenses)(c)
}

// ListForIncome handles GET /api/v1/categories/incomes
func (cc *CategoryController) ListForIncome(c *gin.Context) {
	cc.list(cc.categoryService.ListForIncome)(c)
}

// ListEmpty handles GET /api/v1/categories/empty
func (cc *CategoryController) ListEmpty(c *gin.Context) { cc.list(cc.categoryService.ListEmpty)(c) }

// ListWithMovements handles GET /api/v1/categories/with-movements
func (cc *CategoryController) ListWithMovements(c *gin.Context) {
	cc.list(cc.categoryService.ListWithMovements)(c)
}

// Search handles GET /api/v1/categories/search?q=
func (cc *CategoryController) Search(c *gin.Context) {
	q := c.Query("q")
	cc.list(func(ctx context.Context) ([]*entities.Category, error) {
		return cc.categoryService.Search(ctx, q)
	})(c)
}

// Get handles GET /api/v1/categories/:id
func (cc *CategoryController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	category, err := cc.categoryService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewCategoryResponse(category, userID))
}

// Create handles POST /api/v1/categories
func (cc *CategoryController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var kind *entities.CategoryKind
	if req.Kind != nil {
		k := entities.CategoryKind(*req.Kind)
		kind = &k
	}

	category, err := cc.categoryService.Create(c.Request.Context(), userID, req.Name, req.Description, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewCategoryResponse(category, userID))
}

// Update handles PUT /api/v1/categories/:id
func (cc *CategoryController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := cc.categoryService.Update(c.Request.Context(), c.Param("id"), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewCategoryResponse(category, userID))
}

// Delete handles DELETE /api/v1/categories/:id
func (cc *CategoryController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := cc.categoryService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
