package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/models"
	"finanzas-be/internal/service"
)

type MovementController struct {
	movementService service.MovementService
}

func NewMovementController(movementService service.MovementService) *MovementController {
	return &MovementController{
		movementService: movementService,
	}
}

func (mc *MovementController) record(c *gin.Context, movementType entities.MovementType) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	in := service.MovementInput{
		Description: req.Description,
		Amount:      req.Amount.Decimal,
		CategoryID:  req.CategoryID,
		Date:        date,
	}

	var m *entities.Movement
	if movementType == entities.MovementIncome {
		m, err = mc.movementService.RecordIncome(c.Request.Context(), userID, in)
	} else {
		m, err = mc.movementService.RecordExpense(c.Request.Context(), userID, in)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewMovementResponse(m))
}

// RecordExpense handles POST /api/v1/movements/expenses
func (mc *MovementController) RecordExpense(c *gin.Context) {
	mc.record(c, entities.MovementExpense)
}

// RecordIncome handles POST /api/v1/movements/incomes
func (mc *MovementController) RecordIncome(c *gin.Context) {
	mc.record(c, entities.MovementIncome)
}

func (mc *MovementController) respondList(c *gin.Context, ms []*entities.Movement, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewMovementResponses(ms))
}

// List handles GET /api/v1/movements
func (mc *MovementController) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ms, err := mc.movementService.ListAll(c.Request.Context(), userID)
	mc.respondList(c, ms, err)
}

// ListRecent handles GET /api/v1/movements/recent?limit=
func (mc *MovementController) ListRecent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respondError(c, apperrors.Validation("invalid limit %q", s))
			return
		}
		limit = n
	}

	ms, err := mc.movementService.ListRecent(c.Request.Context(), userID, limit)
	mc.respondList(c, ms, err)
}

// ListByType handles GET /api/v1/movements/type/:type
func (mc *MovementController) ListByType(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	movementType, valid := entities.ParseMovementType(c.Param("type"))
	if !valid {
		respondError(c, apperrors.Validation("type must be INCOME or EXPENSE"))
		return
	}

	ms, err := mc.movementService.ListByType(c.Request.Context(), userID, movementType)
	mc.respondList(c, ms, err)
}

// ListByCategory handles GET /api/v1/movements/category/:categoryId
func (mc *MovementController) ListByCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ms, err := mc.movementService.ListByCategory(c.Request.Context(), userID, c.Param("categoryId"))
	mc.respondList(c, ms, err)
}

// ListByPeriod handles GET /api/v1/movements/period?start=&end=
func (mc *MovementController) ListByPeriod(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	start, err := parseDate(c.Query("start"))
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}

	ms, err := mc.movementService.ListByPeriod(c.Request.Context(), userID, start, end)
	mc.respondList(c, ms, err)
}

// Search handles GET /api/v1/movements/search?q=
func (mc *MovementController) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ms, err := mc.movementService.Search(c.Request.Context(), userID, c.Query("q"))
	mc.respondList(c, ms, err)
}

// Get handles GET /api/v1/movements/:id
func (mc *MovementController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	m, err := mc.movementService.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewMovementResponse(m))
}

// Update handles PUT /api/v1/movements/:id
func (mc *MovementController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	upd := service.MovementUpdate{
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        date,
	}
	if req.Amount != nil {
		upd.Amount = &req.Amount.Decimal
	}
	if req.Type != nil {
		t, valid := entities.ParseMovementType(*req.Type)
		if !valid {
			respondError(c, apperrors.Validation("type must be INCOME or EXPENSE"))
			return
		}
		upd.Type = &t
	}

	m, err := mc.movementService.Update(c.Request.Context(), c.Param("id"), userID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewMovementResponse(m))
}

// Delete handles DELETE /api/v1/movements/:id
func (mc *MovementController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := mc.movementService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movement deleted successfully",
	})
}

// Balance handles GET /api/v1/movements/balance
func (mc *MovementController) Balance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	totals, err := mc.movementService.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTotalsResponse(totals))
}

// Statistics handles GET /api/v1/movements/statistics
func (mc *MovementController) Statistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := mc.movementService.Statistics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewStatisticsResponse(stats))
}

// ExpensesByCategory handles GET /api/v1/movements/expenses-by-category?year=&month=
func (mc *MovementController) ExpensesByCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	month, err := parseMonth(c, mc.movementService.CurrentMonth())
	if err != nil {
		respondError(c, err)
		return
	}

	rows, err := mc.movementService.ExpensesByCategory(c.Request.Context(), userID, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewCategoryAmountResponses(rows))
}
