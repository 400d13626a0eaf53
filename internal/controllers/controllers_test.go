package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/middleware"
	"finanzas-be/internal/service"
	"finanzas-be/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextPrincipal, &service.Principal{
			UserID:  userID,
			Session: &session.Session{ID: "sess-" + userID, UserID: userID},
		})
		c.Next()
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apperrors.Validation("amount must be greater than zero"), http.StatusBadRequest, "amount must be greater than zero"},
		{apperrors.NotFound("movement not found"), http.StatusNotFound, "movement not found"},
		{apperrors.Authentication("incorrect credentials"), http.StatusUnauthorized, "incorrect credentials"},
		{apperrors.Conflict("email already exists"), http.StatusConflict, "email already exists"},
		{fmt.Errorf("update movement m1: %w", apperrors.NotFound("movement m1 not found")), http.StatusNotFound, "movement m1 not found"},
		{apperrors.ErrNotFound, http.StatusNotFound, "Not Found"},
		{fmt.Errorf("failed to query: %w", assert.AnError), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { respondError(c, tt.err) })

			w := do(r, http.MethodGet, "/", "")
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.body), w.Body.String())
		})
	}
}

func TestCurrentUserIDMissing(t *testing.T) {
	r := gin.New()
	mc := NewMovementController(&stubMovements{})
	r.GET("/movements", mc.List)

	w := do(r, http.MethodGet, "/movements", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseMonth(t *testing.T) {
	current := service.Month{Year: 2025, Month: time.March}

	tests := []struct {
		query   string
		want    service.Month
		wantErr bool
	}{
		{"", current, false},
		{"?year=2024&month=12", service.Month{Year: 2024, Month: time.December}, false},
		{"?month=1", service.Month{Year: 2025, Month: time.January}, false},
		{"?month=13", service.Month{}, true},
		{"?year=abc", service.Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

			got, err := parseMonth(c, current)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---- movements

type stubMovements struct {
	service.MovementService
	recorded []service.MovementInput
	updates  []service.MovementUpdate
}

func (s *stubMovements) RecordExpense(_ context.Context, ownerID string, in service.MovementInput) (*entities.Movement, error) {
	s.recorded = append(s.recorded, in)
	if !in.Amount.IsPositive() {
		return nil, apperrors.Validation("amount must be greater than zero")
	}
	return &entities.Movement{
		ID: "m1", Description: in.Description, Amount: in.Amount.Round(2), Type: entities.MovementExpense,
		CategoryID: in.CategoryID, CategoryName: "Alimentacion", UserID: ownerID,
	}, nil
}

func (s *stubMovements) ListByType(_ context.Context, ownerID string, t entities.MovementType) ([]*entities.Movement, error) {
	return []*entities.Movement{{ID: "m1", Type: t, UserID: ownerID, Amount: decimal.NewFromInt(3)}}, nil
}

func (s *stubMovements) Update(_ context.Context, id, ownerID string, upd service.MovementUpdate) (*entities.Movement, error) {
	s.updates = append(s.updates, upd)
	return &entities.Movement{ID: id, UserID: ownerID, Amount: decimal.NewFromInt(1), Type: entities.MovementIncome}, nil
}

func (s *stubMovements) GetByID(_ context.Context, id, ownerID string) (*entities.Movement, error) {
	return nil, apperrors.NotFound("movement not found")
}

func (s *stubMovements) Balance(context.Context, string) (entities.Totals, error) {
	return entities.NewTotals(decimal.RequireFromString("100.5"), decimal.RequireFromString("20.25")), nil
}

func newMovementRouter(s *stubMovements) *gin.Engine {
	mc := NewMovementController(s)
	r := gin.New()
	g := r.Group("/movements", asUser("u1"))
	g.POST("/expenses", mc.RecordExpense)
	g.GET("/type/:type", mc.ListByType)
	g.GET("/balance", mc.Balance)
	g.GET("/:id", mc.Get)
	g.PUT("/:id", mc.Update)
	return r
}

func TestMovementController_RecordExpense(t *testing.T) {
	stub := &stubMovements{}
	r := newMovementRouter(stub)

	w := do(r, http.MethodPost, "/movements/expenses", `{"description":"Mercado","amount":12.345,"category_id":"c1","date":"2025-03-10"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "12.35", body["amount"])
	assert.Equal(t, "EXPENSE", body["type"])

	require.Len(t, stub.recorded, 1)
	require.NotNil(t, stub.recorded[0].Date)
	assert.Equal(t, 10, stub.recorded[0].Date.Day())

	w = do(r, http.MethodPost, "/movements/expenses", `{"description":"Mercado","amount":"5","category_id":"c1","date":"10/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/movements/expenses", `{"description":"Mercado","category_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/movements/expenses", `{"description":"Mercado","amount":"0","category_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "greater than zero")
}

func TestMovementController_RecordExpenseAmountFormats(t *testing.T) {
	stub := &stubMovements{}
	r := newMovementRouter(stub)

	w := do(r, http.MethodPost, "/movements/expenses", `{"description":"Mercado","amount":"12,34","category_id":"c1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, stub.recorded, 1)
	assert.True(t, stub.recorded[0].Amount.Equal(decimal.RequireFromString("12.34")))

	for _, amount := range []string{`-5`, `"-5"`, `"1e3"`, `"doce"`, `true`} {
		w = do(r, http.MethodPost, "/movements/expenses", `{"description":"Mercado","amount":`+amount+`,"category_id":"c1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Contains(t, w.Body.String(), "amount must be a positive decimal number", amount)
	}
	assert.Len(t, stub.recorded, 1)
}

func TestMovementController_ListByType(t *testing.T) {
	r := newMovementRouter(&stubMovements{})

	w := do(r, http.MethodGet, "/movements/type/income", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"INCOME"`)

	w = do(r, http.MethodGet, "/movements/type/transfer", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMovementController_UpdateAndGet(t *testing.T) {
	stub := &stubMovements{}
	r := newMovementRouter(stub)

	w := do(r, http.MethodPut, "/movements/m9", `{"type":"income","amount":"7.5"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, stub.updates, 1)
	require.NotNil(t, stub.updates[0].Type)
	assert.Equal(t, entities.MovementIncome, *stub.updates[0].Type)
	assert.True(t, stub.updates[0].Amount.Equal(decimal.RequireFromString("7.5")))
	assert.Nil(t, stub.updates[0].Description)

	w = do(r, http.MethodPut, "/movements/m9", `{"type":"transfer"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/movements/m9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMovementController_Balance(t *testing.T) {
	r := newMovementRouter(&stubMovements{})

	w := do(r, http.MethodGet, "/movements/balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"income":"100.50","expense":"20.25","balance":"80.25"}`, w.Body.String())
}

// ---- categories

type stubCategories struct {
	service.CategoryService
	kinds []*entities.CategoryKind
}

func (s *stubCategories) Create(_ context.Context, ownerID, name, description string, kind *entities.CategoryKind) (*entities.Category, error) {
	s.kinds = append(s.kinds, kind)
	if strings.EqualFold(name, "salud") {
		return nil, apperrors.Validation("category %q already exists", name)
	}
	k := entities.KindEither
	if kind != nil {
		k = *kind
	}
	return &entities.Category{ID: "c9", Name: name, Description: description, Kind: k, CreatedBy: &ownerID}, nil
}

func (s *stubCategories) Delete(_ context.Context, id, ownerID string) error {
	return apperrors.Validation("cannot delete category %q: it has %d referencing movements", "Mascotas", 2)
}

func (s *stubCategories) ListPredefined(context.Context) ([]*entities.Category, error) {
	return []*entities.Category{{ID: "c1", Name: "Salud", Kind: entities.KindExpense, IsPredefined: true}}, nil
}

func TestCategoryController(t *testing.T) {
	stub := &stubCategories{}
	cc := NewCategoryController(stub)
	r := gin.New()
	g := r.Group("/categories", asUser("u1"))
	g.GET("/predefined", cc.ListPredefined)
	g.POST("", cc.Create)
	g.DELETE("/:id", cc.Delete)

	w := do(r, http.MethodPost, "/categories", `{"name":"Mascotas","kind":"expense"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"owned":true`)
	assert.Contains(t, w.Body.String(), `"kind":"expense"`)
	require.NotNil(t, stub.kinds[0])

	w = do(r, http.MethodPost, "/categories", `{"name":"Mascotas","kind":"savings"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/categories", `{"name":"Salud"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, stub.kinds[len(stub.kinds)-1])

	w = do(r, http.MethodDelete, "/categories/c9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "referencing movements")

	w = do(r, http.MethodGet, "/categories/predefined", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owned":false`)
	assert.Contains(t, w.Body.String(), `"for_income":false`)
}

// ---- reports

type stubReports struct {
	service.ReportService
	asked []service.Month
}

func (s *stubReports) CurrentMonth() service.Month {
	return service.Month{Year: 2025, Month: time.March}
}

func (s *stubReports) MonthlyReport(_ context.Context, _ string, m service.Month) (*service.MonthlyReport, error) {
	s.asked = append(s.asked, m)
	return &service.MonthlyReport{
		Month:   m,
		Summary: entities.NewTotals(decimal.NewFromInt(50), decimal.NewFromInt(20)),
		Breakdown: []service.BreakdownLine{
			{CategoryName: "Alimentacion", Amount: decimal.NewFromInt(20), Percentage: decimal.NewFromInt(100)},
		},
	}, nil
}

func (s *stubReports) RenderTextReport(ctx context.Context, ownerID string, m service.Month) (string, error) {
	report, err := s.MonthlyReport(ctx, ownerID, m)
	if err != nil {
		return "", err
	}
	return service.FormatTextReport(report), nil
}

func TestReportController(t *testing.T) {
	stub := &stubReports{}
	rc := NewReportController(stub)
	r := gin.New()
	g := r.Group("/reports", asUser("u1"))
	g.GET("/monthly", rc.Monthly)
	g.GET("/monthly/text", rc.MonthlyText)

	w := do(r, http.MethodGet, "/reports/monthly", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"month": "2025-03",
		"label": "March 2025",
		"summary": {"income": "50.00", "expense": "20.00", "balance": "30.00"},
		"breakdown": [{"category_name": "Alimentacion", "amount": "20.00", "percentage": "100.0"}]
	}`, w.Body.String())

	w = do(r, http.MethodGet, "/reports/monthly/text?year=2024&month=11", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "Monthly report: November 2024")
	assert.Equal(t, service.Month{Year: 2024, Month: time.November}, stub.asked[len(stub.asked)-1])

	w = do(r, http.MethodGet, "/reports/monthly?month=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- auth and users

type stubUsers struct {
	service.UserService
	deactivated []string
}

func (s *stubUsers) UsernameExists(_ context.Context, username string) (bool, error) {
	return username == "ana", nil
}

func (s *stubUsers) Deactivate(_ context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

type stubAuth struct {
	service.AuthService
	revoked []string
}

func (s *stubAuth) Logout(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}

func TestAuthController_CheckUsername(t *testing.T) {
	ac := NewAuthController(&stubAuth{}, &stubUsers{})
	r := gin.New()
	r.GET("/auth/check-username", ac.CheckUsername)

	w := do(r, http.MethodGet, "/auth/check-username?username=ana", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"value":"ana","available":false}`, w.Body.String())

	w = do(r, http.MethodGet, "/auth/check-username?username=luis", "")
	assert.JSONEq(t, `{"value":"luis","available":true}`, w.Body.String())

	w = do(r, http.MethodGet, "/auth/check-username", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_RegisterRejectsBadBody(t *testing.T) {
	ac := NewAuthController(&stubAuth{}, &stubUsers{})
	r := gin.New()
	r.POST("/auth/register", ac.Register)

	w := do(r, http.MethodPost, "/auth/register", `{"username":"ana","email":"nope","password":"secreto123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestUserController_DeactivateRevokesSession(t *testing.T) {
	users := &stubUsers{}
	auth := &stubAuth{}
	uc := NewUserController(users, auth)
	r := gin.New()
	r.POST("/users/me/deactivate", asUser("u1"), uc.Deactivate)

	w := do(r, http.MethodPost, "/users/me/deactivate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"u1"}, users.deactivated)
	assert.Equal(t, []string{"sess-u1"}, auth.revoked)
}
