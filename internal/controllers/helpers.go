package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/middleware"
	"finanzas-be/internal/models"
	"finanzas-be/internal/money"
	"finanzas-be/internal/service"
)

// respondError maps a service error onto an HTTP status. Unknown errors are
// attached to the context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": apperrors.Message(err, http.StatusText(status))})
}

func badRequest(c *gin.Context, err error) {
	if errors.Is(err, money.ErrInvalidAmount) {
		respondError(c, apperrors.Validation("amount must be a positive decimal number"))
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// currentUserID returns the caller set by the auth middleware
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		c.Abort()
		return "", false
	}
	return userID, true
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseMonth reads ?year=&month=, each defaulting to the current month
func parseMonth(c *gin.Context, current service.Month) (service.Month, error) {
	m := current
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return m, apperrors.Validation("invalid year %q", y)
		}
		m.Year = year
	}
	if mo := c.Query("month"); mo != "" {
		month, err := strconv.Atoi(mo)
		if err != nil {
			return m, apperrors.Validation("invalid month %q", mo)
		}
		m.Month = time.Month(month)
	}
	if !m.Valid() {
		return m, apperrors.Validation("invalid month %d-%02d", m.Year, int(m.Month))
	}
	return m, nil
}
