package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/middleware"
	"finanzas-be/internal/models"
	"finanzas-be/internal/service"
)

type UserController struct {
	userService service.UserService
	authService service.AuthService
}

func NewUserController(userService service.UserService, authService service.AuthService) *UserController {
	return &UserController{
		userService: userService,
		authService: authService,
	}
}

// Me handles GET /api/v1/users/me
func (uc *UserController) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

// UpdateProfile handles PUT /api/v1/users/me
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := uc.userService.UpdateProfile(c.Request.Context(), userID, req.Email, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

// ChangePassword handles PUT /api/v1/users/me/password
func (uc *UserController) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := uc.userService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Deactivate handles POST /api/v1/users/me/deactivate. The current session
// is revoked as well.
func (uc *UserController) Deactivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := uc.userService.Deactivate(ctx, userID); err != nil {
		respondError(c, err)
		return
	}
	if principal, ok := middleware.PrincipalFrom(c); ok {
		if err := uc.authService.Logout(ctx, principal.Session.ID); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}
