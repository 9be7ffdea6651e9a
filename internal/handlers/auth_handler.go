package handlers

import (
	"net/http"

	"sajilo_backend/internal/services"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	users := rg.Group("/users")
	{
		users.POST("/register", g.RateLimit, h.Register)
		users.POST("/login", g.RateLimit, h.Login)
		users.POST("/logout", g.RateLimit, h.Logout)
		users.PUT("/reset-password", g.RateLimit, h.ResetPassword)
		users.PUT("/update-profile/:id", g.RateLimit, g.User, g.Self, h.UpdateProfile)
		users.PUT("/cancel-subscription/:id", g.RateLimit, g.User, g.Self, h.CancelSubscription)
	}

	rg.POST("/auth/refresh-token", h.RefreshToken)
}

// Register godoc
// @Summary Register a free account
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Account details"
// @Success 201 {object} models.User
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 429 {object} apperrors.ErrorResponse "An account already exists for this device"
// @Router /api/v1/users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login godoc
// @Summary Log in and receive an access token
// @Description Sets the _rt refresh cookie and the _ka keep-alive cookie.
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse "Inactive account or new device"
// @Router /api/v1/users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userCookies.set(c, res.RefreshToken, res.RefreshTTL)
	c.JSON(http.StatusOK, dto.AccessTokenResponse{
		AccessToken: res.AccessToken,
		Message:     "Logged in successfully",
	})
}

// Logout is a no-op without cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	rt, ok := userCookies.read(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), rt, c.ClientIP()); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	userCookies.clear(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	rt, ok := userCookies.read(c)
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Refresh token missing"))
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), rt, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: access})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password reset successfully"})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *AuthHandler) CancelSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.CancelSubscription(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Subscription cancelled successfully",
		"user":    user,
	})
}
