package handlers

import (
	"net/http"

	"sajilo_backend/internal/services"
	"sajilo_backend/internal/services/dto"
	"sajilo_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AdminAuthHandler struct {
	*BaseHandler
	adminAuthService services.AdminAuthService
}

func NewAdminAuthHandler(base *BaseHandler, adminAuthService services.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{
		BaseHandler:      base,
		adminAuthService: adminAuthService,
	}
}

func (h *AdminAuthHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	admin := rg.Group("/admin")
	{
		admin.POST("/login", g.RateLimit, h.Login)
		admin.POST("/logout", g.RateLimit, h.Logout)
	}
	rg.POST("/auth/refresh-token-admin", h.RefreshToken)
}

// Login godoc
// @Summary Admin login
// @Description Key must be a positive integer. IP falls back to the client address.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 403 {object} apperrors.ErrorResponse "Key or IP mismatch"
// @Router /api/v1/admin/login [post]
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.adminAuthService.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	adminCookies.set(c, res.RefreshToken, res.RefreshTTL)
	c.JSON(http.StatusOK, dto.AccessTokenResponse{
		AccessToken: res.AccessToken,
		Message:     "Logged in successfully",
	})
}

func (h *AdminAuthHandler) Logout(c *gin.Context) {
	adminCookies.clear(c)
	c.Status(http.StatusNoContent)
}

func (h *AdminAuthHandler) RefreshToken(c *gin.Context) {
	rt, ok := adminCookies.read(c)
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Refresh token missing"))
		return
	}

	access, err := h.adminAuthService.Refresh(c.Request.Context(), rt, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: access})
}
