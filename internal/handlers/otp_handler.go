package handlers

import (
	"net/http"

	"sajilo_backend/internal/services"
	"sajilo_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type OtpHandler struct {
	*BaseHandler
	otpService services.OtpService
}

func NewOtpHandler(base *BaseHandler, otpService services.OtpService) *OtpHandler {
	return &OtpHandler{
		BaseHandler: base,
		otpService:  otpService,
	}
}

func (h *OtpHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	otp := rg.Group("/otp")
	{
		otp.POST("/send", g.RateLimit, h.Send)
		otp.POST("/verify", g.RateLimit, h.Verify)
		otp.POST("/verify/link", h.VerifyLink)
		otp.POST("/ip-reset/confirm", g.RateLimit, h.ConfirmIPReset)
	}
	rg.POST("/admin/otp/send/ip-reset", g.Admin, h.SendIPReset)
}

func (h *OtpHandler) Send(c *gin.Context) {
	var req dto.SendOtpRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.otpService.Send(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "OTP sent successfully"})
}

// SendIPReset lets an admin start the new-device flow for a user.
func (h *OtpHandler) SendIPReset(c *gin.Context) {
	var req dto.SendIPResetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.otpService.SendIPReset(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "IP reset OTP sent successfully"})
}

func (h *OtpHandler) Verify(c *gin.Context) {
	var req dto.VerifyOtpRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.otpService.Verify(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "OTP verified successfully"})
}

func (h *OtpHandler) VerifyLink(c *gin.Context) {
	var req dto.VerifyLinkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.otpService.VerifyLink(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VerifyLinkResponse{Valid: true})
}

func (h *OtpHandler) ConfirmIPReset(c *gin.Context) {
	var req dto.ConfirmIPResetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.otpService.ConfirmIPReset(c.Request.Context(), &req, c.ClientIP()); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Device updated successfully"})
}
