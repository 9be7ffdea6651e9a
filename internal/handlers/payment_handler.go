package handlers

import (
	"net/http"

	"sajilo_backend/internal/services"
	"sajilo_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	pay := rg.Group("/users/payment", g.RateLimit, g.User)
	{
		pay.POST("/esewa/initiate/:id", g.Self, h.InitiateEsewa)
		pay.POST("/esewa/verify/:id", g.Self, h.VerifyEsewa)
		pay.POST("/khalti/initiate/:id", g.Self, h.InitiateKhalti)
		pay.POST("/khalti/verify/:id", g.Self, h.VerifyKhalti)
	}
}

// InitiateEsewa godoc
// @Summary Open an eSewa invoice
// @Description Reuses the caller's open invoice for the same plan, cycle and price.
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body dto.InitiatePaymentRequest true "Purchase"
// @Success 201 {object} dto.EsewaInitiateResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /api/v1/users/payment/esewa/initiate/{id} [post]
func (h *PaymentHandler) InitiateEsewa(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.InitiatePaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.paymentService.InitiateEsewa(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// VerifyEsewa godoc
// @Summary Confirm an eSewa payment and apply the subscription
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body dto.EsewaVerifyRequest true "Base64 callback data"
// @Success 200 {object} dto.VerifyPaymentResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/users/payment/esewa/verify/{id} [post]
func (h *PaymentHandler) VerifyEsewa(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.EsewaVerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.paymentService.VerifyEsewa(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) InitiateKhalti(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.InitiatePaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.paymentService.InitiateKhalti(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) VerifyKhalti(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.KhaltiVerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.paymentService.VerifyKhalti(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
