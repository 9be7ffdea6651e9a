package handlers

import (
	"net/http"

	"sajilo_backend/internal/services"
	"sajilo_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the back-office listings and edits of sessions, invoices and tickets.
type AdminHandler struct {
	*BaseHandler
	sessions services.SessionService
	invoices services.InvoiceService
	tickets  services.TicketService
}

func NewAdminHandler(base *BaseHandler, sessions services.SessionService, invoices services.InvoiceService, tickets services.TicketService) *AdminHandler {
	return &AdminHandler{
		BaseHandler: base,
		sessions:    sessions,
		invoices:    invoices,
		tickets:     tickets,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	admin := rg.Group("/admin", g.Admin)
	{
		admin.GET("/get-all-sessions", h.ListSessions)
		admin.PUT("/edit-session-status/:id", h.UpdateSessionStatus)
		admin.DELETE("/delete-session/:id", h.DeleteSession)

		admin.GET("/get-all-invoices", h.ListInvoices)
		admin.PUT("/edit-invoice-status/:id", h.UpdateInvoiceStatus)
		admin.DELETE("/delete-invoice/:id", h.DeleteInvoice)

		admin.GET("/get-all-tickets", h.ListTickets)
		admin.PUT("/edit-ticket-status/:id", h.UpdateTicketStatus)
		admin.DELETE("/delete-ticket/:id", h.DeleteTicket)
	}
}

// --- sessions ---

func (h *AdminHandler) ListSessions(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	list, err := h.sessions.List(c.Request.Context(), q.Page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) UpdateSessionStatus(c *gin.Context) {
	var req dto.UpdateSessionStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	session, err := h.sessions.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session status updated", "session": session})
}

func (h *AdminHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Session deleted"})
}

// --- invoices ---

func (h *AdminHandler) ListInvoices(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	list, err := h.invoices.List(c.Request.Context(), q.Page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) UpdateInvoiceStatus(c *gin.Context) {
	var req dto.UpdateInvoiceStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice status updated", "invoice": invoice})
}

func (h *AdminHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Invoice deleted"})
}

// --- tickets ---

func (h *AdminHandler) ListTickets(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	list, err := h.tickets.List(c.Request.Context(), q.Page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) UpdateTicketStatus(c *gin.Context) {
	var req dto.UpdateTicketStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	ticket, err := h.tickets.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket status updated", "ticket": ticket})
}

func (h *AdminHandler) DeleteTicket(c *gin.Context) {
	if err := h.tickets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Ticket deleted"})
}
