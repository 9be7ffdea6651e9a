package dto

import "sajilo_backend/internal/models"

// PageQuery is the ?page= parameter of admin listings.
type PageQuery struct {
	Page int `form:"page" validate:"omitempty,min=1"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPagination fills the metadata block for page out of total items.
func NewPagination(page, perPage int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: perPage,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

type SessionList struct {
	Sessions   []models.Session `json:"sessions"`
	Pagination Pagination       `json:"pagination"`
}

type InvoiceList struct {
	Invoices   []models.Invoice `json:"invoices"`
	Pagination Pagination       `json:"pagination"`
}

type TicketList struct {
	Tickets    []models.Ticket `json:"tickets"`
	Pagination Pagination      `json:"pagination"`
}

type UpdateSessionStatusRequest struct {
	Status models.SessionStatus `json:"status" validate:"required,is-session-status"`
}

type UpdateInvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status" validate:"required,is-invoice-status"`
}

type UpdateTicketStatusRequest struct {
	Status models.TicketStatus `json:"status" validate:"required,is-ticket-status"`
}

type CreateTicketRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}
