package handlers

import "github.com/gin-gonic/gin"

// AppHandlers contains every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler      *AuthHandler
	AdminAuthHandler *AdminAuthHandler
	OtpHandler       *OtpHandler
	PaymentHandler   *PaymentHandler
	TicketHandler    *TicketHandler
	AdminHandler     *AdminHandler
}

// Guards are the middleware chains handlers attach to their routes.
type Guards struct {
	RateLimit gin.HandlerFunc
	User      gin.HandlerFunc
	Admin     gin.HandlerFunc
	Self      gin.HandlerFunc
}

// RegisterRoutes mounts every handler under rg.
func (a *AppHandlers) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	a.AuthHandler.RegisterRoutes(rg, g)
	a.AdminAuthHandler.RegisterRoutes(rg, g)
	a.OtpHandler.RegisterRoutes(rg, g)
	a.PaymentHandler.RegisterRoutes(rg, g)
	a.TicketHandler.RegisterRoutes(rg, g)
	a.AdminHandler.RegisterRoutes(rg, g)
}
