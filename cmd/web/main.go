// @title           Sajilo API
// @version         1.0
// @description     Accounts, subscriptions and payments for the Sajilo storefront.
// @host            localhost:8000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "sajilo_backend/internal/app"

func main() {
	app.Run()
}
