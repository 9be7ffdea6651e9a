// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/v1/users/register": {"post": {"tags": ["users"], "summary": "Register a free account", "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}, "429": {"description": "Device already registered"}}}},
        "/api/v1/users/login": {"post": {"tags": ["users"], "summary": "Log in; sets _rt and _ka cookies", "responses": {"200": {"description": "Access token"}, "401": {"description": "Invalid credentials"}, "403": {"description": "Inactive account or new device"}}}},
        "/api/v1/users/logout": {"post": {"tags": ["users"], "summary": "Delete the current session", "responses": {"200": {"description": "Logged out"}, "204": {"description": "No cookies"}}}},
        "/api/v1/users/reset-password": {"put": {"tags": ["users"], "summary": "Set a new password with the mailed password-reset code", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/users/update-profile/{id}": {"put": {"tags": ["users"], "summary": "Change email or password", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/users/cancel-subscription/{id}": {"put": {"tags": ["users"], "summary": "Cancel the paid subscription", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/auth/refresh-token": {"post": {"tags": ["users"], "summary": "Issue a new access token from the _rt cookie", "responses": {"200": {"description": "Access token"}, "401": {"description": "No cookies"}, "403": {"description": "Session unusable"}}}},
        "/api/v1/users/payment/esewa/initiate/{id}": {"post": {"tags": ["payment"], "summary": "Open an eSewa invoice", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Invoice and signature"}}}},
        "/api/v1/users/payment/esewa/verify/{id}": {"post": {"tags": ["payment"], "summary": "Confirm an eSewa payment", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Paid"}}}},
        "/api/v1/users/payment/khalti/initiate/{id}": {"post": {"tags": ["payment"], "summary": "Open a Khalti payment", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Payment URL"}}}},
        "/api/v1/users/payment/khalti/verify/{id}": {"post": {"tags": ["payment"], "summary": "Confirm a Khalti payment", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Paid"}}}},
        "/api/v1/users/create-ticket": {"post": {"tags": ["tickets"], "summary": "Open a support ticket", "responses": {"201": {"description": "Created"}}}},
        "/api/v1/otp/send": {"post": {"tags": ["otp"], "summary": "Send a register or password-reset code", "responses": {"200": {"description": "Sent"}}}},
        "/api/v1/otp/verify": {"post": {"tags": ["otp"], "summary": "Verify a code", "responses": {"200": {"description": "Verified"}}}},
        "/api/v1/otp/verify/link": {"post": {"tags": ["otp"], "summary": "Check an IP reset link", "responses": {"200": {"description": "Valid"}}}},
        "/api/v1/otp/ip-reset/confirm": {"post": {"tags": ["otp"], "summary": "Bind the account to the calling device", "responses": {"200": {"description": "Updated"}}}},
        "/api/v1/admin/login": {"post": {"tags": ["admin"], "summary": "Admin login; sets _rt_a and _ka_a cookies", "responses": {"200": {"description": "Access token"}}}},
        "/api/v1/admin/logout": {"post": {"tags": ["admin"], "summary": "Clear admin cookies", "responses": {"204": {"description": "Cleared"}}}},
        "/api/v1/auth/refresh-token-admin": {"post": {"tags": ["admin"], "summary": "Issue a new admin access token", "responses": {"200": {"description": "Access token"}}}},
        "/api/v1/admin/otp/send/ip-reset": {"post": {"tags": ["admin"], "summary": "Send an IP reset code and link", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Sent"}}}},
        "/api/v1/admin/get-all-sessions": {"get": {"tags": ["admin"], "summary": "List sessions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Page"}}}},
        "/api/v1/admin/get-all-invoices": {"get": {"tags": ["admin"], "summary": "List invoices", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Page"}}}},
        "/api/v1/admin/get-all-tickets": {"get": {"tags": ["admin"], "summary": "List tickets", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Page"}}}},
        "/api/v1/admin/edit-session-status/{id}": {"put": {"tags": ["admin"], "summary": "Change a session status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated"}}}},
        "/api/v1/admin/edit-invoice-status/{id}": {"put": {"tags": ["admin"], "summary": "Change an invoice status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated"}}}},
        "/api/v1/admin/edit-ticket-status/{id}": {"put": {"tags": ["admin"], "summary": "Change a ticket status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Updated"}}}},
        "/api/v1/admin/delete-session/{id}": {"delete": {"tags": ["admin"], "summary": "Delete a session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Deleted"}}}},
        "/api/v1/admin/delete-invoice/{id}": {"delete": {"tags": ["admin"], "summary": "Delete an invoice", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Deleted"}}}},
        "/api/v1/admin/delete-ticket/{id}": {"delete": {"tags": ["admin"], "summary": "Delete a ticket", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Deleted"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sajilo API",
	Description:      "Accounts, subscriptions and payments for the Sajilo storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
