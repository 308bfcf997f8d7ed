package main

import (
	"os"
)

//go:generate swag init -g main.go -o ../docs --parseDependency --parseInternal -d ./,../../internal/handlers

// @title Travel Back Office API
// @version 1.0
// @description Bookings, visas, installment plans and the voucher ledger of a travel agency.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

// @security BearerAuth
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
