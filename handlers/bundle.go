// File: winqroo/handlers/bundle.go
package handlers

import (
	shopRepoPkg "winqroo/database/repository/shop"
	userRepoPkg "winqroo/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	ShopRepo shopRepoPkg.ShopRepository
	UserRepo userRepoPkg.UserRepository

	// Queue endpoints
	JoinQueueHandler         gin.HandlerFunc
	GetShopQueuesHandler     gin.HandlerFunc
	GetActiveQueueHandler    gin.HandlerFunc
	GetMyQueuesHandler       gin.HandlerFunc
	UpdateQueueStatusHandler gin.HandlerFunc
	SwapPositionsHandler     gin.HandlerFunc
	LeaveQueueHandler        gin.HandlerFunc

	// Appointment endpoints
	BookAppointmentHandler         gin.HandlerFunc
	GetMyAppointmentsHandler       gin.HandlerFunc
	GetShopAppointmentsHandler     gin.HandlerFunc
	UpdateAppointmentStatusHandler gin.HandlerFunc
	CancelAppointmentHandler       gin.HandlerFunc

	// Shop directory and service catalog endpoints
	ListShopsHandler        gin.HandlerFunc
	GetShopHandler          gin.HandlerFunc
	CreateShopHandler       gin.HandlerFunc
	ListShopServicesHandler gin.HandlerFunc
	CreateServiceHandler    gin.HandlerFunc
	UpdateServiceHandler    gin.HandlerFunc
	DeleteServiceHandler    gin.HandlerFunc
}
