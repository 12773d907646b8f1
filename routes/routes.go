// File: winqroo/routes/routes.go
package routes

import (
	"net/http"
	"time"

	"winqroo/handlers"
	"winqroo/middleware"
	"winqroo/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterQueueRoutes registers live-queue endpoints.
func RegisterQueueRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/queues")
	{
		// Public snapshot endpoint, polled by waiting-room displays.
		api.GET("/shop/:shopId/active", hb.GetActiveQueueHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.JoinQueueHandler)
		api.GET("/my-queues", hb.GetMyQueuesHandler)
		api.PUT("/:id/status", hb.UpdateQueueStatusHandler)
		api.DELETE("/:id", hb.LeaveQueueHandler)

		owner := api.Group("")
		owner.Use(middleware.RequireShopOwner())
		owner.GET("/shop/:shopId", hb.GetShopQueuesHandler)
		owner.PUT("/swap", hb.SwapPositionsHandler)
	}
}

// RegisterAppointmentRoutes registers scheduled-appointment endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.BookAppointmentHandler)
		api.GET("/my-appointments", hb.GetMyAppointmentsHandler)
		api.PUT("/:id/status", hb.UpdateAppointmentStatusHandler)
		api.DELETE("/:id", hb.CancelAppointmentHandler)

		owner := api.Group("")
		owner.Use(middleware.RequireShopOwner())
		owner.GET("/shop/:shopId", hb.GetShopAppointmentsHandler)
	}
}

// RegisterCatalogRoutes registers shop directory and service catalog endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/shops")
	{
		// Public discovery endpoints.
		api.GET("", hb.ListShopsHandler)
		api.GET("/:shopId", hb.GetShopHandler)
		api.GET("/:shopId/services", hb.ListShopServicesHandler)

		// Shop management requires an authenticated owner.
		owner := api.Group("")
		owner.Use(middleware.JWTAuthMiddleware(), middleware.RequireShopOwner())
		owner.POST("", hb.CreateShopHandler)
		owner.POST("/:shopId/services", hb.CreateServiceHandler)
		owner.PUT("/:shopId/services/:serviceId", hb.UpdateServiceHandler)
		owner.DELETE("/:shopId/services/:serviceId", hb.DeleteServiceHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterQueueRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterHealthRoute(r)
}
