package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bmkl23/taxi-management-system/internal/adapter/websocket"
	"github.com/bmkl23/taxi-management-system/internal/core/service"
)

// RegisterRoutes mounts the REST surface, the websocket endpoint, and
// the metrics endpoint on r.
func RegisterRoutes(r *gin.Engine, auth *service.AuthService, users *UserHandler, drivers *DriverHandler, bookings *BookingHandler, hub *websocket.Hub) {
	r.GET("/ws", hub.ServeWS)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	u := api.Group("/users")
	{
		u.POST("/register", users.Register)
		u.POST("/login", users.Login)
		u.GET("/profile", AuthMiddleware(auth), users.Profile)
		u.PUT("/profile", AuthMiddleware(auth), users.UpdateProfile)
		u.GET("", AuthMiddleware(auth), users.ListAll)
	}

	d := api.Group("/drivers")
	{
		d.POST("/register", drivers.Register)
		d.POST("/login", drivers.Login)

		authed := d.Group("", AuthMiddleware(auth))
		authed.GET("", drivers.List)
		authed.GET("/:driverId", drivers.Get)
		authed.PATCH("/:driverId/availability", drivers.UpdateAvailability)
		authed.PATCH("/:driverId", drivers.Update)
		authed.DELETE("/:driverId", drivers.Delete)
	}

	b := api.Group("/bookings", AuthMiddleware(auth))
	{
		b.POST("", bookings.Create)
		b.GET("/history/all", bookings.History)
		b.GET("/admin/all", bookings.AdminListAll)
		b.GET("/:bookingId", bookings.Get)
		b.PATCH("/:bookingId/cancel", bookings.Cancel)
		b.PATCH("/:bookingId/status", bookings.UpdateStatus)
		b.PATCH("/:bookingId/payment", bookings.UpdatePayment)
	}
}
