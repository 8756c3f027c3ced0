package routes

import (
	"time"

	"toltimed/handlers"
	"toltimed/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
	if hb.Metrics != nil {
		r.GET("/metrics", gin.WrapH(hb.Metrics))
	}
}

// RegisterBookingRoutes sets up the endpoints of the booking wizard.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	h := hb.Booking
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))
		bookingGroup.Use(middleware.JWTAuthUserMiddleware(hb.AuthCache))

		bookingGroup.POST("/sessions", h.InitiateSession)
		bookingGroup.GET("/sessions/:id", h.GetSession)
		bookingGroup.DELETE("/sessions/:id", h.CancelSession)
		bookingGroup.POST("/sessions/:id/advance", h.Advance)
		bookingGroup.POST("/sessions/:id/back", h.Back)

		bookingGroup.GET("/sessions/:id/services", h.SearchServices)
		bookingGroup.POST("/sessions/:id/cart/toggle", h.ToggleService)
		bookingGroup.PATCH("/sessions/:id/cart/:serviceID", h.AdjustService)
		bookingGroup.PUT("/sessions/:id/practitioner", h.SelectPractitioner)
		bookingGroup.PUT("/sessions/:id/schedule", h.UpdateSchedule)
		bookingGroup.PUT("/sessions/:id/time", h.SetTimeSlot)
		bookingGroup.PUT("/sessions/:id/subject", h.SetSubject)
		bookingGroup.POST("/sessions/:id/test-result", h.UploadTestResult)
		bookingGroup.POST("/sessions/:id/payment-intent", h.CreatePaymentIntent)
		bookingGroup.POST("/sessions/:id/confirm", h.ConfirmBooking)

		bookingGroup.GET("/receipts/:bookingID", h.GetReceipt)
		bookingGroup.GET("/bookings", h.ListBookings)
	}
}

// RegisterRoutes applies CORS and registers every route group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
}
