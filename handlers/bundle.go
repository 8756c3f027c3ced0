package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// HandlerBundle groups the endpoint handlers and what the routes need to guard them.
type HandlerBundle struct {
	AuthCache         redis.Cmdable
	MaxRequestsPerMin int

	Health gin.HandlerFunc

	// Metrics serves the Prometheus scrape endpoint when set.
	Metrics http.Handler

	// Booking endpoints
	Booking *BookingHandler
}

func NewHandlerBundle(booking *BookingHandler, authCache redis.Cmdable, maxRequestsPerMin int) *HandlerBundle {
	return &HandlerBundle{
		AuthCache:         authCache,
		MaxRequestsPerMin: maxRequestsPerMin,
		Health:            Health,
		Booking:           booking,
	}
}
