package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"toltimed/models"
	"toltimed/services/booking"
	"toltimed/utils"

	"github.com/gin-gonic/gin"
)

const maxListedBookings = 100

// GetReceipt handles GET /receipts/:bookingID. Receipts handed over at
// confirmation expire from the cache; afterwards the receipt is rebuilt from
// the stored booking.
func (h *BookingHandler) GetReceipt(c *gin.Context) {
	ctx := c.Request.Context()
	bookingID := c.Param("bookingID")
	userID := c.GetString("userID")

	var receipt *models.Receipt
	err := booking.ErrReceiptNotFound
	if h.Receipts != nil {
		receipt, err = h.Receipts.GetReceipt(ctx, bookingID)
	}
	if errors.Is(err, booking.ErrReceiptNotFound) && h.Bookings != nil {
		var b *models.Booking
		b, err = h.Bookings.GetBookingByID(ctx, bookingID)
		if err == nil {
			r := booking.NewReceipt(*b, time.Now().UTC())
			receipt = &r
		}
	}
	if err != nil {
		h.respondError(c, "GetReceipt", err)
		return
	}
	if receipt.Booking.Payload.UserID != userID {
		h.respondError(c, "GetReceipt", booking.ErrReceiptNotFound)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// ListBookings handles GET /bookings?limit=, newest first.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	if h.Bookings == nil {
		h.respondError(c, "ListBookings", errUnavailable)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "limit must be a positive integer")
		return
	}
	if limit > maxListedBookings {
		limit = maxListedBookings
	}
	bookings, err := h.Bookings.ListByUser(c.Request.Context(), c.GetString("userID"), int64(limit))
	if err != nil {
		h.respondError(c, "ListBookings", err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
