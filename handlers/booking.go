package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"toltimed/models"
	"toltimed/services/availability"
	"toltimed/services/booking"
	"toltimed/services/catalog"
	"toltimed/services/payment"
	"toltimed/services/storage"
	"toltimed/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReceiptReader fetches receipts handed to the receipt view.
type ReceiptReader interface {
	GetReceipt(ctx context.Context, bookingID string) (*models.Receipt, error)
}

// BookingReader reads submitted bookings.
type BookingReader interface {
	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Booking, error)
}

// BookingHandler serves the booking wizard API. Storage and Payments are
// optional; their endpoints answer 503 when unset.
type BookingHandler struct {
	BookingSvc booking.BookingSessionService
	Receipts   ReceiptReader
	Bookings   BookingReader
	Storage    storage.AttachmentStore
	Payments   payment.IntentCreator
	Logger     *zap.Logger
}

func NewBookingHandler(svc booking.BookingSessionService, receipts ReceiptReader, bookings BookingReader, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		BookingSvc: svc,
		Receipts:   receipts,
		Bookings:   bookings,
		Logger:     logger,
	}
}

// userContext scopes the request context to the authenticated user.
func userContext(c *gin.Context) context.Context {
	return booking.WithUser(c.Request.Context(), c.GetString("userID"))
}

// InitiateSession handles POST /sessions.
func (h *BookingHandler) InitiateSession(c *gin.Context) {
	var input struct {
		FCMToken string `json:"fcmToken"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	userID := c.GetString("userID")
	view, err := h.BookingSvc.InitiateSession(userContext(c), userID, input.FCMToken)
	if err != nil {
		h.respondError(c, "InitiateSession", err)
		return
	}
	h.Logger.Info("booking session started",
		zap.String("sessionID", view.Session.SessionID), zap.String("userID", userID))
	c.JSON(http.StatusCreated, view)
}

// GetSession handles GET /sessions/:id.
func (h *BookingHandler) GetSession(c *gin.Context) {
	view, err := h.BookingSvc.GetSession(userContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "GetSession", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelSession handles DELETE /sessions/:id.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	if err := h.BookingSvc.CancelSession(userContext(c), c.Param("id")); err != nil {
		h.respondError(c, "CancelSession", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Advance handles POST /sessions/:id/advance.
func (h *BookingHandler) Advance(c *gin.Context) {
	view, err := h.BookingSvc.Advance(userContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "Advance", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Back handles POST /sessions/:id/back.
func (h *BookingHandler) Back(c *gin.Context) {
	view, err := h.BookingSvc.Back(userContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "Back", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ToggleService handles POST /sessions/:id/cart/toggle.
func (h *BookingHandler) ToggleService(c *gin.Context) {
	var input struct {
		ServiceID string `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	var selected bool
	view, err := h.BookingSvc.UpdateSession(userContext(c), c.Param("id"), func(w *booking.Wizard) error {
		var err error
		selected, err = w.ToggleService(input.ServiceID)
		return err
	})
	if err != nil {
		h.respondError(c, "ToggleService", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": selected, "session": view})
}

// AdjustService handles PATCH /sessions/:id/cart/:serviceID.
func (h *BookingHandler) AdjustService(c *gin.Context) {
	var input struct {
		Dimension catalog.Dimension `json:"dimension" binding:"required,oneof=quantity days"`
		Increment int               `json:"increment" binding:"ne=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	serviceID := c.Param("serviceID")
	view, err := h.BookingSvc.UpdateSession(userContext(c), c.Param("id"), func(w *booking.Wizard) error {
		return w.AdjustService(serviceID, input.Dimension, input.Increment)
	})
	if err != nil {
		h.respondError(c, "AdjustService", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SelectPractitioner handles PUT /sessions/:id/practitioner.
func (h *BookingHandler) SelectPractitioner(c *gin.Context) {
	var input struct {
		PractitionerID string `json:"practitionerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	view, err := h.BookingSvc.UpdateSession(userContext(c), c.Param("id"), func(w *booking.Wizard) error {
		return w.SelectPractitioner(input.PractitionerID)
	})
	if err != nil {
		h.respondError(c, "SelectPractitioner", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateSchedule handles PUT /sessions/:id/schedule. Absent fields are left untouched.
func (h *BookingHandler) UpdateSchedule(c *gin.Context) {
	var input struct {
		Frequency    *models.Frequency `json:"frequency" binding:"omitempty,frequency"`
		SelectedDays []models.Weekday  `json:"selectedDays" binding:"omitempty,dive,weekday"`
		ToggleDay    *models.Weekday   `json:"toggleDay" binding:"omitempty,weekday"`
		StartDate    *string           `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
		TotalDays    *int              `json:"totalDays"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	update := booking.ScheduleUpdate{
		Frequency:    input.Frequency,
		SelectedDays: input.SelectedDays,
		ToggleDay:    input.ToggleDay,
		StartDate:    input.StartDate,
		TotalDays:    input.TotalDays,
	}
	view, err := h.BookingSvc.UpdateSession(userContext(c), c.Param("id"), func(w *booking.Wizard) error {
		return w.UpdateSchedule(update)
	})
	if err != nil {
		h.respondError(c, "UpdateSchedule", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetTimeSlot handles PUT /sessions/:id/time. The time is stored even when it
// falls outside the practitioner's availability; the result says so.
func (h *BookingHandler) SetTimeSlot(c *gin.Context) {
	var input struct {
		TimeSlot string `json:"timeSlot" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	var result availability.Result
	view, err := h.BookingSvc.UpdateSession(userContext(c), c.Param("id"), func(w *booking.Wizard) error {
		var err error
		result, err = w.SetTimeSlot(input.TimeSlot)
		return err
	})
	if err != nil {
		h.respondError(c, "SetTimeSlot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": result, "session": view})
}

// SetSubject handles PUT /sessions/:id/subject. Switching between self and
// other keeps what was typed on the other branch. A self update without a
// test result keeps the one already attached.
func (h *BookingHandler) SetSubject(c *gin.Context) {
	var input struct {
		BookingForSelf *bool                `json:"bookingForSelf" binding:"required"`
		Self           *models.SelfSubject  `json:"self"`
		Other          *models.OtherSubject `json:"other"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	view, err := h.BookingSvc.UpdateSession(userContext(c), c.Param("id"), func(w *booking.Wizard) error {
		if *input.BookingForSelf {
			if err := w.ChooseSelf(); err != nil {
				return err
			}
			if input.Self == nil {
				return nil
			}
			details := *input.Self
			if details.TestResult == "" {
				if current := w.Finalizer().Subject().Self; current != nil {
					details.TestResult = current.TestResult
				}
			}
			return w.UpdateSelf(details)
		}
		if err := w.ChooseOther(); err != nil {
			return err
		}
		if input.Other == nil {
			return nil
		}
		return w.UpdateOther(*input.Other)
	})
	if err != nil {
		h.respondError(c, "SetSubject", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ConfirmBooking handles POST /sessions/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	sessionID := c.Param("id")
	confirmation, err := h.BookingSvc.ConfirmBooking(userContext(c), sessionID)
	if err != nil {
		h.respondError(c, "ConfirmBooking", err)
		return
	}
	h.Logger.Info("booking confirmed",
		zap.String("sessionID", sessionID), zap.String("bookingID", confirmation.Booking.ID))
	c.JSON(http.StatusCreated, confirmation)
}
