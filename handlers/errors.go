package handlers

import (
	"errors"
	"net/http"

	bookingRepo "toltimed/database/repository/booking"
	"toltimed/models"
	"toltimed/services/booking"
	"toltimed/services/catalog"
	"toltimed/services/payment"
	"toltimed/services/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errUnavailable = errors.New("feature is not configured")

// classify maps a service error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var verr *models.ValidationError
	var serr *booking.SubmissionError
	switch {
	case errors.As(err, &verr), errors.Is(err, booking.ErrFormInvalid):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.As(err, &serr):
		if serr.Code == "submissionTimeout" {
			return http.StatusGatewayTimeout, serr.Code
		}
		return http.StatusBadGateway, serr.Code
	case errors.Is(err, booking.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, booking.ErrReceiptNotFound), errors.Is(err, bookingRepo.ErrBookingNotFound):
		return http.StatusNotFound, "receipt_not_found"
	case errors.Is(err, booking.ErrSubmissionInFlight):
		return http.StatusConflict, "submission_in_flight"
	case errors.Is(err, booking.ErrAlreadySubmitted):
		return http.StatusConflict, "already_submitted"
	case errors.Is(err, booking.ErrLocked):
		return http.StatusConflict, "locked"
	case errors.Is(err, booking.ErrWrongStage),
		errors.Is(err, booking.ErrFirstStage),
		errors.Is(err, booking.ErrLastStage),
		errors.Is(err, booking.ErrWrongSubject),
		errors.Is(err, booking.ErrPractitionerRequired):
		return http.StatusConflict, "wrong_stage"
	case errors.Is(err, catalog.ErrMissingPrice), errors.Is(err, payment.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "not_priced"
	case errors.Is(err, booking.ErrUnknownService),
		errors.Is(err, booking.ErrUnknownPractitioner),
		errors.Is(err, catalog.ErrNotInCart),
		errors.Is(err, catalog.ErrUnknownDimension),
		errors.Is(err, storage.ErrEmptyFile):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError writes err as JSON. Validation failures carry their problem list.
func (h *BookingHandler) respondError(c *gin.Context, op string, err error) {
	status, code := classify(err)
	body := gin.H{"error": code, "message": err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body["problems"] = verr.Problems
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error(op+": request failed", zap.String("code", code), zap.Error(err))
	} else {
		h.Logger.Debug(op+": request rejected", zap.String("code", code), zap.Error(err))
	}
	c.JSON(status, body)
}
