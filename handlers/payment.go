package handlers

import (
	"net/http"

	"toltimed/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreatePaymentIntent handles POST /sessions/:id/payment-intent. The amount is
// the session's current quote, never a client-supplied figure.
func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	if h.Payments == nil {
		h.respondError(c, "CreatePaymentIntent", errUnavailable)
		return
	}
	ctx := userContext(c)
	view, err := h.BookingSvc.GetSession(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, "CreatePaymentIntent", err)
		return
	}

	intent, err := h.Payments.CreateIntent(ctx, payment.IntentRequest{
		SessionID: view.Session.SessionID,
		UserID:    view.Session.UserID,
		Amount:    view.Quote.TotalCost,
		Currency:  view.Quote.Currency,
	})
	if err != nil {
		h.respondError(c, "CreatePaymentIntent", err)
		return
	}
	h.Logger.Info("payment intent created",
		zap.String("sessionID", view.Session.SessionID), zap.String("intentID", intent.ID))
	c.JSON(http.StatusOK, intent)
}
