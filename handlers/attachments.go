package handlers

import (
	"context"
	"fmt"
	"net/http"

	"toltimed/models"
	"toltimed/services/booking"
	"toltimed/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadTestResult handles POST /sessions/:id/test-result. The multipart
// "file" field is stored and its reference attached to the self-booking form.
func (h *BookingHandler) UploadTestResult(c *gin.Context) {
	if h.Storage == nil {
		h.respondError(c, "UploadTestResult", errUnavailable)
		return
	}
	ctx := userContext(c)
	sessionID := c.Param("id")

	view, err := h.BookingSvc.GetSession(ctx, sessionID)
	if err != nil {
		h.respondError(c, "UploadTestResult", err)
		return
	}
	if view.Session.Stage != models.StageFinalize {
		h.respondError(c, "UploadTestResult", fmt.Errorf("%w: test results are attached at %s", booking.ErrWrongStage, models.StageFinalize))
		return
	}
	if view.Session.Subject.Kind != models.SubjectSelf {
		h.respondError(c, "UploadTestResult", booking.ErrWrongSubject)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "cannot open file")
		return
	}
	defer file.Close()

	ref, err := h.Storage.UploadTestResult(ctx, sessionID, fileHeader.Filename, file)
	if err != nil {
		h.respondError(c, "UploadTestResult", err)
		return
	}

	view, err = h.BookingSvc.UpdateSession(ctx, sessionID, func(w *booking.Wizard) error {
		return w.AttachTestResult(ref)
	})
	if err != nil {
		if derr := h.Storage.DeleteAttachment(context.WithoutCancel(ctx), ref); derr != nil {
			h.Logger.Warn("UploadTestResult: orphaned attachment", zap.String("ref", ref), zap.Error(derr))
		}
		h.respondError(c, "UploadTestResult", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"testResult": ref, "session": view})
}
