package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrEmptyFile    = errors.New("attachment is empty")
	ErrFileTooLarge = errors.New("attachment exceeds the size limit")
)

// AttachmentStore keeps patient attachments such as test results.
type AttachmentStore interface {
	// UploadTestResult stores a test result for a booking session and returns
	// the reference recorded on the booking.
	UploadTestResult(ctx context.Context, sessionID, filename string, file io.Reader) (string, error)
	DeleteAttachment(ctx context.Context, reference string) error
}
