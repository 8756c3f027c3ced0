package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const (
	testResultFolder = "booking/test-results"
	defaultMaxBytes  = 10 << 20
)

// Uploader is the subset of the Cloudinary upload API used here.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore uploads attachments to Cloudinary as authenticated raw assets.
// When EncryptionKey is set the bytes are sealed before they leave the process.
type CloudinaryStore struct {
	Uploader      Uploader
	EncryptionKey string
	MaxBytes      int64
	Logger        *zap.Logger
}

// NewCloudinaryStore wraps a Cloudinary client.
func NewCloudinaryStore(cld *cloudinary.Cloudinary, encryptionKey string, logger *zap.Logger) *CloudinaryStore {
	return &CloudinaryStore{Uploader: &cld.Upload, EncryptionKey: encryptionKey, MaxBytes: defaultMaxBytes, Logger: logger}
}

// UploadTestResult stores file under the session's folder and returns its public ID.
func (s *CloudinaryStore) UploadTestResult(ctx context.Context, sessionID, filename string, file io.Reader) (string, error) {
	limit := s.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}
	switch {
	case len(data) == 0:
		return "", ErrEmptyFile
	case int64(len(data)) > limit:
		return "", ErrFileTooLarge
	}

	if s.EncryptionKey != "" {
		if data, err = encrypt(data, s.EncryptionKey); err != nil {
			return "", err
		}
	}

	params := uploader.UploadParams{
		Folder:       path.Join(testResultFolder, sessionID),
		PublicID:     publicName(filename),
		ResourceType: "raw",
		Type:         "authenticated",
	}
	result, err := s.Uploader.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("failed to upload attachment: no public ID returned")
	}
	if s.Logger != nil {
		s.Logger.Info("test result uploaded",
			zap.String("sessionId", sessionID),
			zap.String("publicId", result.PublicID),
			zap.Bool("encrypted", s.EncryptionKey != ""),
		)
	}
	return result.PublicID, nil
}

// DeleteAttachment removes a previously uploaded attachment.
func (s *CloudinaryStore) DeleteAttachment(ctx context.Context, reference string) error {
	_, err := s.Uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     reference,
		ResourceType: "raw",
		Type:         "authenticated",
	})
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// publicName turns an uploaded filename into a Cloudinary-safe public ID.
func publicName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 || base == "." || base == "/" {
		return "test-result"
	}
	return b.String()
}
