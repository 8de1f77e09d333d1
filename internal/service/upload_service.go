package service

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"ripple/internal/config"
	"ripple/internal/middleware"
	"ripple/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultUploadDir       = "uploads"
	DefaultMaxUploadSizeMB = 5
)

// mimeExtensions maps accepted sniffed content types to the extension the
// stored file gets. The client-supplied filename is never trusted.
var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadInput struct {
	Content []byte
}

// UploadService stores post images on local disk under a random name and
// returns the public URL path they are served from.
type UploadService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewUploadService(cfg *config.Config) *UploadService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadMB
		}
	}

	return &UploadService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir returns the directory uploaded files are written to.
func (s *UploadService) UploadDir() string {
	return s.uploadDir
}

// Save validates and writes an uploaded image, returning its URL path.
func (s *UploadService) Save(in UploadInput) (string, error) {
	if len(in.Content) == 0 {
		middleware.UploadsTotal.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		middleware.UploadsTotal.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	ext, ok := mimeExtensions[detectedType]
	if !ok {
		middleware.UploadsTotal.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("Invalid image type")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		middleware.UploadsTotal.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), in.Content, 0o644); err != nil {
		middleware.UploadsTotal.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	middleware.UploadsTotal.WithLabelValues("stored").Inc()
	return "/uploads/" + name, nil
}
