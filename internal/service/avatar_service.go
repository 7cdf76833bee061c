package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/config"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/middleware"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// AvatarService stores profile avatars under the media directory, either
// downloaded from a caller-supplied URL or taken from a multipart upload.
type AvatarService struct {
	cfg    *config.Config
	client *http.Client
}

func NewAvatarService(cfg *config.Config) *AvatarService {
	return &AvatarService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.AvatarFetchTimeout(),
		},
	}
}

// DefaultPath returns the avatar assigned when registration supplies no URL.
func (s *AvatarService) DefaultPath() string {
	return s.cfg.DefaultAvatarPath
}

// FetchFromURL downloads the image at rawURL and stores it as an avatar.
// The download is bounded by the configured timeout and size cap. Returns
// the stored path relative to the working directory.
func (s *AvatarService) FetchFromURL(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		middleware.AvatarFetches.WithLabelValues("invalid_url").Inc()
		return "", models.NewValidationError("Avatar URL must be an http(s) URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		middleware.AvatarFetches.WithLabelValues("invalid_url").Inc()
		return "", models.NewValidationError("Invalid avatar URL")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		middleware.AvatarFetches.WithLabelValues("network_error").Inc()
		return "", models.NewInternalError(fmt.Errorf("avatar fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		middleware.AvatarFetches.WithLabelValues("bad_status").Inc()
		return "", models.NewValidationError(fmt.Sprintf("Avatar URL returned status %d", resp.StatusCode))
	}

	maxBytes := s.cfg.AvatarMaxFetchBytes()
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		middleware.AvatarFetches.WithLabelValues("network_error").Inc()
		return "", models.NewInternalError(fmt.Errorf("avatar fetch: %w", err))
	}
	if int64(len(content)) > maxBytes {
		middleware.AvatarFetches.WithLabelValues("too_large").Inc()
		return "", models.NewValidationError(fmt.Sprintf("Avatar exceeds the %dMB limit", s.cfg.AvatarMaxFetchSizeMB))
	}

	path, saveErr := s.save(content)
	if saveErr != nil {
		middleware.AvatarFetches.WithLabelValues("invalid_image").Inc()
		return "", saveErr
	}
	middleware.AvatarFetches.WithLabelValues("success").Inc()
	return path, nil
}

// SaveUpload validates and stores an avatar supplied as a multipart upload.
func (s *AvatarService) SaveUpload(content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.cfg.AvatarMaxFetchBytes() {
		return "", models.NewValidationError(fmt.Sprintf("Avatar exceeds the %dMB limit", s.cfg.AvatarMaxFetchSizeMB))
	}
	return s.save(content)
}

// save decodes the image header to confirm it really is an image, then writes
// it under MEDIA_DIR/avatars with a random name and the format's extension.
func (s *AvatarService) save(content []byte) (string, error) {
	detected := http.DetectContentType(content)
	if !strings.HasPrefix(detected, "image/") {
		return "", models.NewValidationError("Avatar must be an image")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Unsupported or corrupt image file")
	}
	ext, ok := formatExtensions[format]
	if !ok {
		return "", models.NewValidationError("Unsupported image format")
	}

	rel := filepath.ToSlash(filepath.Join(s.cfg.MediaDir, "avatars", uuid.New().String()+ext))
	if err := os.MkdirAll(filepath.Dir(rel), 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(rel, content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return rel, nil
}
