package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestAvatarService_SaveUpload(t *testing.T) {
	svc := testAvatarService(t)

	t.Run("Valid PNG", func(t *testing.T) {
		path, err := svc.SaveUpload(tinyPNG(t))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, ".png"), "extension follows the decoded format, got %q", path)

		content, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.NotEmpty(t, content)
	})

	t.Run("Not An Image", func(t *testing.T) {
		_, err := svc.SaveUpload([]byte("definitely not an image"))
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Empty Upload", func(t *testing.T) {
		_, err := svc.SaveUpload(nil)
		require.Error(t, err)
	})
}

func TestAvatarService_FetchFromURL(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(tinyPNG(t))
		}))
		defer server.Close()

		svc := testAvatarService(t)
		path, err := svc.FetchFromURL(ctx, server.URL+"/avatar.png")
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("Non HTTP Scheme Rejected", func(t *testing.T) {
		svc := testAvatarService(t)
		_, err := svc.FetchFromURL(ctx, "ftp://example.com/avatar.png")
		require.Error(t, err)
	})

	t.Run("Bad Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		svc := testAvatarService(t)
		_, err := svc.FetchFromURL(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("Oversized Body Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			// 1MB cap in this test config; send 1MB+1.
			_, _ = w.Write(make([]byte, 1<<20+1))
		}))
		defer server.Close()

		svc := testAvatarService(t)
		svc.cfg.AvatarMaxFetchSizeMB = 1
		_, err := svc.FetchFromURL(ctx, server.URL)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Non Image Body Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not an image</html>"))
		}))
		defer server.Close()

		svc := testAvatarService(t)
		_, err := svc.FetchFromURL(ctx, server.URL)
		require.Error(t, err)
	})
}
