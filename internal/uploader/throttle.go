package uploader

import (
	"context"
	"io"

	"shoebox/internal/photoslib"
)

// throttledService applies the rate limiter in front of remote calls.
// With uploadsOnly set, album creation and linking bypass the limiter
// and only byte uploads are paced.
type throttledService struct {
	inner       photoslib.Service
	limiter     *RateLimiter
	uploadsOnly bool
}

// Throttle wraps a remote service with rate limiting.
func Throttle(inner photoslib.Service, limiter *RateLimiter, uploadsOnly bool) photoslib.Service {
	return &throttledService{inner: inner, limiter: limiter, uploadsOnly: uploadsOnly}
}

func (t *throttledService) CreateAlbum(ctx context.Context, title string) (string, error) {
	if !t.uploadsOnly {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return t.inner.CreateAlbum(ctx, title)
}

func (t *throttledService) UploadBytes(ctx context.Context, filename string, content io.Reader, size int64) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.inner.UploadBytes(ctx, filename, content, size)
}

func (t *throttledService) AddToAlbum(ctx context.Context, albumID, mediaID string) error {
	if !t.uploadsOnly {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return t.inner.AddToAlbum(ctx, albumID, mediaID)
}
