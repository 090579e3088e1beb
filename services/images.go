package services

import (
	"context"
	"log/slog"

	"socialapp/apperr"
	"socialapp/media"
)

func uploadImage(ctx context.Context, host media.Host, payload, folder string) (string, error) {
	url, err := host.Upload(ctx, payload, folder)
	if err != nil {
		return "", apperr.External("Failed to upload image", err)
	}
	return url, nil
}

// releaseImage deletes a hosted image. Failures are logged and swallowed so
// they never block the operation that dropped the reference.
func releaseImage(ctx context.Context, host media.Host, url string) {
	if url == "" {
		return
	}
	if err := host.Destroy(ctx, url); err != nil {
		slog.Warn("failed to delete hosted image", "url", url, "error", err)
	}
}
