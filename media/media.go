// Package media hosts user images outside the document store.
package media

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
)

const (
	FolderPosts    = "posts"
	FolderProfiles = "profiles"
)

var ErrNotConfigured = errors.New("image hosting is not configured")

// Host uploads an image payload (a data URI or a remote URL) and returns its
// durable URL, and deletes previously uploaded images by that URL.
type Host interface {
	Upload(ctx context.Context, payload, folder string) (string, error)
	Destroy(ctx context.Context, imageURL string) error
}

// Disabled is used when no hosting credentials are configured. Uploads fail;
// deletes are no-ops since nothing could have been uploaded.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Destroy(context.Context, string) error { return nil }

// PublicIDFromURL extracts the asset id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712997552/posts/abc.png,
// which yields "posts/abc".
func PublicIDFromURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}

	p := u.Path
	if i := strings.Index(p, "/upload/"); i >= 0 {
		p = p[i+len("/upload/"):]
	} else {
		p = path.Base(p)
	}

	segments := strings.Split(strings.Trim(p, "/"), "/")
	if len(segments) > 1 && isVersion(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	return strings.TrimSuffix(id, path.Ext(id))
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
