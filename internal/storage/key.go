package storage

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UniqueKey produces a collision-resistant object key for an upload:
// "uploads/{userID}/{epochMillis}-{uuid}{ext}". The extension is carried
// over from the original filename (empty when the name has none).
func UniqueKey(userID, originalFilename string) string {
	ext := path.Ext(originalFilename)
	return fmt.Sprintf("uploads/%s/%d-%s%s", userID, time.Now().UnixMilli(), uuid.NewString(), ext)
}

// KeyFromURL extracts the object key from a public URL of the form
// "{scheme}://{endpoint}/{bucket}/{key}". The bucket segment must match the
// given bucket name; anything else is an error rather than a guess.
func KeyFromURL(bucket, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse object url: %w", err)
	}

	p := strings.TrimPrefix(u.Path, "/")
	gotBucket, key, found := strings.Cut(p, "/")
	if !found || key == "" {
		return "", fmt.Errorf("object url %q has no key component", rawURL)
	}
	if gotBucket != bucket {
		return "", fmt.Errorf("object url %q does not belong to bucket %q", rawURL, bucket)
	}
	return key, nil
}
