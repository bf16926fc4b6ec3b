package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestS3SignGetURLExpiryTracksClock(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")
	t.Setenv("AWS_SESSION_TOKEN", "")

	store, err := NewS3Store(context.Background(), S3Options{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
	})
	if err != nil {
		t.Fatalf("NewS3Store() error: %v", err)
	}
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	signed, err := store.SignGetURL(context.Background(), BucketPreviews, "user-1/job-1.png", 90*time.Second)
	if err != nil {
		t.Fatalf("SignGetURL() error: %v", err)
	}
	if want := fixed.Add(90 * time.Second); !signed.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %s, want %s", signed.ExpiresAt, want)
	}
	if !strings.Contains(signed.URL, "X-Amz-Expires=90") {
		t.Fatalf("expected 90s presign window in url: %s", signed.URL)
	}
	if !strings.Contains(signed.URL, "user-1/job-1.png") {
		t.Fatalf("expected object key in url: %s", signed.URL)
	}
}
