package storage

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), "http://localhost:8080/signed", "test-secret")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestFileStorePutRefusesOverwrite(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, BucketPreviews, "u1/job1.png", []byte("first"), "image/png"); err != nil {
		t.Fatalf("first put: %v", err)
	}
	err := s.Put(ctx, BucketPreviews, "u1/job1.png", []byte("second"), "image/png")
	if !errors.Is(err, ErrObjectExists) {
		t.Fatalf("expected ErrObjectExists, got %v", err)
	}

	data, contentType, err := s.Get(ctx, BucketPreviews, "u1/job1.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "first" {
		t.Fatalf("original object was overwritten: %q", data)
	}
	if contentType != "image/png" {
		t.Fatalf("unexpected content type %q", contentType)
	}
}

func TestFileStoreExists(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, BucketPreviews, "u1/missing.png")
	if err != nil || ok {
		t.Fatalf("expected missing, got ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, BucketPreviews, "u1/present.png", []byte("x"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err = s.Exists(ctx, BucketPreviews, "u1/present.png")
	if err != nil || !ok {
		t.Fatalf("expected present, got ok=%v err=%v", ok, err)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s := newTestFileStore(t)
	if _, _, err := s.Get(context.Background(), BucketPreviews, "u1/nope.png"); !errors.Is(err, ErrObjectMissing) {
		t.Fatalf("expected ErrObjectMissing, got %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s := newTestFileStore(t)
	if err := s.Put(context.Background(), BucketPreviews, "../escape.png", []byte("x"), "image/png"); err == nil {
		t.Fatal("expected traversal rejection")
	}
}

func TestFileStoreSignedURLRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Put(ctx, BucketPreviews, "u1/job1.png", []byte("pixels"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	signed, err := s.SignGetURL(ctx, BucketPreviews, "u1/job1.png", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if want := fixed.Add(time.Hour); !signed.ExpiresAt.Equal(want) {
		t.Fatalf("expiry = %s, want %s", signed.ExpiresAt, want)
	}

	u, err := url.Parse(signed.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", u.String(), nil)
	rest := strings.TrimPrefix(u.Path, "/signed/")
	bucket, key, _ := strings.Cut(rest, "/")
	s.ServeSigned(rec, req, bucket, key)

	if rec.Code != 200 {
		t.Fatalf("serve status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "pixels" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestFileStoreServeSignedRejectsTamperedAndExpired(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Put(ctx, BucketPreviews, "u1/job1.png", []byte("pixels"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	signed, err := s.SignGetURL(ctx, BucketPreviews, "u1/job1.png", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	u, _ := url.Parse(signed.URL)

	// Tampered signature.
	q := u.Query()
	q.Set("sig", "bogus")
	tampered := *u
	tampered.RawQuery = q.Encode()
	rec := httptest.NewRecorder()
	s.ServeSigned(rec, httptest.NewRequest("GET", tampered.String(), nil), BucketPreviews, "u1/job1.png")
	if rec.Code != 403 {
		t.Fatalf("tampered signature status = %d", rec.Code)
	}

	// Expired link.
	s.now = func() time.Time { return fixed.Add(2 * time.Minute) }
	rec = httptest.NewRecorder()
	s.ServeSigned(rec, httptest.NewRequest("GET", u.String(), nil), BucketPreviews, "u1/job1.png")
	if rec.Code != 403 {
		t.Fatalf("expired link status = %d", rec.Code)
	}
}
