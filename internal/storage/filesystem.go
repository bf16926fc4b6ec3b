package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileStore persists objects on the local filesystem. It is intended for
// development and test environments where an S3-compatible service is not
// available. Signed URLs are minted as HMAC-protected paths served by
// ServeSigned.
type FileStore struct {
	basePath string
	baseURL  string
	secret   []byte
	now      func() time.Time
}

// NewFileStore initializes a FileStore rooted at basePath. baseURL is the
// externally reachable prefix under which ServeSigned is mounted; secret
// protects signed URLs against tampering.
func NewFileStore(basePath, baseURL, secret string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("storage: url secret is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   []byte(secret),
		now:      time.Now,
	}, nil
}

// Put writes the object, refusing to replace an existing file.
func (s *FileStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrObjectExists
		}
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	return nil
}

// Exists checks the object file on disk.
func (s *FileStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return true, nil
}

// Get reads the object bytes. Content type is inferred from the extension.
func (s *FileStore) Get(ctx context.Context, bucket, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrObjectMissing
		}
		return nil, "", fmt.Errorf("storage: read file: %w", err)
	}
	return data, contentTypeFor(key), nil
}

// SignGetURL mints an expiring URL of the form
// {base}/{bucket}/{key}?exp=<unix>&sig=<hmac>.
func (s *FileStore) SignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (*SignedURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(ttl)
	sig := s.signature(bucket, cleanKey, expires.Unix())
	u := fmt.Sprintf("%s/%s/%s?exp=%d&sig=%s", s.baseURL, url.PathEscape(bucket), cleanKey, expires.Unix(), sig)
	return &SignedURL{URL: u, ExpiresAt: expires}, nil
}

// ServeSigned serves a previously signed object path. The bucket and key are
// extracted from the request path by the caller.
func (s *FileStore) ServeSigned(w http.ResponseWriter, r *http.Request, bucket, key string) {
	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		http.Error(w, "invalid key", http.StatusBadRequest)
		return
	}
	if !hmac.Equal([]byte(s.signature(bucket, cleanKey, exp)), []byte(r.URL.Query().Get("sig"))) {
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}
	if s.now().Unix() > exp {
		http.Error(w, "link expired", http.StatusForbidden)
		return
	}
	data, contentType, err := s.Get(r.Context(), bucket, cleanKey)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *FileStore) signature(bucket, key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s/%s:%d", bucket, key, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *FileStore) objectPath(bucket, key string) (string, error) {
	if strings.TrimSpace(bucket) == "" {
		return "", errors.New("storage: bucket is required")
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, bucket, filepath.FromSlash(cleanKey)), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
