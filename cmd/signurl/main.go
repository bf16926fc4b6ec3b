package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fitroom/internal/infra"
	"fitroom/internal/storage"
)

// signurl mints a signed URL for an existing artifact, using the same
// storage configuration as the API. Useful for support cases where a result
// needs to be re-shared without going through the HTTP surface.
func main() {
	var (
		bucketFlag string
		keyFlag    string
		ttlFlag    time.Duration
	)
	flag.StringVar(&bucketFlag, "bucket", storage.BucketPreviews, "bucket holding the object")
	flag.StringVar(&keyFlag, "key", "", "object key (owner_id/job_id.png)")
	flag.DurationVar(&ttlFlag, "ttl", 24*time.Hour, "validity window for the URL")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		fmt.Fprintln(os.Stderr, "-key is required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	ctx := context.Background()

	var store storage.ObjectStore
	var err error
	switch strings.TrimSpace(os.Getenv("STORAGE_DRIVER")) {
	case infra.StorageDriverLocal:
		store, err = storage.NewFileStore(
			envOr("STORAGE_PATH", "./storage"),
			envOr("STORAGE_BASE_URL", "http://localhost:8080/signed"),
			os.Getenv("STORAGE_URL_SECRET"),
		)
	default:
		store, err = storage.NewS3Store(ctx, storage.S3Options{
			Region:    envOr("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			PathStyle: os.Getenv("S3_PATH_STYLE") == "true",
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		os.Exit(1)
	}

	ok, err := store.Exists(ctx, bucketFlag, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup %s/%s: %v\n", bucketFlag, key, err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "object %s/%s does not exist\n", bucketFlag, key)
		os.Exit(1)
	}

	signed, err := store.SignGetURL(ctx, bucketFlag, key, ttlFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s\nexpires at %s\n", signed.URL, signed.ExpiresAt.Format(time.RFC3339))
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
