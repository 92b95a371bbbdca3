package services

import (
  "context"
  "fmt"
  "io"
  "os"
  "strconv"
  "strings"
  "time"

  "cloud.google.com/go/storage"
  goredis "github.com/redis/go-redis/v9"
  "golang.org/x/sync/singleflight"
  "google.golang.org/api/option"

  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
)

// BucketService is the only path to object storage. Binary assets are reached
// either through a time-limited signed URL or the authenticated streaming
// proxy; nothing else hands out bucket access.
type BucketService interface {
  UploadFile(ctx context.Context, key string, contentType string, file io.Reader) error
  DeleteFile(ctx context.Context, key string) error
  DownloadFile(ctx context.Context, key string) (io.ReadCloser, string, error)
  SignedURL(ctx context.Context, key string) (string, error)
  GetPublicURL(key string) string
}

type bucketService struct {
  log           *logger.Logger
  storageClient *storage.Client
  bucketName    string
  cdnDomain     string

  signedTTL time.Duration
  rdb       *goredis.Client
  signGroup singleflight.Group
}

// NewBucketService builds the GCS-backed service. rdb may be nil; the signed
// URL cache is skipped when it is.
func NewBucketService(log *logger.Logger, rdb *goredis.Client) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")
  bucket := os.Getenv("GCS_BUCKET_NAME")
  if bucket == "" {
    return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
  }
  cdnDomain := os.Getenv("CDN_DOMAIN")
  saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
  if saPath == "" {
    serviceLog.Warn("The storage client may rely on other ADC or fail because GOOGLE_APPLICATION_CREDENTIALS_JSON env var missing...")
  }

  signedTTLMin := 15
  if v := os.Getenv("SIGNED_URL_TTL_MINUTES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      signedTTLMin = parsed
    }
  }

  ctx := context.Background()
  var stClient *storage.Client
  var err error
  if saPath != "" {
    stClient, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
  } else {
    stClient, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
  }
  if err != nil {
    return nil, fmt.Errorf("Failed to create storage client: %w", err)
  }

  return &bucketService{
    log:           serviceLog,
    storageClient: stClient,
    bucketName:    bucket,
    cdnDomain:     cdnDomain,
    signedTTL:     time.Duration(signedTTLMin) * time.Minute,
    rdb:           rdb,
  }, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, contentType string, file io.Reader) error {
  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()
  w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  if contentType != "" {
    w.ContentType = contentType
  }
  if _, err := io.Copy(w, file); err != nil {
    _ = w.Close()
    return fmt.Errorf("Failed to write data to GCS: %w", err)
  }
  if err := w.Close(); err != nil {
    return fmt.Errorf("Failed to close GCS writer: %w", err)
  }
  return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()
  o := bs.storageClient.Bucket(bs.bucketName).Object(key)
  if err := o.Delete(ctx); err != nil {
    return fmt.Errorf("Failed to delete GCS object %q: %w", key, err)
  }
  return nil
}

func (bs *bucketService) DownloadFile(ctx context.Context, key string) (io.ReadCloser, string, error) {
  o := bs.storageClient.Bucket(bs.bucketName).Object(key)
  r, err := o.NewReader(ctx)
  if err != nil {
    return nil, "", fmt.Errorf("Failed to open GCS object %q: %w", key, err)
  }
  return r, r.Attrs.ContentType, nil
}

// SignedURL issues a V4 GET URL. Concurrent requests for the same key collapse
// into one signing call, and issued URLs are cached in redis for slightly less
// than their validity so a cached URL is never served expired-adjacent.
func (bs *bucketService) SignedURL(ctx context.Context, key string) (string, error) {
  cacheKey := "signed_url:" + bs.bucketName + ":" + key

  if bs.rdb != nil {
    if cached, err := bs.rdb.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
      return cached, nil
    }
  }

  result, err, _ := bs.signGroup.Do(key, func() (any, error) {
    url, signErr := bs.storageClient.Bucket(bs.bucketName).SignedURL(key, &storage.SignedURLOptions{
      Scheme:  storage.SigningSchemeV4,
      Method:  "GET",
      Expires: time.Now().Add(bs.signedTTL),
    })
    if signErr != nil {
      return "", fmt.Errorf("Failed to sign URL for %q: %w", key, signErr)
    }
    if bs.rdb != nil {
      cacheTTL := bs.signedTTL - time.Minute
      if cacheTTL > 0 {
        if setErr := bs.rdb.Set(ctx, cacheKey, url, cacheTTL).Err(); setErr != nil {
          bs.log.Warn("Failed to cache signed URL", "key", key, "error", setErr)
        }
      }
    }
    return url, nil
  })
  if err != nil {
    return "", err
  }
  return result.(string), nil
}

func (bs *bucketService) GetPublicURL(key string) string {
  if bs.cdnDomain != "" {
    return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key)
  }
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
