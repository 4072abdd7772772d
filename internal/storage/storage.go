// Package storage uploads submission media to an S3 compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"missionhub/pkg/config"
	"missionhub/pkg/media"
	"missionhub/pkg/models"
)

// MediaStore writes uploads under <user id>/<unix millis>-<random>.<ext>
type MediaStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
	maxBytes   int64
	now        func() time.Time
}

// New connects to the configured endpoint and creates the bucket when missing.
// It returns (nil, nil) when no endpoint is configured.
func New(ctx context.Context, cfg config.StorageConfig, maxBytes int64) (*MediaStore, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MediaStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: base,
		maxBytes:   maxBytes,
		now:        time.Now,
	}, nil
}

// Upload stores one file and returns its public URL. Only images and videos
// are accepted; the type is sniffed from content, not trusted from the name.
func (s *MediaStore) Upload(ctx context.Context, userID string, up models.Upload) (string, error) {
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", models.ErrMediaRejected, up.Filename, s.maxBytes)
	}

	f, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	mt, err := Sniff(f)
	if err != nil {
		return "", err
	}
	if !Accepted(mt) {
		return "", fmt.Errorf("%w: %s is %s", models.ErrMediaRejected, up.Filename, mt.String())
	}

	key := ObjectKey(userID, up.Filename, mt, s.now())
	_, err = s.client.PutObject(ctx, s.bucket, key, f, up.Size, minio.PutObjectOptions{
		ContentType: mt.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}

	return s.publicBase + "/" + key, nil
}

// Sniff detects the content type and rewinds r
func Sniff(r io.ReadSeeker) (*mimetype.MIME, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}
	return mt, nil
}

// Accepted reports whether mt is an image or video type
func Accepted(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") || strings.HasPrefix(m.String(), "video/") {
			return true
		}
	}
	return false
}

// ObjectKey builds the storage path for an upload. The filename extension
// wins when it is a known media extension; otherwise the sniffed one is used.
func ObjectKey(userID, filename string, mt *mimetype.MIME, at time.Time) string {
	ext := ""
	if strings.Contains(filename, ".") && media.Classify(filename) != media.KindUnknown {
		ext = media.Extension(filename)
	} else if mt != nil {
		ext = strings.TrimPrefix(mt.Extension(), ".")
	}
	name := fmt.Sprintf("%d-%s", at.UnixMilli(), uuid.NewString()[:8])
	if ext != "" {
		name += "." + ext
	}
	return userID + "/" + name
}
