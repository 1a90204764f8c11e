// Package filestore archives uploaded report documents to S3 so the original
// file can be re-fetched after analysis. Archival is best-effort: a report
// saves fine without it.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/reportlens/reportlens/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store writes uploaded documents to an S3 bucket.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates a document store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Put archives a document and returns its object key. A disabled store
// returns an empty key and no error.
func (s *Store) Put(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if !s.Enabled() || len(data) == 0 {
		return "", nil
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("users/%s/reports/%d/%02d/%02d/%s-%s",
		userID, now.Year(), now.Month(), now.Day(), uuid.NewString(), sanitizeFilename(filename))

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("filestore: s3 put %s: %w", key, err)
	}

	s.logger.Info("archived report document",
		"user_id", userID,
		"s3_key", key,
		"bytes", len(data),
	)
	return key, nil
}

// Get fetches an archived document by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("filestore: not configured")
	}
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("filestore: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, fmt.Errorf("filestore: read body %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// sanitizeFilename strips path separators and spaces from client filenames.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	name = replacer.Replace(name)
	if name == "" {
		name = "document"
	}
	return name
}
