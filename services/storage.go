package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"dispatch_crm_go/config"
	"dispatch_crm_go/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageProvider stores generated documents and archived call exports
type StorageProvider interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*StorageResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // Returns reader, content-type, error
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	PublicURL(key string) string
	Name() string
}

// StorageResult describes a stored object
type StorageResult struct {
	Key      string
	FileName string
	FileSize int64
	MimeType string
	URL      string // Public URL, or empty when the bucket is private
}

// NewStorage picks R2 when fully configured and reachable, else the local upload dir
func NewStorage(cfg *config.Config) StorageProvider {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
		logger.L().Info("Storage ready (local filesystem)", zap.String("path", cfg.UploadDir))
		return NewLocalStorage(cfg.UploadDir)
	}

	r2, err := NewR2Storage(cfg)
	if err != nil {
		logger.L().Warn("R2 storage init failed, falling back to local storage", zap.Error(err))
		return NewLocalStorage(cfg.UploadDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r2.bucket)}); err != nil {
		logger.L().Warn("R2 bucket check failed, falling back to local storage", zap.String("bucket", r2.bucket), zap.Error(err))
		return NewLocalStorage(cfg.UploadDir)
	}

	logger.L().Info("Storage ready (Cloudflare R2)", zap.String("bucket", r2.bucket))
	return r2
}

// R2Storage stores objects in a Cloudflare R2 bucket through the S3 API
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewR2Storage creates an R2 client for the configured account
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	creds := credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
	}, nil
}

// Name implements StorageProvider
func (r *R2Storage) Name() string { return "r2" }

// Put uploads an object
func (r *R2Storage) Put(ctx context.Context, key string, data []byte, contentType string) (*StorageResult, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}

	return &StorageResult{
		Key:      key,
		FileName: path.Base(key),
		FileSize: int64(len(data)),
		MimeType: contentType,
		URL:      r.PublicURL(key),
	}, nil
}

// Get opens an object for reading
func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// Delete removes an object
func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

// SignedURL returns a presigned download link
func (r *R2Storage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return req.URL, nil
}

// PublicURL returns the public link, or "" when the bucket has no public domain
func (r *R2Storage) PublicURL(key string) string {
	if r.publicURL == "" {
		return ""
	}
	return strings.TrimSuffix(r.publicURL, "/") + "/" + key
}

// LocalStorage keeps objects under a directory on disk
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a local storage provider rooted at baseDir
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// Name implements StorageProvider
func (l *LocalStorage) Name() string { return "local" }

// Put writes an object to disk
func (l *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (*StorageResult, error) {
	fullPath := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StorageResult{
		Key:      key,
		FileName: path.Base(key),
		FileSize: int64(len(data)),
		MimeType: contentType,
		URL:      l.PublicURL(key),
	}, nil
}

// Get opens an object, guessing the content type from its extension
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, filepath.FromSlash(key)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return file, contentTypeFor(key), nil
}

// Delete removes an object; missing files are not an error
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SignedURL is the plain path; local files need no signing
func (l *LocalStorage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return l.PublicURL(key), nil
}

// PublicURL returns the path the static file server exposes
func (l *LocalStorage) PublicURL(key string) string {
	return "/" + path.Join(filepath.ToSlash(l.baseDir), key)
}

func contentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return xlsxContentType
	default:
		return "application/octet-stream"
	}
}

// GenerateStorageKey creates a unique key under prefix, keeping the file extension
func GenerateStorageKey(prefix, originalFilename string) string {
	filename := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), path.Ext(originalFilename))
	return path.Join(prefix, filename)
}

// RateConfirmationKey is where a load's rate confirmation PDFs live
func RateConfirmationKey(loadID string) string {
	return GenerateStorageKey(path.Join("loads", loadID, "rate-confirmations"), "rate-confirmation.pdf")
}

// CDRArchiveKey is where raw call-detail exports are archived, grouped by day
func CDRArchiveKey(day time.Time, originalFilename string) string {
	return GenerateStorageKey(path.Join("call-reports", day.UTC().Format("2006-01-02")), originalFilename)
}
