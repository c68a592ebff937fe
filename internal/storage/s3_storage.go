package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/lucaanasser/nsr-ecommerce-backend/config"
)

// presigned PUT URLs expire quickly; the client uploads immediately
const presignExpiry = 15 * time.Minute

// ImageFolders are the only destinations accepted for uploads. Product
// photos and variant swatches go to different prefixes in the bucket.
var ImageFolders = map[string]bool{
	"products": true,
	"variants": true,
	"banners":  true,
}

// AllowedImageTypes is the content type allowlist for uploads
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func NewS3Storage(cfg *config.S3Config) *S3Storage {
	var awsCfg aws.Config

	// Static credentials when provided, default chain otherwise
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			loaded = aws.Config{Region: cfg.Region}
		}
		awsCfg = loaded
	}

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// PresignImageUpload returns a presigned PUT URL for an image upload.
// The object key is always generated server side, never taken from the
// client filename.
func (s *S3Storage) PresignImageUpload(ctx context.Context, filename, contentType, folder string) (*PresignedUpload, error) {
	if !AllowedImageTypes[contentType] {
		return nil, fmt.Errorf("tipo de arquivo não permitido: %s", contentType)
	}
	if !ImageFolders[folder] {
		return nil, fmt.Errorf("destino de upload inválido: %s", folder)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedUpload{
		UploadURL: presigned.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
	}, nil
}

// DeleteImage removes an object previously uploaded through a presigned URL
func (s *S3Storage) DeleteImage(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		// CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
