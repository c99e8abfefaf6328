package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sparkmatch/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	awscreds "github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores profile photos in MinIO when an endpoint is
// configured, otherwise in S3.
type StorageService struct {
	cfg         *config.Config
	s3Client    *s3.S3
	minioClient *minio.Client
	useMinIO    bool
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	service := &StorageService{cfg: cfg}

	if cfg.MinIOEndpoint != "" {
		service.useMinIO = true
		minioClient, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create MinIO client: %w", err)
		}
		service.minioClient = minioClient
		return service, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: awscreds.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	service.s3Client = s3.New(sess)
	return service, nil
}

// UploadPhoto stores the file under a unique key and returns its public URL.
func (s *StorageService) UploadPhoto(ctx context.Context, userID uint, file io.Reader, originalName, contentType string) (string, error) {
	ext := filepath.Ext(originalName)
	key := fmt.Sprintf("user_photos/%d_%s%s", userID, uuid.New().String(), ext)

	if s.useMinIO {
		return s.uploadToMinIO(ctx, file, key, contentType)
	}
	return s.uploadToS3(file, key, contentType)
}

func (s *StorageService) DeletePhoto(ctx context.Context, url string) error {
	key := s.extractKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("invalid photo URL")
	}

	if s.useMinIO {
		return s.minioClient.RemoveObject(ctx, s.cfg.S3Bucket, key, minio.RemoveObjectOptions{})
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *StorageService) uploadToMinIO(ctx context.Context, file io.Reader, key, contentType string) (string, error) {
	_, err := s.minioClient.PutObject(ctx, s.cfg.S3Bucket, key, file, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	protocol := "http"
	if s.cfg.MinIOUseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.cfg.MinIOEndpoint, s.cfg.S3Bucket, key), nil
}

func (s *StorageService) uploadToS3(file io.Reader, key, contentType string) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.S3Bucket, s.cfg.AWSRegion, key), nil
}

// EnsureBucket creates the photo bucket if it does not exist yet.
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	if s.useMinIO {
		exists, err := s.minioClient.BucketExists(ctx, s.cfg.S3Bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket existence: %w", err)
		}
		if !exists {
			if err := s.minioClient.MakeBucket(ctx, s.cfg.S3Bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create MinIO bucket: %w", err)
			}
		}
		return nil
	}

	_, err := s.s3Client.CreateBucket(&s3.CreateBucketInput{
		Bucket: aws.String(s.cfg.S3Bucket),
	})
	if err != nil && !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("failed to create S3 bucket: %w", err)
	}
	return nil
}

func (s *StorageService) extractKeyFromURL(url string) string {
	if strings.Contains(url, "amazonaws.com") || strings.Contains(url, s.cfg.MinIOEndpoint) {
		parts := strings.SplitN(url, "/", 4)
		if len(parts) == 4 {
			if s.useMinIO {
				// MinIO URLs carry the bucket as the first path segment.
				if idx := strings.Index(parts[3], "/"); idx >= 0 {
					return parts[3][idx+1:]
				}
				return ""
			}
			return parts[3]
		}
	}
	return ""
}
