package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStore keeps question media in a single bucket.
type MediaStore struct {
	client *minio.Client
	bucket string
}

func NewMediaStore(cfg *config.MinIOConfig) (*MediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MediaBucket)
	if err != nil {
		return nil, fmt.Errorf("error checking if bucket %s exists: %w", cfg.MediaBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MediaBucket, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", cfg.MediaBucket, err)
		}
		log.Printf("Created bucket: %s", cfg.MediaBucket)
	}

	log.Println("Successfully initialized MinIO client")
	return &MediaStore{client: client, bucket: cfg.MediaBucket}, nil
}

func (m *MediaStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("Error uploading file to MinIO: %v", err)
		return err
	}
	return nil
}

func (m *MediaStore) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if strings.Contains(objectName, "..") {
		return "", errors.New("invalid object name")
	}
	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (m *MediaStore) Remove(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		log.Printf("Error deleting file from MinIO: %v", err)
		return err
	}
	return nil
}
