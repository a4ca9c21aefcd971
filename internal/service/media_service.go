package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/pkg/utils"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

func (k MediaKind) label() string {
	switch k {
	case MediaImage, MediaAudio:
		return string(k)
	}
	return metrics.UnknownLabel
}

type MediaService struct {
	storage MediaStorage
	cfg     config.MinIOConfig
	now     func() time.Time
}

func NewMediaService(storage MediaStorage, cfg config.MinIOConfig) *MediaService {
	return &MediaService{storage: storage, cfg: cfg, now: time.Now}
}

// Upload stores a question image or audio clip and returns its object reference.
func (s *MediaService) Upload(ctx context.Context, kind MediaKind, fileHeader *multipart.FileHeader) (*models.MediaObject, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("media storage is not configured")
	}
	if err := s.checkFile(kind, fileHeader); err != nil {
		metrics.MediaUploads.WithLabelValues(kind.label(), "invalid").Inc()
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectName := fmt.Sprintf("%s/%s/%s%s", kind, s.now().UTC().Format("2006/01"), hex.EncodeToString(hash.Sum(nil)), ext)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = utils.ContentTypeForExtension(ext)
	}

	if err := s.storage.Upload(ctx, objectName, file, fileHeader.Size, contentType); err != nil {
		metrics.MediaUploads.WithLabelValues(kind.label(), "error").Inc()
		return nil, persistenceError("upload media", err)
	}
	metrics.MediaUploads.WithLabelValues(kind.label(), "success").Inc()

	url, err := s.storage.PresignedURL(ctx, objectName, s.cfg.PresignExpiry)
	if err != nil {
		log.Printf("Warning: Failed to presign %s: %v", objectName, err)
	}
	return &models.MediaObject{
		ObjectName:  objectName,
		URL:         url,
		ContentType: contentType,
		Size:        fileHeader.Size,
	}, nil
}

func (s *MediaService) URL(ctx context.Context, objectName string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("media storage is not configured")
	}
	if !utils.IsValidObjectName(objectName) {
		return "", newValidationError("objectName", "is invalid")
	}
	url, err := s.storage.PresignedURL(ctx, objectName, s.cfg.PresignExpiry)
	if err != nil {
		return "", persistenceError("presign media", err)
	}
	return url, nil
}

func (s *MediaService) Delete(ctx context.Context, objectName string) error {
	if s.storage == nil {
		return fmt.Errorf("media storage is not configured")
	}
	if !utils.IsValidObjectName(objectName) {
		return newValidationError("objectName", "is invalid")
	}
	if err := s.storage.Remove(ctx, objectName); err != nil {
		return persistenceError("delete media", err)
	}
	return nil
}

func (s *MediaService) checkFile(kind MediaKind, fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return newValidationError("file", "is required")
	}
	switch kind {
	case MediaImage:
		if !utils.IsValidImageFile(fileHeader.Filename) {
			return newValidationError("file", "unsupported image type")
		}
		if err := utils.ValidateFileHeader(fileHeader, s.cfg.MaxImageSize); err != nil {
			return newValidationError("file", "%s", err.Error())
		}
	case MediaAudio:
		if !utils.IsValidAudioFile(fileHeader.Filename) {
			return newValidationError("file", "unsupported audio type")
		}
		if err := utils.ValidateFileHeader(fileHeader, s.cfg.MaxAudioSize); err != nil {
			return newValidationError("file", "%s", err.Error())
		}
	default:
		return newValidationError("kind", "must be image or audio")
	}
	return nil
}
