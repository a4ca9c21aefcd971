package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	objectIDPattern   = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	objectNamePattern = regexp.MustCompile(`^[a-z]+/[0-9]{4}/[0-9]{2}/[0-9a-f]{32}\.[a-z0-9]+$`)
)

var (
	imageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "svg"}
	audioExtensions = []string{"mp3", "wav", "ogg", "m4a", "flac"}
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// IsValidID checks if a string is a valid MongoDB ID
func IsValidID(id string) bool {
	return objectIDPattern.MatchString(id)
}

// IsValidFilename rejects path separators and reserved characters.
func IsValidFilename(filename string) bool {
	if filename == "" || len(filename) > 255 {
		return false
	}
	invalid := []string{"\\", "/", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range invalid {
		if strings.Contains(filename, char) {
			return false
		}
	}
	return true
}

// IsValidObjectName accepts only names produced by the media upload path.
func IsValidObjectName(name string) bool {
	return !strings.Contains(name, "..") && objectNamePattern.MatchString(name)
}

func IsAllowedFileType(filename string, allowedExtensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) == 0 {
		return false
	}
	ext = ext[1:]

	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func IsValidImageFile(filename string) bool {
	return IsAllowedFileType(filename, imageExtensions)
}

func IsValidAudioFile(filename string) bool {
	return IsAllowedFileType(filename, audioExtensions)
}

func ContentTypeForExtension(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateFileHeader performs basic validation on file header
func ValidateFileHeader(fileHeader *multipart.FileHeader, maxSize int64) error {
	if fileHeader == nil {
		return errors.New("no file provided")
	}
	if fileHeader.Size == 0 {
		return errors.New("file is empty")
	}
	if fileHeader.Size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	if !IsValidFilename(fileHeader.Filename) {
		return errors.New("invalid filename")
	}
	return nil
}
