package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MediaStorage keeps uploaded objects in memory.
type MediaStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
}

func NewMediaStorage() *MediaStorage {
	return &MediaStorage{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

func (m *MediaStorage) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectName] = buf.Bytes()
	m.Types[objectName] = contentType
	return nil
}

func (m *MediaStorage) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[objectName]; !ok {
		return "", fmt.Errorf("object %s does not exist", objectName)
	}
	return fmt.Sprintf("http://media.local/%s?expires=%d", objectName, int(expiry.Seconds())), nil
}

func (m *MediaStorage) Remove(ctx context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectName)
	delete(m.Types, objectName)
	return nil
}
