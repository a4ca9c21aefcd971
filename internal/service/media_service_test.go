package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	return form.File["file"][0]
}

func testMediaConfig() config.MinIOConfig {
	return config.MinIOConfig{
		MaxImageSize:  16,
		MaxAudioSize:  64,
		PresignExpiry: time.Minute,
	}
}

func TestMediaUpload(t *testing.T) {
	storage := testutil.NewMediaStorage()
	svc := NewMediaService(storage, testMediaConfig())
	svc.now = func() time.Time { return time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC) }

	object, err := svc.Upload(context.Background(), MediaImage, fileHeader(t, "Diagram.PNG", []byte("png-bytes")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(object.ObjectName, "image/2025/04/") || !strings.HasSuffix(object.ObjectName, ".png") {
		t.Errorf("Unexpected object name %s", object.ObjectName)
	}
	if string(storage.Objects[object.ObjectName]) != "png-bytes" {
		t.Error("Expected the full file to be stored")
	}
	if object.URL == "" || object.Size != int64(len("png-bytes")) {
		t.Errorf("Unexpected object %+v", object)
	}

	again, err := svc.Upload(context.Background(), MediaImage, fileHeader(t, "copy.png", []byte("png-bytes")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ObjectName != object.ObjectName {
		t.Error("Expected identical content to map to the same object")
	}

	if _, err := svc.URL(context.Background(), object.ObjectName); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), object.ObjectName); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, ok := storage.Objects[object.ObjectName]; ok {
		t.Error("Expected object to be removed")
	}
}

func TestMediaUploadRejects(t *testing.T) {
	svc := NewMediaService(testutil.NewMediaStorage(), testMediaConfig())

	testCases := []struct {
		name     string
		kind     MediaKind
		filename string
		content  []byte
		field    string
	}{
		{"audio as image", MediaImage, "clip.mp3", []byte("x"), "file"},
		{"image as audio", MediaAudio, "pic.png", []byte("x"), "file"},
		{"too large", MediaImage, "big.png", bytes.Repeat([]byte("x"), 17), "file"},
		{"empty", MediaAudio, "silence.wav", []byte{}, "file"},
		{"unknown kind", MediaKind("video"), "movie.mp4", []byte("x"), "kind"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tc.kind, fileHeader(t, tc.filename, tc.content))
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
				t.Errorf("Expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestMediaObjectNames(t *testing.T) {
	svc := NewMediaService(testutil.NewMediaStorage(), testMediaConfig())
	var validationErr *ValidationError
	for _, name := range []string{"../etc/passwd", "image/2025/04/abc.png", ""} {
		if _, err := svc.URL(context.Background(), name); !errors.As(err, &validationErr) {
			t.Errorf("%q: expected ValidationError, got %v", name, err)
		}
	}

	unconfigured := NewMediaService(nil, testMediaConfig())
	if err := unconfigured.Delete(context.Background(), "image/2025/04/0123456789abcdef0123456789abcdef.png"); err == nil {
		t.Error("Expected error without storage")
	}
}

func TestMediaKindLabel(t *testing.T) {
	svc := NewMediaService(testutil.NewMediaStorage(), testMediaConfig())
	unknown := metrics.MediaUploads.WithLabelValues(metrics.UnknownLabel, "invalid")
	before := promtest.ToFloat64(unknown)

	for _, kind := range []MediaKind{"video", "../../etc", "pdf"} {
		if kind.label() != metrics.UnknownLabel {
			t.Errorf("Expected %q to map to %s", kind, metrics.UnknownLabel)
		}
		if _, err := svc.Upload(context.Background(), kind, fileHeader(t, "clip.mp4", []byte("x"))); err == nil {
			t.Errorf("Expected kind %q to be rejected", kind)
		}
	}
	if got := promtest.ToFloat64(unknown) - before; got != 3 {
		t.Errorf("Expected 3 uploads counted under %s, got %v", metrics.UnknownLabel, got)
	}
	if MediaImage.label() != "image" || MediaAudio.label() != "audio" {
		t.Error("Expected known kinds to keep their label")
	}
}
