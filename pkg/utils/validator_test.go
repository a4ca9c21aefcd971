package utils

import (
	"mime/multipart"
	"testing"
)

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"507F1F77BCF86CD799439011", true},
		{"507f1f77bcf86cd79943901", false},
		{"zzzf1f77bcf86cd799439011", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidID(tt.id); got != tt.want {
			t.Errorf("IsValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestMediaFileTypes(t *testing.T) {
	if !IsValidImageFile("diagram.PNG") {
		t.Error("expected uppercase png to be accepted")
	}
	if IsValidImageFile("clip.mp3") {
		t.Error("expected mp3 to be rejected as image")
	}
	if !IsValidAudioFile("listening-1.mp3") {
		t.Error("expected mp3 to be accepted as audio")
	}
	if IsValidAudioFile("noextension") {
		t.Error("expected file without extension to be rejected")
	}
}

func TestIsValidObjectName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"image/2026/10/0123456789abcdef0123456789abcdef.png", true},
		{"audio/2026/01/0123456789abcdef0123456789abcdef.mp3", true},
		{"image/../secrets.txt", false},
		{"image/2026/10/not-a-hash.png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidObjectName(tt.name); got != tt.want {
			t.Errorf("IsValidObjectName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidateFileHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  *multipart.FileHeader
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", &multipart.FileHeader{Filename: "a.png", Size: 0}, true},
		{"too large", &multipart.FileHeader{Filename: "a.png", Size: 11}, true},
		{"bad name", &multipart.FileHeader{Filename: "a/b.png", Size: 5}, true},
		{"ok", &multipart.FileHeader{Filename: "a.png", Size: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileHeader(tt.header, 10)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContentTypeForExtension(t *testing.T) {
	if got := ContentTypeForExtension(".MP3"); got != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", got)
	}
	if got := ContentTypeForExtension(".exe"); got != "application/octet-stream" {
		t.Errorf("expected octet-stream fallback, got %s", got)
	}
}
