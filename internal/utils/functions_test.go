package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"video.mp4", "video.mp4"},
		{"My Movie (2024).mp4", "My_Movie_2024.mp4"},
		{"a/b\\c:d*e?.mkv", "abcde.mkv"},
		{"keep-this_name.webm", "keep-this_name.webm"},
		{"///", "media"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenewOutputPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	renewed := RenewOutputPath(path)
	if renewed != filepath.Join(dir, "video-(1).mp4") {
		t.Errorf("renewed = %q", renewed)
	}
	if err := os.WriteFile(renewed, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if again := RenewOutputPath(path); again != filepath.Join(dir, "video-(2).mp4") {
		t.Errorf("second renewal = %q", again)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{10 * 1024 * 1024, "10.00 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRandomStringLengthAndCharset(t *testing.T) {
	s := RandomString(12)
	if len(s) != 12 {
		t.Fatalf("len = %d", len(s))
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			t.Errorf("unexpected character %q", r)
		}
	}
}
