package fsutil

import (
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file.flac", "normal-file.flac"},
		{"file:with:colons.flac", "file_with_colons.flac"},
		{"file<with>brackets.flac", "file_with_brackets.flac"},
		{"file/with\\slashes.flac", "file_with_slashes.flac"},
		{"file|with|pipes.flac", "file_with_pipes.flac"},
		{"file?with*wildcards.flac", "file_with_wildcards.flac"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilePath(t *testing.T) {
	in := filepath.Join("AC_DC", "Back in Black (2003: Remaster)", "01 - Hells Bells.flac")
	want := filepath.Join("AC_DC", "Back in Black (2003_ Remaster)", "01 - Hells Bells.flac")
	if got := SanitizeFilePath(in); got != want {
		t.Errorf("SanitizeFilePath(%q) = %q, want %q", in, got, want)
	}
}
