package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_archive.txt")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Contains("123") {
		t.Error("fresh archive must not contain anything")
	}

	if err := a.Add("123"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add("456"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !a.Contains("123") || !a.Contains("456") {
		t.Error("added ids must be visible within the session")
	}

	// Reopen: entries persist across sessions.
	b, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !b.Contains("123") || !b.Contains("456") {
		t.Error("added ids must persist across sessions")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestArchiveAddIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.txt")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := a.Add("dup"); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "dup"); got != 1 {
		t.Errorf("archive file contains %d copies, want 1", got)
	}
}

func TestNilArchiveDisabled(t *testing.T) {
	var a *Archive
	if a.Contains("x") {
		t.Error("nil archive must not contain anything")
	}
	if err := a.Add("x"); err != nil {
		t.Errorf("nil archive Add must be a no-op, got %v", err)
	}
	if a.Len() != 0 {
		t.Errorf("nil archive Len() = %d, want 0", a.Len())
	}
}
