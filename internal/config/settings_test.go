package config

import (
	"os"
	"path/filepath"
	"testing"

	"qbz/internal/model"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Quality != int(model.QualityCD) {
		t.Errorf("default quality = %d, want %d", s.Quality, model.QualityCD)
	}
	if s.MaxWorkers != 3 {
		t.Errorf("default max_workers = %d, want 3", s.MaxWorkers)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
quality = 27
token = "abc123"
secrets = ["s1", "s2"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Quality != 27 || s.Token != "abc123" {
		t.Errorf("configured values not applied: %+v", s)
	}
	if len(s.Secrets) != 2 || s.Secrets[0] != "s1" {
		t.Errorf("secrets = %v, want [s1 s2] in order", s.Secrets)
	}
	if s.MaxWorkers != 3 {
		t.Errorf("max_workers = %d, unset keys must keep defaults", s.MaxWorkers)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	s := DefaultSettings()
	s.Email = "user@example.com"
	s.Quality = 7
	s.SmartDiscography = true
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600 (holds credentials)", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Email != s.Email || loaded.Quality != s.Quality || !loaded.SmartDiscography {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("quality = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config must be rejected, not silently defaulted")
	}
}

func TestDownloadConfigMapping(t *testing.T) {
	s := DefaultSettings()
	s.Quality = 6
	s.MaxWorkers = 5
	s.QualityFallback = true
	s.OGCover = true

	cfg := s.DownloadConfig()
	if cfg.Quality != model.QualityCD || cfg.MaxWorkers != 5 || !cfg.QualityFallback || !cfg.OGCover {
		t.Errorf("mapping lost values: %+v", cfg)
	}
}
