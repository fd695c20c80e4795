package model

import (
	"sync"
	"testing"
)

func TestQualityValid(t *testing.T) {
	tests := []struct {
		q    Quality
		want bool
	}{
		{QualityMP3, true},
		{QualityCD, true},
		{QualityHiRes, true},
		{QualityHiRes192, true},
		{Quality(0), false},
		{Quality(1), false},
		{Quality(8), false},
		{Quality(96), false},
	}

	for _, tt := range tests {
		if got := tt.q.Valid(); got != tt.want {
			t.Errorf("Quality(%d).Valid() = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestQualityExt(t *testing.T) {
	if got := QualityMP3.Ext(); got != "mp3" {
		t.Errorf("QualityMP3.Ext() = %q, want %q", got, "mp3")
	}
	for _, q := range []Quality{QualityCD, QualityHiRes, QualityHiRes192} {
		if got := q.Ext(); got != "flac" {
			t.Errorf("Quality(%d).Ext() = %q, want %q", q, got, "flac")
		}
	}
}

func TestContentTypeString(t *testing.T) {
	tests := []struct {
		t    ContentType
		want string
	}{
		{ContentAlbum, "album"},
		{ContentTrack, "track"},
		{ContentArtist, "artist"},
		{ContentLabel, "label"},
		{ContentPlaylist, "playlist"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestContentTypeIsCollection(t *testing.T) {
	if ContentAlbum.IsCollection() || ContentTrack.IsCollection() {
		t.Error("album/track must not be collections")
	}
	if !ContentArtist.IsCollection() || !ContentLabel.IsCollection() || !ContentPlaylist.IsCollection() {
		t.Error("artist/label/playlist must be collections")
	}
}

func TestSessionStatsConcurrent(t *testing.T) {
	stats := NewSessionStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.AddDownloaded()
			stats.AddBytes(10)
			stats.MarkProcessed("Same Album")
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	if snap.Downloaded != 50 {
		t.Errorf("Downloaded = %d, want 50", snap.Downloaded)
	}
	if snap.Bytes != 500 {
		t.Errorf("Bytes = %d, want 500", snap.Bytes)
	}
	if snap.Processed != 1 {
		t.Errorf("Processed = %d, want 1", snap.Processed)
	}
	if snap.TotalHandled() != 50 {
		t.Errorf("TotalHandled() = %d, want 50", snap.TotalHandled())
	}
}
