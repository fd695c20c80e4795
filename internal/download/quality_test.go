package download

import (
	"testing"

	"qbz/internal/model"
	"qbz/internal/qobuz"
)

func TestNegotiate(t *testing.T) {
	restricted := &qobuz.FileURL{
		Restrictions: []qobuz.Restriction{{Code: downgradeCode}},
	}
	clean := &qobuz.FileURL{}

	tests := []struct {
		name       string
		quality    model.Quality
		fu         *qobuz.FileURL
		wantFormat string
		wantMet    bool
	}{
		{"mp3 is always met", model.QualityMP3, clean, "MP3", true},
		{"mp3 met even when restricted", model.QualityMP3, restricted, "MP3", true},
		{"cd quality served", model.QualityCD, clean, "FLAC", true},
		{"cd quality downgraded", model.QualityCD, restricted, "FLAC", false},
		{"hi-res downgraded", model.QualityHiRes192, restricted, "FLAC", false},
		{"other restriction codes ignored", model.QualityCD,
			&qobuz.FileURL{Restrictions: []qobuz.Restriction{{Code: "TrackRestrictedByPurchaseCredentials"}}},
			"FLAC", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, met := Negotiate(tt.quality, tt.fu)
			if format != tt.wantFormat || met != tt.wantMet {
				t.Errorf("Negotiate() = (%q, %v), want (%q, %v)",
					format, met, tt.wantFormat, tt.wantMet)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := humanSize(tt.n); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
