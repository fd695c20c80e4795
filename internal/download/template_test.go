package download

import (
	"strings"
	"testing"

	"qbz/internal/qobuz"
)

func TestRenderTemplateConditionals(t *testing.T) {
	const tmpl = "%{?is_multidisc,Disc {media_number}/|}{tracknumber} - {tracktitle}"

	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{
			name: "single disc",
			vars: map[string]string{
				"is_multidisc": "0", "media_number": "02",
				"tracknumber": "03", "tracktitle": "Song",
			},
			want: "03 - Song",
		},
		{
			name: "multi disc",
			vars: map[string]string{
				"is_multidisc": "1", "media_number": "02",
				"tracknumber": "03", "tracktitle": "Song",
			},
			want: "Disc 02/03 - Song",
		},
		{
			name: "empty flag is false",
			vars: map[string]string{
				"is_multidisc": "", "media_number": "02",
				"tracknumber": "03", "tracktitle": "Song",
			},
			want: "03 - Song",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tmpl, tt.vars)
			if err != nil {
				t.Fatalf("RenderTemplate: %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplateUnknownPlaceholder(t *testing.T) {
	_, err := RenderTemplate("{artist}/{composer_lastname}", map[string]string{"artist": "X"})
	if err == nil {
		t.Fatal("unknown placeholder must be rejected")
	}
	if !strings.Contains(err.Error(), "composer_lastname") {
		t.Errorf("error %q does not name the offending placeholder", err)
	}
}

func TestRenderTemplateDefault(t *testing.T) {
	track := &qobuz.Track{
		Title:       "Hells Bells",
		TrackNumber: 1,
		MediaNumber: 1,
		Performer:   &qobuz.Name{Name: "AC/DC"},
	}
	release := &qobuz.Album{
		Title:               "Back In Black",
		Artist:              &qobuz.Artist{Name: "AC/DC"},
		MediaCount:          1,
		ReleaseDateOriginal: "1980-07-25",
	}
	fu := &qobuz.FileURL{BitDepth: 16, SamplingRate: 44.1}

	got, err := RenderTemplate(DefaultTemplate, trackVars(track, release, fu))
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	want := "AC/DC/Back In Black (1980)/01 - Hells Bells.flac"
	if got != want {
		t.Errorf("RenderTemplate() = %q, want %q", got, want)
	}
}

func TestTrackVarsMetadataFields(t *testing.T) {
	track := &qobuz.Track{
		Title:       "Allegro",
		Version:     "Live",
		Work:        "Symphony No. 5",
		ISRC:        "DEF056730101",
		TrackNumber: 1,
		MediaNumber: 1,
		Performer:   &qobuz.Name{Name: "Orchestra"},
		Composer:    &qobuz.Name{Name: "Beethoven"},
	}
	release := &qobuz.Album{
		Title:               "Symphonies",
		ReleaseType:         "album",
		Artist:              &qobuz.Artist{Name: "Orchestra"},
		MediaCount:          2,
		ReleaseDateOriginal: "1963-03-01",
		Label:               &qobuz.Name{Name: "Deutsche Grammophon"},
		Genre:               &qobuz.Name{Name: "Classical"},
		UPC:                 "028947771618",
		Copyright:           "(C) 1963",
	}
	fu := &qobuz.FileURL{BitDepth: 24, SamplingRate: 96}

	vars := trackVars(track, release, fu)
	want := map[string]string{
		"genre":        "Classical",
		"label":        "Deutsche Grammophon",
		"composer":     "Beethoven",
		"work":         "Symphony No. 5",
		"isrc":         "DEF056730101",
		"upc":          "028947771618",
		"version":      "Live",
		"copyright":    "(C) 1963",
		"release_date": "1963-03-01",
		"release_type": "album",
		"media_count":  "2",
	}
	for name, value := range want {
		if vars[name] != value {
			t.Errorf("vars[%q] = %q, want %q", name, vars[name], value)
		}
	}

	got, err := RenderTemplate("{genre}/{label}/{composer} - {work}", vars)
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	if want := "Classical/Deutsche Grammophon/Beethoven - Symphony No. 5"; got != want {
		t.Errorf("RenderTemplate() = %q, want %q", got, want)
	}
}

func TestTrackVarsAbsentMetadata(t *testing.T) {
	track := &qobuz.Track{Title: "Song", TrackNumber: 1, MediaNumber: 1}
	release := &qobuz.Album{
		Title:      "Single",
		Artist:     &qobuz.Artist{Name: "Artist"},
		MediaCount: 1,
	}
	vars := trackVars(track, release, &qobuz.FileURL{BitDepth: 16, SamplingRate: 44.1})

	got, err := RenderTemplate("{genre}{label}{composer}{isrc}{upc}", vars)
	if err != nil {
		t.Fatalf("missing metadata must render empty, not fail: %v", err)
	}
	if got != "" {
		t.Errorf("RenderTemplate() = %q, want empty", got)
	}
}

func TestRenderTemplateMultiDisc(t *testing.T) {
	track := &qobuz.Track{
		Title:       "Intro",
		TrackNumber: 1,
		MediaNumber: 2,
	}
	release := &qobuz.Album{
		Title:               "Live Set",
		Artist:              &qobuz.Artist{Name: "Band"},
		MediaCount:          2,
		ReleaseDateOriginal: "2019-05-01",
	}
	fu := &qobuz.FileURL{} // MP3 stream

	got, err := RenderTemplate(DefaultTemplate, trackVars(track, release, fu))
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	want := "Band/Live Set (2019)/Disc 02/01 - Intro.mp3"
	if got != want {
		t.Errorf("RenderTemplate() = %q, want %q", got, want)
	}
}
