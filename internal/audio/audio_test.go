package audio

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2"

	"qbz/internal/model"
	"qbz/internal/qobuz"
)

func testRelease() *qobuz.Album {
	return &qobuz.Album{
		ID:                  "0886443927087",
		Title:               "Back In Black",
		Artist:              &qobuz.Artist{Name: "AC/DC"},
		TracksCount:         10,
		MediaCount:          1,
		ReleaseDateOriginal: "1980-07-25",
		Genre:               &qobuz.Name{Name: "Rock"},
		Label:               &qobuz.Name{Name: "Columbia"},
		UPC:                 "0886443927087",
		Copyright:           "(P) 1980 Leidseplein Presse B.V. (C) 1980",
	}
}

func testTrack() *qobuz.Track {
	return &qobuz.Track{
		ID:          52669290,
		Title:       "Hells Bells",
		ISRC:        "AUAP08000046",
		TrackNumber: 1,
		MediaNumber: 1,
		Duration:    312,
		Performer:   &qobuz.Name{Name: "AC/DC"},
	}
}

func TestForQuality(t *testing.T) {
	if _, ok := ForQuality(model.QualityMP3, true).(*ID3Tagger); !ok {
		t.Error("MP3 tier must get the ID3 tagger")
	}
	for _, q := range []model.Quality{model.QualityCD, model.QualityHiRes, model.QualityHiRes192} {
		if _, ok := ForQuality(q, true).(PassthroughTagger); !ok {
			t.Errorf("quality %d must pass through untouched", q)
		}
	}
}

func TestID3TaggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "52669290.mp3")
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}

	tagger := &ID3Tagger{}
	if err := tagger.Tag(path, testTrack(), testRelease()); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	checks := map[string]string{
		"title":        tag.Title(),
		"album":        tag.Album(),
		"artist":       tag.Artist(),
		"album artist": tag.GetTextFrame("TPE2").Text,
		"track":        tag.GetTextFrame("TRCK").Text,
		"disc":         tag.GetTextFrame("TPOS").Text,
		"year":         tag.GetTextFrame("TYER").Text,
		"isrc":         tag.GetTextFrame("TSRC").Text,
		"label":        tag.GetTextFrame("TPUB").Text,
	}
	want := map[string]string{
		"title":        "Hells Bells",
		"album":        "Back In Black",
		"artist":       "AC/DC",
		"album artist": "AC/DC",
		"track":        "1/10",
		"disc":         "1/1",
		"year":         "1980",
		"isrc":         "AUAP08000046",
		"label":        "Columbia",
	}
	for name, got := range checks {
		if got != want[name] {
			t.Errorf("%s = %q, want %q", name, got, want[name])
		}
	}

	if cop := tag.GetTextFrame("TCOP").Text; !strings.Contains(cop, "℗") || !strings.Contains(cop, "©") {
		t.Errorf("copyright symbols not rewritten: %q", cop)
	}
}

func TestID3TaggerUsesTrackAlbumForSingles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.mp3")
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}

	track := testTrack()
	track.Album = testRelease()

	tagger := &ID3Tagger{}
	if err := tagger.Tag(path, track, nil); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()
	if tag.Album() != "Back In Black" {
		t.Errorf("album = %q, want from embedded track album", tag.Album())
	}
}

func TestID3TaggerEmbedsCover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "52669290.mp3")
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}

	var art bytes.Buffer
	if err := jpeg.Encode(&art, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), art.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := &ID3Tagger{EmbedArt: true}
	if err := tagger.Tag(path, testTrack(), testRelease()); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()
	if frames := tag.GetFrames(tag.CommonID("Attached picture")); len(frames) != 1 {
		t.Errorf("got %d picture frames, want 1", len(frames))
	}
}

func TestComposedTitle(t *testing.T) {
	tests := []struct {
		name  string
		track *qobuz.Track
		want  string
	}{
		{
			name:  "plain",
			track: &qobuz.Track{Title: "Hells Bells"},
			want:  "Hells Bells",
		},
		{
			name:  "with version",
			track: &qobuz.Track{Title: "Hells Bells", Version: "Live"},
			want:  "Hells Bells (Live)",
		},
		{
			name:  "classical work prefix",
			track: &qobuz.Track{Title: "II. Allegro", Work: "Symphony No. 5"},
			want:  "Symphony No. 5: II. Allegro",
		},
		{
			name:  "work already in title",
			track: &qobuz.Track{Title: "Symphony No. 5: II. Allegro", Work: "Symphony No. 5"},
			want:  "Symphony No. 5: II. Allegro",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composedTitle(tt.track); got != tt.want {
				t.Errorf("composedTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteM3U(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Morning Coffee.m3u")
	entries := []PlaylistEntry{
		{Path: "02 - Second.mp3", Artist: "B", Title: "Second", Duration: 200},
		{Path: "01 - First.mp3", Artist: "A", Title: "First", Duration: 100},
	}

	if err := WriteM3U(path, entries); err != nil {
		t.Fatalf("WriteM3U: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if !strings.HasPrefix(got, "#EXTM3U\n") {
		t.Error("playlist must start with #EXTM3U")
	}
	if !strings.Contains(got, "#EXTINF:100,A - First\n01 - First.mp3\n") {
		t.Errorf("missing extended entry:\n%s", got)
	}
	if strings.Index(got, "01 - First.mp3") > strings.Index(got, "02 - Second.mp3") {
		t.Error("entries must be sorted by path")
	}
}

func TestResizeJPEG(t *testing.T) {
	var src bytes.Buffer
	if err := jpeg.Encode(&src, image.NewRGBA(image.Rect(0, 0, 120, 60)), nil); err != nil {
		t.Fatal(err)
	}

	out, err := ResizeJPEG(src.Bytes(), 50)
	if err != nil {
		t.Fatalf("ResizeJPEG: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 50 || h != 25 {
		t.Errorf("resized to %dx%d, want 50x25 (aspect preserved)", w, h)
	}

	// Small images are not upscaled.
	out, err = ResizeJPEG(src.Bytes(), 500)
	if err != nil {
		t.Fatalf("ResizeJPEG: %v", err)
	}
	img, _, _ = image.Decode(bytes.NewReader(out))
	if w := img.Bounds().Dx(); w != 120 {
		t.Errorf("width = %d, small image must keep its size", w)
	}
}
