package audio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"qbz/internal/model"
	"qbz/internal/qobuz"
)

// Tagger writes metadata into a downloaded audio file. The path it
// receives is the temporary download file; tagging happens before the
// file is renamed into place, so a failed tag leaves no finished file
// behind.
type Tagger interface {
	Tag(path string, track *qobuz.Track, release *qobuz.Album) error
}

// ForQuality returns the tagger for a quality tier. The MP3 tier gets
// ID3v2 tags; lossless tiers are served by Qobuz with metadata already
// embedded and pass through unchanged.
func ForQuality(q model.Quality, embedArt bool) Tagger {
	if q == model.QualityMP3 {
		return &ID3Tagger{EmbedArt: embedArt}
	}
	return PassthroughTagger{}
}

// PassthroughTagger leaves the file as served.
type PassthroughTagger struct{}

func (PassthroughTagger) Tag(string, *qobuz.Track, *qobuz.Album) error { return nil }

// ID3Tagger writes ID3v2.3 tags to MP3 files from the Qobuz metadata
// tree. When EmbedArt is set and a cover.jpg exists next to the file,
// it is attached as the front cover picture.
type ID3Tagger struct {
	EmbedArt bool
}

// Tag writes the full tag set for one track. The release argument is
// the album the track belongs to; for standalone tracks the track's own
// embedded album is used when release is nil.
func (t *ID3Tagger) Tag(path string, track *qobuz.Track, release *qobuz.Album) error {
	if release == nil {
		release = track.Album
	}
	if release == nil {
		return fmt.Errorf("tag %s: no album metadata", filepath.Base(path))
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("tag %s: %w", filepath.Base(path), err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(composedTitle(track))
	tag.SetAlbum(release.FullTitle())
	tag.SetArtist(track.PerformerName())
	tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, release.ArtistName())
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8,
		fmt.Sprintf("%d/%d", track.TrackNumber, release.TracksCount))
	tag.AddTextFrame("TPOS", id3v2.EncodingUTF8,
		fmt.Sprintf("%d/%d", track.MediaNumber, release.MediaCount))

	if year := releaseYear(release); year != "" {
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, year)
	}
	if release.Genre != nil && release.Genre.Name != "" {
		tag.SetGenre(release.Genre.Name)
	}
	if track.ISRC != "" {
		tag.AddTextFrame("TSRC", id3v2.EncodingUTF8, track.ISRC)
	}
	if track.Composer != nil && track.Composer.Name != "" {
		tag.AddTextFrame("TCOM", id3v2.EncodingUTF8, track.Composer.Name)
	}
	if release.Label != nil && release.Label.Name != "" {
		tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, release.Label.Name)
	}
	if release.Copyright != "" {
		tag.AddTextFrame("TCOP", id3v2.EncodingUTF8, copyrightSymbols(release.Copyright))
	}
	if release.UPC != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: "BARCODE",
			Value:       release.UPC,
		})
	}

	if t.EmbedArt {
		if err := t.embedCover(tag, filepath.Dir(path)); err != nil {
			return fmt.Errorf("tag %s: %w", filepath.Base(path), err)
		}
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("tag %s: %w", filepath.Base(path), err)
	}
	return nil
}

// embedCover attaches cover.jpg from the track's directory as the front
// cover. Missing cover art is not an error; the cover download may have
// been disabled.
func (t *ID3Tagger) embedCover(tag *id3v2.Tag, dir string) error {
	art, err := os.ReadFile(filepath.Join(dir, "cover.jpg"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !bytes.HasPrefix(art, []byte{0xff, 0xd8}) {
		// Original-quality covers are sometimes served as PNG.
		if art, err = ToJPEG(art); err != nil {
			return err
		}
	}

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     art,
	})
	return nil
}

// composedTitle builds the display title: the versioned track title,
// prefixed with the classical work when one is present.
func composedTitle(track *qobuz.Track) string {
	title := track.FullTitle()
	if track.Work != "" && !strings.HasPrefix(title, track.Work) {
		return track.Work + ": " + title
	}
	return title
}

func releaseYear(release *qobuz.Album) string {
	date := release.ReleaseDateOriginal
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// copyrightSymbols rewrites the ASCII placeholders Qobuz uses in
// copyright strings to the proper symbols.
func copyrightSymbols(s string) string {
	s = strings.ReplaceAll(s, "(P)", "℗")
	s = strings.ReplaceAll(s, "(C)", "©")
	return s
}
