package qobuz

import "strings"

// Response types for the subset of the Qobuz API the downloader
// consumes. Fields not needed by the pipeline are omitted.

// Name is a nested {"name": ...} object (performer, composer, genre,
// label and similar).
type Name struct {
	Name string `json:"name"`
}

// Image holds the album cover art URLs at the sizes Qobuz serves.
type Image struct {
	Large     string `json:"large"`
	Small     string `json:"small"`
	Thumbnail string `json:"thumbnail"`
}

// Goodie is a supplementary album asset, typically a PDF booklet.
type Goodie struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	FileFormatID int    `json:"file_format_id"`
}

// Artist is an album artist. When returned from artist/get with
// extra=albums it carries one page of the artist's releases.
type Artist struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	AlbumsCount int        `json:"albums_count"`
	Albums      *AlbumPage `json:"albums"`
}

// Album is the metadata tree for one release. For album/get it embeds a
// page of its tracks.
type Album struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Version             string     `json:"version"`
	ReleaseType         string     `json:"release_type"`
	Artist              *Artist    `json:"artist"`
	Streamable          bool       `json:"streamable"`
	MaximumBitDepth     int        `json:"maximum_bit_depth"`
	MaximumSamplingRate float64    `json:"maximum_sampling_rate"`
	MediaCount          int        `json:"media_count"`
	TracksCount         int        `json:"tracks_count"`
	ReleaseDateOriginal string     `json:"release_date_original"`
	Label               *Name      `json:"label"`
	Genre               *Name      `json:"genre"`
	UPC                 string     `json:"upc"`
	Copyright           string     `json:"copyright"`
	Image               *Image     `json:"image"`
	Goodies             []Goodie   `json:"goodies"`
	Tracks              *TrackPage `json:"tracks"`
}

// FullTitle is the album title with its version appended when the
// version is not already part of the title.
func (a *Album) FullTitle() string {
	return joinVersion(a.Title, a.Version)
}

// ArtistName returns the credited artist name, or "" when absent.
func (a *Album) ArtistName() string {
	if a.Artist == nil {
		return ""
	}
	return a.Artist.Name
}

// Track is the metadata for one track. track/get embeds the parent
// album; tracks listed inside album/get do not.
type Track struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Version     string `json:"version"`
	Work        string `json:"work"`
	ISRC        string `json:"isrc"`
	TrackNumber int    `json:"track_number"`
	MediaNumber int    `json:"media_number"`
	Duration    int    `json:"duration"`
	Performer   *Name  `json:"performer"`
	Composer    *Name  `json:"composer"`
	Album       *Album `json:"album"`
	Streamable  bool   `json:"streamable"`
}

// FullTitle is the track title with its version appended when the
// version is not already part of the title.
func (t *Track) FullTitle() string {
	return joinVersion(t.Title, t.Version)
}

// PerformerName returns the track performer, falling back to the album
// artist.
func (t *Track) PerformerName() string {
	if t.Performer != nil && t.Performer.Name != "" {
		return t.Performer.Name
	}
	if t.Album != nil {
		return t.Album.ArtistName()
	}
	return ""
}

// TrackPage is one page of tracks inside a collection response.
type TrackPage struct {
	Items  []*Track `json:"items"`
	Total  int      `json:"total"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}

// AlbumPage is one page of albums inside a collection response.
type AlbumPage struct {
	Items  []*Album `json:"items"`
	Total  int      `json:"total"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}

// Playlist is the playlist/get response. With extra=tracks it carries
// one page of member tracks.
type Playlist struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	TracksCount int        `json:"tracks_count"`
	Tracks      *TrackPage `json:"tracks"`
}

// Label is the label/get response. With extra=albums it carries one
// page of the label's releases.
type Label struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	AlbumsCount int        `json:"albums_count"`
	Albums      *AlbumPage `json:"albums"`
}

// Restriction is a server-side note attached to a resolved file URL,
// e.g. that the requested format was unavailable and a lower tier was
// served instead.
type Restriction struct {
	Code string `json:"code"`
}

// FileURL is the resolved stream descriptor for one track at one
// quality tier, returned by track/getFileUrl.
type FileURL struct {
	URL          string        `json:"url"`
	TrackID      int64         `json:"track_id"`
	FormatID     int           `json:"format_id"`
	MimeType     string        `json:"mime_type"`
	Size         int64         `json:"size"`
	URLSize      int64         `json:"url_size"`
	BitDepth     int           `json:"bit_depth"`
	SamplingRate float64       `json:"sampling_rate"`
	Sample       bool          `json:"sample"`
	Restrictions []Restriction `json:"restrictions"`
}

// IsSample reports whether the descriptor is a demo/sample stream.
// Samples carry the sample flag or no sampling rate; they never become
// download jobs.
func (f *FileURL) IsSample() bool {
	return f.Sample || f.SamplingRate == 0
}

// DeclaredSize returns the byte size the API declared for the stream,
// or 0 when unknown.
func (f *FileURL) DeclaredSize() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return f.URLSize
}

// User is the user/get (and user/login) account payload.
type User struct {
	Email      string `json:"email"`
	Credential struct {
		Parameters map[string]any `json:"parameters"`
	} `json:"credential"`
}

// Eligible reports whether the account has a streaming entitlement.
func (u *User) Eligible() bool {
	return len(u.Credential.Parameters) > 0
}

// ShortLabel returns the human-readable membership label, if present.
func (u *User) ShortLabel() string {
	if v, ok := u.Credential.Parameters["short_label"].(string); ok {
		return v
	}
	return ""
}

func joinVersion(title, version string) string {
	if version == "" {
		return title
	}
	if containsFold(title, version) {
		return title
	}
	return title + " (" + version + ")"
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
