// Package resolve turns user-supplied Qobuz URLs into content
// references and expands collection types (artist, label, playlist)
// into their full member lists.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/charmbracelet/log"

	"qbz/internal/model"
	"qbz/internal/qobuz"
)

// ErrInvalidURL is returned for URLs that match no recognized Qobuz
// pattern. Callers log and continue with the next URL.
var ErrInvalidURL = errors.New("invalid or unsupported URL")

var (
	// Matches .../{type}/<slug>/<id> as used by www.qobuz.com and
	// play.qobuz.com. First matching pattern wins.
	slugPattern = regexp.MustCompile(`/(album|artist|track|playlist|label)/[^/]+/([\w\d]+)`)

	// Fallback for the simpler open.qobuz.com/{type}/<id> form.
	simplePattern = regexp.MustCompile(`qobuz\.com/(album|artist|track|playlist|label)/([\w\d]+)`)
)

var contentTypes = map[string]model.ContentType{
	"album":    model.ContentAlbum,
	"track":    model.ContentTrack,
	"artist":   model.ContentArtist,
	"label":    model.ContentLabel,
	"playlist": model.ContentPlaylist,
}

// ParseURL extracts the content type and id from a Qobuz URL.
func ParseURL(rawurl string) (model.ContentRef, error) {
	for _, re := range []*regexp.Regexp{slugPattern, simplePattern} {
		if m := re.FindStringSubmatch(rawurl); m != nil {
			return model.ContentRef{Type: contentTypes[m[1]], ID: m[2]}, nil
		}
	}
	return model.ContentRef{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawurl)
}

// Options controls collection expansion.
type Options struct {
	// SmartDiscography applies the discography de-duplication filter
	// to artist collections.
	SmartDiscography bool

	// SaveSpace inverts the sampling-rate tie-break in the
	// discography filter, preferring the smallest files at the best
	// bit depth.
	SaveSpace bool

	// SkipExtras drops deluxe/live/demo and similar editions from
	// the discography filter's candidates.
	SkipExtras bool
}

// Resolved is a content reference expanded to the point the download
// manager can schedule it. For single-item types only Ref is set; for
// collections Name carries the collection title and exactly one of
// Albums or Tracks carries the drained member list.
type Resolved struct {
	Ref    model.ContentRef
	Name   string
	Albums []*qobuz.Album
	Tracks []*qobuz.Track
}

// Resolver expands content references against the API.
type Resolver struct {
	client *qobuz.Client
	log    *log.Logger
}

// NewResolver creates a Resolver backed by the given client.
func NewResolver(client *qobuz.Client, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{client: client, log: logger}
}

// Resolve expands a content reference. Single-item types pass through;
// collection types drain the full paginated member list before
// returning.
func (r *Resolver) Resolve(ctx context.Context, ref model.ContentRef, opts Options) (*Resolved, error) {
	switch ref.Type {
	case model.ContentAlbum, model.ContentTrack:
		return &Resolved{Ref: ref}, nil

	case model.ContentArtist:
		meta, albums, err := r.client.ArtistAlbums(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if opts.SmartDiscography {
			before := len(albums)
			albums = FilterDiscography(albums, opts.SaveSpace, opts.SkipExtras)
			r.log.Info("filtered discography", "artist", meta.Name, "releases", len(albums), "from", before)
		}
		return &Resolved{Ref: ref, Name: meta.Name, Albums: albums}, nil

	case model.ContentLabel:
		meta, albums, err := r.client.LabelAlbums(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &Resolved{Ref: ref, Name: meta.Name, Albums: albums}, nil

	case model.ContentPlaylist:
		meta, tracks, err := r.client.PlaylistTracks(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &Resolved{Ref: ref, Name: meta.Name, Tracks: tracks}, nil

	default:
		return nil, fmt.Errorf("%w: unknown content type", ErrInvalidURL)
	}
}
