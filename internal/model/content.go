package model

// ContentType identifies what kind of Qobuz content a URL points at.
//
// The set is closed: the resolver and the download manager switch
// exhaustively over it.
type ContentType int

const (
	ContentAlbum ContentType = iota
	ContentTrack
	ContentArtist
	ContentLabel
	ContentPlaylist
)

// String returns the lowercase API name of the content type.
func (t ContentType) String() string {
	switch t {
	case ContentAlbum:
		return "album"
	case ContentTrack:
		return "track"
	case ContentArtist:
		return "artist"
	case ContentLabel:
		return "label"
	case ContentPlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// IsCollection reports whether the type expands into multiple members
// (albums or tracks) that must be fetched through pagination.
func (t ContentType) IsCollection() bool {
	switch t {
	case ContentArtist, ContentLabel, ContentPlaylist:
		return true
	default:
		return false
	}
}

// ContentRef is a resolved (type, id) pair derived from a user-supplied
// URL. It is immutable once produced.
type ContentRef struct {
	Type ContentType
	ID   string
}
