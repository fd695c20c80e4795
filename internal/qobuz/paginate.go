package qobuz

import (
	"context"
	"net/url"
	"strconv"
)

// pageLimit is the page size for collection endpoints.
const pageLimit = 500

// ArtistAlbums drains the artist's full release list. Iteration stops
// when the running offset reaches the endpoint's declared total count,
// or a page comes back empty — whichever happens first.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string) (*Artist, []*Album, error) {
	var (
		meta   *Artist
		albums []*Album
		offset int
	)
	for {
		params := collectionParams("artist_id", artistID, "albums", offset)
		var page Artist
		if err := c.callInto(ctx, "artist/get", params, &page); err != nil {
			return nil, nil, err
		}
		if meta == nil {
			meta = &page
		}
		var items []*Album
		if page.Albums != nil {
			items = page.Albums.Items
		}
		albums = append(albums, items...)
		if len(items) == 0 || offset+len(items) >= page.AlbumsCount {
			break
		}
		offset += len(items)
	}
	return meta, albums, nil
}

// LabelAlbums drains the label's full release list. Same termination
// rule as ArtistAlbums.
func (c *Client) LabelAlbums(ctx context.Context, labelID string) (*Label, []*Album, error) {
	var (
		meta   *Label
		albums []*Album
		offset int
	)
	for {
		params := collectionParams("label_id", labelID, "albums", offset)
		var page Label
		if err := c.callInto(ctx, "label/get", params, &page); err != nil {
			return nil, nil, err
		}
		if meta == nil {
			meta = &page
		}
		var items []*Album
		if page.Albums != nil {
			items = page.Albums.Items
		}
		albums = append(albums, items...)
		if len(items) == 0 || offset+len(items) >= page.AlbumsCount {
			break
		}
		offset += len(items)
	}
	return meta, albums, nil
}

// PlaylistTracks drains the playlist's full member list. Same
// termination rule as ArtistAlbums, against the declared tracks_count.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) (*Playlist, []*Track, error) {
	var (
		meta   *Playlist
		tracks []*Track
		offset int
	)
	for {
		params := collectionParams("playlist_id", playlistID, "tracks", offset)
		var page Playlist
		if err := c.callInto(ctx, "playlist/get", params, &page); err != nil {
			return nil, nil, err
		}
		if meta == nil {
			meta = &page
		}
		var items []*Track
		if page.Tracks != nil {
			items = page.Tracks.Items
		}
		tracks = append(tracks, items...)
		if len(items) == 0 || offset+len(items) >= page.TracksCount {
			break
		}
		offset += len(items)
	}
	return meta, tracks, nil
}

func collectionParams(idKey, id, extra string, offset int) url.Values {
	params := url.Values{}
	params.Set(idKey, id)
	params.Set("extra", extra)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(pageLimit))
	return params
}
