// Package audio provides post-download audio file services: metadata
// tagging, cover art processing and playlist generation.
//
// # Tagging
//
// Tagging is dispatched by quality tier through ForQuality. MP3
// downloads get full ID3v2 tags written from the Qobuz metadata tree;
// lossless downloads already carry embedded metadata in the stream
// Qobuz serves, so they pass through untouched:
//
//	tagger := audio.ForQuality(quality, embedArt)
//	err := tagger.Tag(path, track, release)
//
// # Cover art
//
// ResizeJPEG and ToJPEG normalize downloaded cover images for
// embedding and for the per-album cover.jpg file.
//
// # Playlists
//
// WriteM3U generates an extended M3U file for a downloaded playlist,
// with relative paths so the file survives moving the directory.
package audio
