// Package download orchestrates the track download pipeline: archive
// dedup, quality negotiation, bounded-concurrency fetching and file
// materialization (template rendering, cover art, tagging, atomic
// rename).
//
// The entry point is the Manager:
//
//	mgr := download.New(client, cfg, arch, logger, sink)
//	err := mgr.Handle(ctx, "https://www.qobuz.com/album/...")
//
// Failures of individual tracks are recorded in the session stats and
// never abort their siblings; only fatal session errors (bad
// credentials, invalid quality, ineligible account) propagate out of
// Handle.
package download
