package audio

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// PlaylistEntry is one finished track destined for a playlist file.
// Path is relative to the playlist file's directory.
type PlaylistEntry struct {
	Path     string
	Artist   string
	Title    string
	Duration int // seconds
}

// WriteM3U writes an extended M3U playlist to path. Entries are sorted
// by their relative path so the file is stable across runs regardless
// of download completion order.
func WriteM3U(path string, entries []PlaylistEntry) error {
	sorted := make([]PlaylistEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var sb strings.Builder
	sb.WriteString("#EXTM3U\n")
	for _, e := range sorted {
		fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", e.Duration, e.Artist, e.Title)
		sb.WriteString(e.Path + "\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}
