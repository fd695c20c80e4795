package resolve

import (
	"regexp"
	"strings"

	"qbz/internal/qobuz"
)

var (
	remasterPattern = regexp.MustCompile(`(?i)(re)?master(ed)?`)
	extraPattern    = regexp.MustCompile(`(?i)(anniversary|deluxe|live|collector|demo|expanded|remix|acoustic|instrumental)`)

	// Captures the title up to the first parenthesized/bracketed
	// suffix, so "Album" and "Album (Deluxe)" group together.
	baseTitlePattern = regexp.MustCompile(`([^\(]+)(?:\s*[\(\[][^)]*[\)\]])*`)
)

// FilterDiscography de-duplicates an artist's full release list.
//
// Albums are grouped by a normalized base title; within each group one
// representative is chosen by, in order: highest bit depth, then
// highest sampling rate at that bit depth (lowest when saveSpace is
// set), then remasters over non-remasters when any remaster exists in
// the group. With skipExtras, deluxe/live/demo and similar editions are
// discarded from contention. Ties past that are assumed identical and
// the first encountered wins.
//
// Albums credited to a different artist than the requested one (guest
// features) are excluded from grouping entirely.
func FilterDiscography(albums []*qobuz.Album, saveSpace, skipExtras bool) []*qobuz.Album {
	if len(albums) == 0 {
		return nil
	}

	requestedArtist := albums[0].ArtistName()

	groups := make(map[string][]*qobuz.Album)
	var order []string
	for _, album := range albums {
		if album.ArtistName() != requestedArtist {
			continue
		}
		key := baseTitle(album.Title)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], album)
	}

	var filtered []*qobuz.Album
	for _, key := range order {
		if best := pickBest(groups[key], saveSpace, skipExtras); best != nil {
			filtered = append(filtered, best)
		}
	}
	return filtered
}

func pickBest(group []*qobuz.Album, saveSpace, skipExtras bool) *qobuz.Album {
	bestBitDepth := 0
	for _, a := range group {
		if a.MaximumBitDepth > bestBitDepth {
			bestBitDepth = a.MaximumBitDepth
		}
	}

	bestRate := -1.0
	for _, a := range group {
		if a.MaximumBitDepth != bestBitDepth {
			continue
		}
		if bestRate < 0 ||
			(saveSpace && a.MaximumSamplingRate < bestRate) ||
			(!saveSpace && a.MaximumSamplingRate > bestRate) {
			bestRate = a.MaximumSamplingRate
		}
	}

	remasterExists := false
	for _, a := range group {
		if isRemaster(a) {
			remasterExists = true
			break
		}
	}

	for _, a := range group {
		if a.MaximumBitDepth != bestBitDepth || a.MaximumSamplingRate != bestRate {
			continue
		}
		if remasterExists && !isRemaster(a) {
			continue
		}
		if skipExtras && isExtra(a) {
			continue
		}
		return a
	}
	return nil
}

func isRemaster(a *qobuz.Album) bool {
	return remasterPattern.MatchString(a.Title + " " + a.Version)
}

func isExtra(a *qobuz.Album) bool {
	return extraPattern.MatchString(a.Title + " " + a.Version)
}

// baseTitle strips trailing parenthetical/bracketed suffixes and
// case-folds, so edition variants of one album share a key.
func baseTitle(title string) string {
	if m := baseTitlePattern.FindStringSubmatch(title); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1]))
	}
	return strings.ToLower(title)
}
