package download

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qbz/internal/qobuz"
)

// DefaultTemplate is the output path layout used when the user
// configures none.
const DefaultTemplate = "{albumartist}/{album} ({year})/%{?is_multidisc,Disc {media_number}/|}{tracknumber} - {tracktitle}.{ext}"

var (
	// %{?flag,true branch|false branch} — the chosen branch may itself
	// contain placeholders.
	conditionalPattern = regexp.MustCompile(`%\{\?(\w+),([^|]*?)\|([^}]*?)\}`)

	placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)
)

// RenderTemplate expands a path template against the variable set for
// one track. Conditionals are resolved first, then placeholders; a
// placeholder with no corresponding variable is an error, since a
// silently dropped field would corrupt the layout for every track.
func RenderTemplate(tmpl string, vars map[string]string) (string, error) {
	out := conditionalPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		m := conditionalPattern.FindStringSubmatch(match)
		if truthy(vars[m[1]]) {
			return m[2]
		}
		return m[3]
	})

	var unknown []string
	out = placeholderPattern.ReplaceAllStringFunc(out, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := vars[name]
		if !ok {
			unknown = append(unknown, name)
			return match
		}
		return v
	})
	if len(unknown) > 0 {
		return "", fmt.Errorf("output template: unknown placeholder {%s}", strings.Join(unknown, "}, {"))
	}
	return out, nil
}

// truthy treats a flag variable as set when it is non-empty and not the
// literal "0".
func truthy(v string) bool {
	return v != "" && v != "0"
}

// trackVars builds the template variable set for one track. The file
// descriptor supplies the served format properties, which may differ
// from the requested tier after a downgrade.
func trackVars(track *qobuz.Track, release *qobuz.Album, fu *qobuz.FileURL) map[string]string {
	ext := "flac"
	if fu.BitDepth == 0 {
		ext = "mp3"
	}

	multidisc := "0"
	if release.MediaCount > 1 {
		multidisc = "1"
	}

	vars := map[string]string{
		"albumartist":   release.ArtistName(),
		"artist":        track.PerformerName(),
		"album":         release.FullTitle(),
		"year":          releaseYear(release),
		"tracktitle":    track.FullTitle(),
		"tracknumber":   fmt.Sprintf("%02d", track.TrackNumber),
		"media_number":  fmt.Sprintf("%02d", track.MediaNumber),
		"media_count":   strconv.Itoa(release.MediaCount),
		"is_multidisc":  multidisc,
		"ext":           ext,
		"bit_depth":     strconv.Itoa(fu.BitDepth),
		"sampling_rate": strconv.FormatFloat(fu.SamplingRate, 'f', -1, 64),
		"genre":         nestedName(release.Genre),
		"label":         nestedName(release.Label),
		"composer":      nestedName(track.Composer),
		"work":          track.Work,
		"isrc":          track.ISRC,
		"upc":           release.UPC,
		"version":       track.Version,
		"copyright":     release.Copyright,
		"release_date":  release.ReleaseDateOriginal,
		"release_type":  release.ReleaseType,
	}
	if track.Performer == nil || track.Performer.Name == "" {
		vars["artist"] = release.ArtistName()
	}
	return vars
}

func nestedName(n *qobuz.Name) string {
	if n == nil {
		return ""
	}
	return n.Name
}

func releaseYear(release *qobuz.Album) string {
	if len(release.ReleaseDateOriginal) < 4 {
		return ""
	}
	return release.ReleaseDateOriginal[:4]
}
