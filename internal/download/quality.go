package download

import (
	"fmt"

	"qbz/internal/model"
	"qbz/internal/qobuz"
)

// downgradeCode is the restriction the API attaches to a resolved file
// URL when the requested format was unavailable and a lower tier was
// served instead.
const downgradeCode = "FormatRestrictedByFormatAvailability"

// Negotiate inspects a resolved stream descriptor against the requested
// quality tier. It returns the served format name and whether the
// request was met: the MP3 tier is always met, lossless tiers are met
// unless the server flagged a format downgrade.
func Negotiate(q model.Quality, fu *qobuz.FileURL) (format string, met bool) {
	if q == model.QualityMP3 {
		return "MP3", true
	}
	for _, r := range fu.Restrictions {
		if r.Code == downgradeCode {
			return "FLAC", false
		}
	}
	return "FLAC", true
}

// StreamLabel describes a resolved stream for logs and progress text.
func StreamLabel(fu *qobuz.FileURL) string {
	if fu.BitDepth > 0 {
		return fmt.Sprintf("FLAC (%d bit / %g kHz)", fu.BitDepth, fu.SamplingRate)
	}
	return "MP3 (320 kbps)"
}
