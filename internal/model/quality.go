package model

// Quality is a Qobuz encoding quality tier. Only four tiers exist; any
// other value is rejected before a request is made.
type Quality int

const (
	// QualityMP3 is 320 kbps MP3, the lowest tier.
	QualityMP3 Quality = 5

	// QualityCD is 16-bit/44.1kHz FLAC.
	QualityCD Quality = 6

	// QualityHiRes is 24-bit FLAC up to 96kHz.
	QualityHiRes Quality = 7

	// QualityHiRes192 is 24-bit FLAC up to 192kHz.
	QualityHiRes192 Quality = 27
)

// Valid reports whether q is one of the four accepted tiers.
func (q Quality) Valid() bool {
	switch q {
	case QualityMP3, QualityCD, QualityHiRes, QualityHiRes192:
		return true
	}
	return false
}

// Lossless reports whether q selects a FLAC tier.
func (q Quality) Lossless() bool {
	return q.Valid() && q != QualityMP3
}

// Ext returns the file extension (without dot) for files downloaded at
// this tier.
func (q Quality) Ext() string {
	if q == QualityMP3 {
		return "mp3"
	}
	return "flac"
}

// Label returns a human-readable description of the tier.
func (q Quality) Label() string {
	switch q {
	case QualityMP3:
		return "5 - MP3 (320 kbps)"
	case QualityCD:
		return "6 - CD-Lossless (16-bit / 44.1kHz)"
	case QualityHiRes:
		return "7 - Hi-Res (24-bit / up to 96kHz)"
	case QualityHiRes192:
		return "27 - Hi-Res (24-bit / up to 192kHz)"
	default:
		return "unknown"
	}
}
