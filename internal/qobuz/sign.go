package qobuz

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// signFileURL computes the request signature for track/getFileUrl.
//
// The signed string is the exact concatenation the server expects:
//
//	trackgetFileUrlformat_id{fmt}intentstreamtrack_id{trackID}{ts}{secret}
//
// and the signature is its MD5 digest, hex-encoded lowercase. The
// signature is unforgeable without a valid app secret.
func signFileURL(formatID int, trackID int64, ts int64, secret string) string {
	payload := fmt.Sprintf("trackgetFileUrlformat_id%dintentstreamtrack_id%d%d%s",
		formatID, trackID, ts, secret)
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
