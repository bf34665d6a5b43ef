package wikimedia

import (
	"crypto/md5" //nolint:gosec -- Commons bucketing scheme requires md5, not used for security
	"encoding/hex"
	"fmt"
)

// DefaultUploadHost serves Commons originals.
const DefaultUploadHost = "https://upload.wikimedia.org"

// FileURL converts a Commons filename into its direct upload URL. Commons
// shards files into directories by the first hex characters of the md5 of
// the verbatim filename: /<h0>/<h0h1>/<filename>. Returns "" for an empty
// filename.
func FileURL(uploadHost, filename string) string {
	if filename == "" {
		return ""
	}
	if uploadHost == "" {
		uploadHost = DefaultUploadHost
	}

	sum := md5.Sum([]byte(filename)) //nolint:gosec
	h := hex.EncodeToString(sum[:])

	return fmt.Sprintf("%s/wikipedia/commons/%s/%s/%s", uploadHost, h[:1], h[:2], filename)
}
