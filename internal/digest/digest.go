// Package digest computes the BLAKE3 content digests that the tools report
// for every file they rewrite.
package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ShortLen is the number of hex characters shown in operator output.
const ShortLen = 12

// Sum returns the hex-encoded BLAKE3-256 digest of data.
func Sum(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the abbreviated form of a hex digest.
func Short(hash string) string {
	if len(hash) <= ShortLen {
		return hash
	}
	return hash[:ShortLen]
}
