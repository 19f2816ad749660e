package conversation

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyLength is the length of a derived conversation key in characters.
const KeyLength = 16

// DeriveKey derives an opaque conversation key from request provenance:
// the caller's source address and client signature (typically the
// User-Agent string). The same provenance tuple always yields the same
// key, so a caller's history and rate-limit bucket correlate without any
// login or external lookup.
//
// The key is the first 16 hex characters of a SHA-256 over the
// concatenated tuple. Truncation is fine here: the key is a correlation
// handle, not a credential.
func DeriveKey(sourceAddr, clientSig string) string {
	sum := sha256.Sum256([]byte(sourceAddr + "|" + clientSig))
	return hex.EncodeToString(sum[:])[:KeyLength]
}
