package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a stable hex directory name for a storage namespace.
func HashKey(namespace string) string {
	sum := sha256.Sum256([]byte(namespace))
	return hex.EncodeToString(sum[:])
}
