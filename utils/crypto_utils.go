package utils

import (
	"crypto/sha256"
)

// Hash message using SHA256
func SHA256(msg []byte) []byte {
	digest := sha256.Sum256(msg)
	return digest[:]
}

// SHA256Hex returns the lowercase hex form of the SHA256 digest of msg. It is always 64 characters.
func SHA256Hex(msg []byte) string {
	return BytesToHex(SHA256(msg))
}
