// Package hash computes content digests used for provisioning memoization and
// for detecting the fixed point of the reference-resolution loop.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Bytes returns the hex-encoded SHA-256 digest of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// File returns the hex-encoded SHA-256 digest of the file's contents.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Bytes(data), nil
}

// FileOrEmpty behaves like File but treats a missing file as empty content.
// The aux state of a document that has produced no aux file yet hashes to the
// digest of zero bytes, so the first real pass always registers as a change.
func FileOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Bytes(nil), nil
		}
		return "", err
	}
	return Bytes(data), nil
}
