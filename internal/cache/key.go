package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// DeriveKey creates a SHA-256 cache key from an ordered list of parameters.
// Each part is length-prefixed before hashing, so ("ab", "c") and ("a", "bc")
// never produce the same key.
func DeriveKey(parts ...string) string {
	h := sha256.New()
	var prefix [8]byte

	binary.BigEndian.PutUint64(prefix[:], uint64(len(parts)))
	h.Write(prefix[:])

	for _, part := range parts {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(part)))
		h.Write(prefix[:])
		h.Write([]byte(part))
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
