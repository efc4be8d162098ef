package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Hasher accumulates parts into a single Hash. Parts are length-prefixed so
// that ("ab","c") and ("a","bc") hash differently.
type Hasher struct {
	h   hash.Hash
	buf [8]byte
}

// NewHasher returns an empty SHA-256 accumulator.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// WriteString adds a length-prefixed string part.
func (hs *Hasher) WriteString(s string) {
	hs.WriteUint64(uint64(len(s)))
	hs.h.Write([]byte(s))
}

// WriteUint64 adds a fixed-width integer part.
func (hs *Hasher) WriteUint64(v uint64) {
	for i := 0; i < 8; i++ {
		hs.buf[i] = byte(v >> (8 * i))
	}
	hs.h.Write(hs.buf[:])
}

// Sum returns the accumulated hash.
func (hs *Hasher) Sum() Hash {
	return Hash(hex.EncodeToString(hs.h.Sum(nil)))
}
