// Package crypto provides the cryptographic primitive bindings for the
// secret-handshake protocol: SHA-256 hashing, HMAC-SHA-512-256
// authentication, X25519 scalar multiplication, Ed25519 detached
// signatures with Curve25519 conversion, and zero-nonce
// XSalsa20-Poly1305 secretboxes.
package crypto

import (
	"crypto/sha256"
	"hash"
)

// SHA-256 constants.
const (
	// SHA256LenBits is the SHA-256 output length in bits.
	SHA256LenBits = 256

	// SHA256LenBytes is the SHA-256 output length in bytes.
	SHA256LenBytes = 32
)

// SHA256 computes the SHA-256 cryptographic hash of a message.
//
// Returns a 32-byte (256-bit) hash digest.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Concat computes the SHA-256 hash of the concatenation of parts,
// without materialising the concatenated buffer. The handshake hashes a
// number of `K ‖ dh ‖ dh` style concatenations; this keeps those call
// sites free of intermediate copies of secret material.
func SHA256Concat(parts ...[]byte) [SHA256LenBytes]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var result [SHA256LenBytes]byte
	copy(result[:], h.Sum(nil))
	return result
}

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests incrementally.
func NewSHA256() hash.Hash {
	return sha256.New()
}
