package crypto

import (
	"golang.org/x/crypto/nacl/secretbox"
)

// XSalsa20-Poly1305 secretbox constants.
const (
	// BoxKeySize is the secretbox key length in bytes.
	BoxKeySize = 32

	// BoxOverhead is the Poly1305 tag length added to every ciphertext.
	BoxOverhead = secretbox.Overhead
)

// zeroNonce is the fixed all-zero nonce used for every envelope in the
// handshake. This is safe only because each box key is derived from fresh
// ephemeral Diffie-Hellman outputs and is used exactly once; a box key
// must never leave the handshake or encrypt a second message.
var zeroNonce [24]byte

// BoxSeal encrypts and authenticates message under key with the fixed
// all-zero nonce. The ciphertext is len(message)+BoxOverhead bytes.
func BoxSeal(message []byte, key *[BoxKeySize]byte) []byte {
	return secretbox.Seal(nil, message, &zeroNonce, key)
}

// BoxOpen authenticates and decrypts ciphertext under key with the fixed
// all-zero nonce. The Poly1305 check is constant time. Returns false on
// authentication failure.
func BoxOpen(ciphertext []byte, key *[BoxKeySize]byte) ([]byte, bool) {
	return secretbox.Open(nil, ciphertext, &zeroNonce, key)
}
