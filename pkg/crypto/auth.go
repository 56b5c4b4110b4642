package crypto

import (
	"golang.org/x/crypto/nacl/auth"
)

// HMAC-SHA-512-256 constants. This is the NaCl crypto_auth construction:
// HMAC with SHA-512, output truncated to 256 bits, 32-byte keys.
const (
	// AuthSize is the authenticator tag length in bytes.
	AuthSize = auth.Size

	// AuthKeySize is the authentication key length in bytes.
	AuthKeySize = auth.KeySize
)

// AuthSum computes the HMAC-SHA-512-256 authenticator of a message under key.
//
// Returns a 32-byte tag.
func AuthSum(message []byte, key *[AuthKeySize]byte) [AuthSize]byte {
	return *auth.Sum(message, key)
}

// AuthVerify checks an HMAC-SHA-512-256 authenticator in constant time.
func AuthVerify(digest, message []byte, key *[AuthKeySize]byte) bool {
	return auth.Verify(digest, message, key)
}
