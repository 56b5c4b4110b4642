package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"errors"

	"filippo.io/edwards25519"
)

// Ed25519 constants.
const (
	// SignPublicKeySize is the Ed25519 public key length in bytes.
	SignPublicKeySize = ed25519.PublicKeySize

	// SignSecretKeySize is the Ed25519 secret key length in bytes
	// (32-byte seed followed by the 32-byte public key).
	SignSecretKeySize = ed25519.PrivateKeySize

	// SignatureSize is the Ed25519 detached signature length in bytes.
	SignatureSize = ed25519.SignatureSize
)

// ErrInvalidPoint is returned when an Ed25519 public key is not a valid
// point encoding and cannot be converted to Curve25519.
var ErrInvalidPoint = errors.New("crypto: invalid ed25519 public key encoding")

// SignDetached computes the deterministic Ed25519 signature of message
// under the 64-byte secret key.
func SignDetached(message []byte, secret *[SignSecretKeySize]byte) [SignatureSize]byte {
	var sig [SignatureSize]byte
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(secret[:]), message))
	return sig
}

// VerifyDetached reports whether sig is a valid Ed25519 signature of
// message under public.
func VerifyDetached(sig, message []byte, public *[SignPublicKeySize]byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(public[:]), message, sig)
}

// PublicKeyToCurve25519 converts an Ed25519 public key to its Curve25519
// counterpart, so the long-term signing identity can participate in
// Diffie-Hellman exchanges.
//
// Returns ErrInvalidPoint if the key is not a valid point encoding.
func PublicKeyToCurve25519(public *[SignPublicKeySize]byte) ([ScalarMultSize]byte, error) {
	var result [ScalarMultSize]byte
	p, err := new(edwards25519.Point).SetBytes(public[:])
	if err != nil {
		return result, ErrInvalidPoint
	}
	copy(result[:], p.BytesMontgomery())
	return result, nil
}

// SecretKeyToCurve25519 converts an Ed25519 secret key to the Curve25519
// scalar of the same identity: the SHA-512 of the seed, clamped. The
// conversion cannot fail.
func SecretKeyToCurve25519(secret *[SignSecretKeySize]byte) [ScalarMultSize]byte {
	h := sha512.Sum512(secret[:32])
	var result [ScalarMultSize]byte
	copy(result[:], h[:32])
	result[0] &= 248
	result[31] &= 127
	result[31] |= 64
	Wipe(h[:])
	return result
}
