package crypto

import (
	"errors"

	"golang.org/x/crypto/curve25519"
)

// Curve25519 constants.
const (
	// ScalarMultSize is the length of X25519 scalars, points and outputs.
	ScalarMultSize = curve25519.ScalarSize
)

// ErrLowOrderPoint is returned when an X25519 scalar multiplication
// produces the all-zero output. Rejecting it is required for contributory
// behavior: a peer presenting a small-subgroup point would otherwise force
// a predictable shared secret.
var ErrLowOrderPoint = errors.New("crypto: scalar multiplication produced the all-zero output")

// ScalarMult computes the X25519 scalar multiplication scalar * point.
//
// Returns ErrLowOrderPoint if the result is the all-zero string.
func ScalarMult(scalar, point *[ScalarMultSize]byte) ([ScalarMultSize]byte, error) {
	var result [ScalarMultSize]byte
	out, err := curve25519.X25519(scalar[:], point[:])
	if err != nil {
		return result, ErrLowOrderPoint
	}
	copy(result[:], out)
	return result, nil
}

// ScalarMultBase computes the X25519 public key for the given scalar,
// scalar * basepoint.
func ScalarMultBase(scalar *[ScalarMultSize]byte) ([ScalarMultSize]byte, error) {
	var result [ScalarMultSize]byte
	out, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
	if err != nil {
		return result, ErrLowOrderPoint
	}
	copy(result[:], out)
	return result, nil
}
