package crypto

import (
	"encoding/hex"
	"errors"
	"testing"
)

// Vectors generated with libsodium's crypto_scalarmult.
const (
	testScalarHex = "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
	testBaseHex   = "07a37cbc142093c8b755dc1b10e86cb426374ad16aa853ed0bdfc0b2b86d1c7c"
	testPointHex  = "4d5bab89b0733d9d8dcecf04f321c90b761b7765a6bdb2bddbfad3e7abdf1f66"
	testOutHex    = "02810387ae2875f13654e3f26a77a7f7525588f18c4a1869ec9a9536db0b610a"

	// A point of small order on Curve25519; multiplying by it yields the
	// all-zero output.
	lowOrderPointHex = "e0eb7a7c3b41b8ae1656e3faf19fc46ada098deb9c32b1fd866205165f49b800"
)

func TestScalarMultBase(t *testing.T) {
	var scalar [ScalarMultSize]byte
	mustDecodeInto(t, scalar[:], testScalarHex)

	out, err := ScalarMultBase(&scalar)
	if err != nil {
		t.Fatalf("ScalarMultBase failed: %v", err)
	}
	if hex.EncodeToString(out[:]) != testBaseHex {
		t.Errorf("ScalarMultBase = %x, want %s", out, testBaseHex)
	}
}

func TestScalarMult(t *testing.T) {
	var scalar, point [ScalarMultSize]byte
	mustDecodeInto(t, scalar[:], testScalarHex)
	mustDecodeInto(t, point[:], testPointHex)

	out, err := ScalarMult(&scalar, &point)
	if err != nil {
		t.Fatalf("ScalarMult failed: %v", err)
	}
	if hex.EncodeToString(out[:]) != testOutHex {
		t.Errorf("ScalarMult = %x, want %s", out, testOutHex)
	}
}

func TestScalarMultLowOrderPoint(t *testing.T) {
	var scalar, point [ScalarMultSize]byte
	mustDecodeInto(t, scalar[:], testScalarHex)
	mustDecodeInto(t, point[:], lowOrderPointHex)

	out, err := ScalarMult(&scalar, &point)
	if !errors.Is(err, ErrLowOrderPoint) {
		t.Fatalf("ScalarMult on a low-order point: err = %v, want ErrLowOrderPoint", err)
	}
	for _, b := range out {
		if b != 0 {
			t.Fatal("ScalarMult returned non-zero output alongside an error")
		}
	}
}
