package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Vector generated with libsodium's crypto_secretbox_easy under the fixed
// all-zero nonce, key = sha256("box key").
const (
	testBoxKeyHex    = "8b39e5f1c98a60889116f1881417a09040dd8db031887c1311c74acbdff1ab5d"
	testBoxPlainHex  = "68656c6c6f20626f78"
	testBoxCipherHex = "c17475fa0074ca4d2d90533a7b7763823d24816dcdf55b1e24"
)

func TestBoxSeal(t *testing.T) {
	var key [BoxKeySize]byte
	mustDecodeInto(t, key[:], testBoxKeyHex)
	plain, _ := hex.DecodeString(testBoxPlainHex)

	cipher := BoxSeal(plain, &key)
	if hex.EncodeToString(cipher) != testBoxCipherHex {
		t.Errorf("BoxSeal = %x, want %s", cipher, testBoxCipherHex)
	}
	if len(cipher) != len(plain)+BoxOverhead {
		t.Errorf("ciphertext length %d, want %d", len(cipher), len(plain)+BoxOverhead)
	}
}

func TestBoxOpen(t *testing.T) {
	var key [BoxKeySize]byte
	mustDecodeInto(t, key[:], testBoxKeyHex)
	plain, _ := hex.DecodeString(testBoxPlainHex)
	cipher, _ := hex.DecodeString(testBoxCipherHex)

	opened, ok := BoxOpen(cipher, &key)
	if !ok {
		t.Fatal("BoxOpen rejected a valid ciphertext")
	}
	if !bytes.Equal(opened, plain) {
		t.Errorf("BoxOpen = %x, want %x", opened, plain)
	}
}

func TestBoxOpenRejects(t *testing.T) {
	var key [BoxKeySize]byte
	mustDecodeInto(t, key[:], testBoxKeyHex)
	cipher, _ := hex.DecodeString(testBoxCipherHex)

	for i := range cipher {
		bad := bytes.Clone(cipher)
		bad[i] ^= 0x01
		if _, ok := BoxOpen(bad, &key); ok {
			t.Fatalf("BoxOpen accepted a ciphertext corrupted at byte %d", i)
		}
	}

	var otherKey [BoxKeySize]byte
	if _, ok := BoxOpen(cipher, &otherKey); ok {
		t.Error("BoxOpen accepted a ciphertext under the wrong key")
	}
}
