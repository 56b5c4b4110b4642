package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// FIPS 180-2 SHA-256 test vectors.
var sha256TestVectors = []struct {
	message  string
	expected string
}{
	{
		message:  "abc",
		expected: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	},
	{
		message:  "",
		expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	},
	{
		message:  "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
		expected: "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
	},
}

func TestSHA256(t *testing.T) {
	for _, tv := range sha256TestVectors {
		digest := SHA256([]byte(tv.message))
		if hex.EncodeToString(digest[:]) != tv.expected {
			t.Errorf("SHA256(%q) = %x, want %s", tv.message, digest, tv.expected)
		}
	}
}

func TestSHA256Concat(t *testing.T) {
	a := []byte("secret ")
	b := []byte("hand")
	c := []byte("shake")

	joined := SHA256(bytes.Join([][]byte{a, b, c}, nil))
	concat := SHA256Concat(a, b, c)
	if concat != joined {
		t.Errorf("SHA256Concat = %x, want %x", concat, joined)
	}

	if SHA256Concat() != SHA256(nil) {
		t.Error("SHA256Concat() should equal the hash of the empty string")
	}
}
