// Package shs1 implements the Secret-Handshake v1 key agreement protocol.
//
// SHS1 is a four-message mutually authenticating handshake between a
// client and a server who share a 32-byte application key and each hold a
// long-term Ed25519 signing identity. On success both sides derive a
// symmetric pair of (key, nonce) values for an outer box-stream transport.
//
// # Protocol Flow
//
//	Client                                Server
//	------                                ------
//	NewClient(...)                        NewServer(...)
//	                                      |
//	msg = ClientChallenge()   ------>     VerifyClientChallenge(msg)
//	                          <------     msg = ServerChallenge()
//	VerifyServerChallenge(msg)
//	msg = ClientAuth()        ------>     VerifyClientAuth(msg)
//	                          <------     msg = ServerAccept()
//	VerifyServerAccept(msg)
//	outcome = Outcome()                   outcome = Outcome()
//	Wipe()                                Wipe()
//
// All four messages are fixed-length raw byte strings with no framing, no
// length prefixes and no versioning; moving them between the peers is the
// caller's concern. Any verification failure is terminal: there is no
// retry and no renegotiation, the session can only be wiped and a fresh
// one started. The failure reason is never signalled to the remote peer.
//
// Sessions are single-use and strictly sequential. Two independent
// sessions may run in parallel; a single session must not be shared.
package shs1

import (
	"errors"

	"github.com/AljoschaMeyer/shs1-go/pkg/crypto"
)

// Protocol size constants. All wire messages and key inputs are
// fixed-length byte strings.
const (
	// AppKeySize is the length of the shared application key K.
	AppKeySize = crypto.AuthKeySize

	// PublicKeySize is the length of a long-term Ed25519 public key.
	PublicKeySize = crypto.SignPublicKeySize

	// SecretKeySize is the length of a long-term Ed25519 secret key.
	SecretKeySize = crypto.SignSecretKeySize

	// EphemeralKeySize is the length of an ephemeral Curve25519 key,
	// public or secret.
	EphemeralKeySize = crypto.ScalarMultSize

	// HelloSize is the length of the client identity proof H: a detached
	// signature followed by the client's long-term public key.
	HelloSize = crypto.SignatureSize + PublicKeySize

	// ChallengeSize is the length of the ClientChallenge and
	// ServerChallenge messages: an HMAC tag followed by an ephemeral
	// public key.
	ChallengeSize = crypto.AuthSize + EphemeralKeySize

	// ClientAuthSize is the length of the ClientAuth message: the
	// secretboxed hello.
	ClientAuthSize = HelloSize + crypto.BoxOverhead

	// ServerAcceptSize is the length of the ServerAccept message: the
	// secretboxed accept signature.
	ServerAcceptSize = crypto.SignatureSize + crypto.BoxOverhead

	// OutcomeKeySize is the length of the derived box-stream keys.
	OutcomeKeySize = crypto.SHA256LenBytes

	// OutcomeNonceSize is the length of the derived box-stream nonces.
	// The outer transport consumes the leading bytes it needs.
	OutcomeNonceSize = crypto.AuthSize
)

// Errors returned by handshake operations. All three are terminal for the
// session; the only recovery is wiping the session and starting fresh.
var (
	// ErrInvalidMessage is returned when an inbound message failed
	// authentication: an HMAC mismatch on a challenge, a Poly1305 failure
	// on an envelope, or an Ed25519 signature verification failure.
	ErrInvalidMessage = errors.New("shs1: invalid message")

	// ErrInvalidKey is returned when an Ed25519 to Curve25519 conversion
	// rejected its input or a scalar multiplication produced the all-zero
	// output.
	ErrInvalidKey = errors.New("shs1: invalid key")

	// ErrMisuse is returned when an operation is invoked out of protocol
	// order, on a failed session, or on a wiped session.
	ErrMisuse = errors.New("shs1: operation invalid in current state")
)

// Role represents the handshake participant role.
type Role int

const (
	// RoleClient initiates the handshake and authenticates first.
	RoleClient Role = iota
	// RoleServer responds and authenticates second.
	RoleServer
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleServer:
		return "Server"
	default:
		return "Unknown"
	}
}

// State represents the handshake state machine. The client walks
// Init → SentChallenge → GotPeerChallenge → SentAuth → Complete; the
// server walks Init → GotPeerChallenge → SentChallenge → GotPeerAuth →
// Complete. Any failure moves to Failed, from which no operation is legal.
type State int

const (
	StateInit State = iota
	StateSentChallenge
	StateGotPeerChallenge
	StateSentAuth
	StateGotPeerAuth
	StateComplete
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSentChallenge:
		return "SentChallenge"
	case StateGotPeerChallenge:
		return "GotPeerChallenge"
	case StateSentAuth:
		return "SentAuth"
	case StateGotPeerAuth:
		return "GotPeerAuth"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Outcome holds the four values handed to the outer box-stream transport.
// Encryption is the local-to-remote direction, decryption the
// remote-to-local direction; a client's EncryptionKey equals the server's
// DecryptionKey and vice versa.
type Outcome struct {
	EncryptionKey   [OutcomeKeySize]byte
	EncryptionNonce [OutcomeNonceSize]byte
	DecryptionKey   [OutcomeKeySize]byte
	DecryptionNonce [OutcomeNonceSize]byte
}

// Wipe overwrites the outcome with zero bytes. Call it once the outer
// transport has taken ownership of the keys.
func (o *Outcome) Wipe() {
	crypto.Wipe(o.EncryptionKey[:])
	crypto.Wipe(o.EncryptionNonce[:])
	crypto.Wipe(o.DecryptionKey[:])
	crypto.Wipe(o.DecryptionNonce[:])
}
