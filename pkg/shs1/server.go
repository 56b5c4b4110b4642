package shs1

import (
	"sync"

	"github.com/pion/logging"

	"github.com/AljoschaMeyer/shs1-go/pkg/crypto"
)

// ServerSession drives the server half of the handshake.
//
// Usage:
//
//	session := shs1.NewServer(appKey, pub, sec, ephPub, ephSec)
//	defer session.Wipe()
//	// receive clientChallenge
//	err := session.VerifyClientChallenge(clientChallenge)
//	msg, _ := session.ServerChallenge()
//	// send msg, receive clientAuth
//	err = session.VerifyClientAuth(clientAuth)
//	clientPub, _ := session.ClientPublicKey() // authorization decision
//	msg, err = session.ServerAccept()
//	// send msg
//	outcome, _ := session.Outcome()
//
// Unlike the client, the server learns the identity of its peer during
// the handshake: after VerifyClientAuth succeeds, ClientPublicKey returns
// the authenticated long-term key of the client.
type ServerSession struct {
	state State

	// Inputs, copied at construction.
	app    [AppKeySize]byte       // K
	pub    [PublicKeySize]byte    // B_p
	sec    [SecretKeySize]byte    // B_s
	ephPub [EphemeralKeySize]byte // b_p
	ephSec [EphemeralKeySize]byte // b_s

	// Intermediate results, accumulated step by step.
	clientEphPub [EphemeralKeySize]byte      // a_p
	clientHello  [HelloSize]byte             // H
	clientPub    [PublicKeySize]byte         // A_p, from H
	sharedHash   [crypto.SHA256LenBytes]byte // sha256(b_s * a_p)
	boxSec       [crypto.SHA256LenBytes]byte // sha256(K | b_s*a_p | B_s*a_p | b_s*A_p)

	log logging.LeveledLogger

	mu sync.Mutex
}

// NewServer creates a server session from the shared application key, the
// server's long-term Ed25519 keypair and its ephemeral Curve25519 keypair.
// The client identity is not an input; it is learned and authenticated
// during the handshake.
func NewServer(
	app *[AppKeySize]byte,
	pub *[PublicKeySize]byte,
	sec *[SecretKeySize]byte,
	ephPub *[EphemeralKeySize]byte,
	ephSec *[EphemeralKeySize]byte,
) *ServerSession {
	s := &ServerSession{state: StateInit}
	s.app = *app
	s.pub = *pub
	s.sec = *sec
	s.ephPub = *ephPub
	s.ephSec = *ephSec
	return s
}

// SetLoggerFactory enables leveled logging with the given factory.
// If never called, logging is disabled.
func (s *ServerSession) SetLoggerFactory(f logging.LoggerFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = f.NewLogger("shs1")
}

// Role returns RoleServer.
func (s *ServerSession) Role() Role {
	return RoleServer
}

// State returns the current protocol state.
func (s *ServerSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// VerifyClientChallenge checks the first message of the handshake. On
// success the client's ephemeral public key is retained for the
// subsequent steps.
func (s *ServerSession) VerifyClientChallenge(challenge []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInit {
		return s.misuse("VerifyClientChallenge")
	}
	if len(challenge) != ChallengeSize {
		return s.fail(ErrInvalidMessage, "client challenge has wrong length")
	}
	if !crypto.AuthVerify(challenge[:crypto.AuthSize], challenge[crypto.AuthSize:], &s.app) {
		return s.fail(ErrInvalidMessage, "client challenge hmac mismatch")
	}

	copy(s.clientEphPub[:], challenge[crypto.AuthSize:])

	s.transition(StateGotPeerChallenge)
	return nil
}

// ServerChallenge produces the second message of the handshake,
// hmac_K(b_p) ‖ b_p.
func (s *ServerSession) ServerChallenge() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateGotPeerChallenge {
		return nil, s.misuse("ServerChallenge")
	}

	tag := crypto.AuthSum(s.ephPub[:], &s.app)
	msg := make([]byte, 0, ChallengeSize)
	msg = append(msg, tag[:]...)
	msg = append(msg, s.ephPub[:]...)

	s.transition(StateSentChallenge)
	return msg, nil
}

// VerifyClientAuth checks the third message of the handshake. It opens
// the envelope under sha256(K ‖ b_s·a_p ‖ B_s·a_p), extracts the client's
// long-term public key from the recovered hello, completes the third
// Diffie-Hellman exchange with it, and verifies the hello signature. On
// success the client is authenticated and ClientPublicKey becomes
// available.
func (s *ServerSession) VerifyClientAuth(auth []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSentChallenge {
		return s.misuse("VerifyClientAuth")
	}
	if len(auth) != ClientAuthSize {
		return s.fail(ErrInvalidMessage, "client auth has wrong length")
	}

	// b_s * a_p
	dh1, err := crypto.ScalarMult(&s.ephSec, &s.clientEphPub)
	if err != nil {
		return s.fail(ErrInvalidKey, "ephemeral shared secret is degenerate")
	}
	defer crypto.Wipe(dh1[:])

	// B_s * a_p
	curveSec := crypto.SecretKeyToCurve25519(&s.sec)
	dh2, err := crypto.ScalarMult(&curveSec, &s.clientEphPub)
	crypto.Wipe(curveSec[:])
	if err != nil {
		return s.fail(ErrInvalidKey, "server long-term shared secret is degenerate")
	}
	defer crypto.Wipe(dh2[:])

	boxKey := crypto.SHA256Concat(s.app[:], dh1[:], dh2[:])
	hello, ok := crypto.BoxOpen(auth, &boxKey)
	crypto.Wipe(boxKey[:])
	if !ok {
		return s.fail(ErrInvalidMessage, "client auth envelope does not open")
	}
	copy(s.clientHello[:], hello)
	crypto.Wipe(hello)

	// A_p is the trailing 32 bytes of the hello.
	copy(s.clientPub[:], s.clientHello[crypto.SignatureSize:])

	curveClientPub, err := crypto.PublicKeyToCurve25519(&s.clientPub)
	if err != nil {
		return s.fail(ErrInvalidKey, "client public key is not convertible")
	}

	// b_s * A_p
	dh3, err := crypto.ScalarMult(&s.ephSec, &curveClientPub)
	if err != nil {
		return s.fail(ErrInvalidKey, "client long-term shared secret is degenerate")
	}
	defer crypto.Wipe(dh3[:])

	s.sharedHash = crypto.SHA256(dh1[:])

	expected := make([]byte, 0, AppKeySize+PublicKeySize+crypto.SHA256LenBytes)
	expected = append(expected, s.app[:]...)
	expected = append(expected, s.pub[:]...)
	expected = append(expected, s.sharedHash[:]...)

	sigOK := crypto.VerifyDetached(s.clientHello[:crypto.SignatureSize], expected, &s.clientPub)
	crypto.Wipe(expected)
	if !sigOK {
		return s.fail(ErrInvalidMessage, "client hello signature invalid")
	}

	s.boxSec = crypto.SHA256Concat(s.app[:], dh1[:], dh2[:], dh3[:])

	s.transition(StateGotPeerAuth)
	return nil
}

// ClientPublicKey returns the authenticated long-term public key of the
// client. Valid after VerifyClientAuth has succeeded; callers use it to
// decide whether to accept the connection before sending ServerAccept.
func (s *ServerSession) ClientPublicKey() ([PublicKeySize]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pub [PublicKeySize]byte
	if s.state != StateGotPeerAuth && s.state != StateComplete {
		return pub, ErrMisuse
	}
	pub = s.clientPub
	return pub, nil
}

// ServerAccept produces the fourth message of the handshake: the
// signature over K ‖ H ‖ sha256(b_s·a_p), secretboxed under
// sha256(K ‖ b_s·a_p ‖ B_s·a_p ‖ b_s·A_p). After this the session is
// complete and Outcome becomes available.
func (s *ServerSession) ServerAccept() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateGotPeerAuth {
		return nil, s.misuse("ServerAccept")
	}

	toSign := make([]byte, 0, AppKeySize+HelloSize+crypto.SHA256LenBytes)
	toSign = append(toSign, s.app[:]...)
	toSign = append(toSign, s.clientHello[:]...)
	toSign = append(toSign, s.sharedHash[:]...)
	sig := crypto.SignDetached(toSign, &s.sec)
	crypto.Wipe(toSign)

	msg := crypto.BoxSeal(sig[:], &s.boxSec)
	crypto.Wipe(sig[:])

	s.transition(StateComplete)
	return msg, nil
}

// Outcome derives the box-stream keys and nonces once the handshake is
// complete. The encryption side addresses the client, the decryption side
// the server itself.
func (s *ServerSession) Outcome() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		return nil, s.misuse("Outcome")
	}

	outer := crypto.SHA256(s.boxSec[:])
	o := &Outcome{
		EncryptionKey:   crypto.SHA256Concat(outer[:], s.clientPub[:]),
		EncryptionNonce: crypto.AuthSum(s.clientEphPub[:], &s.app),
		DecryptionKey:   crypto.SHA256Concat(outer[:], s.pub[:]),
		DecryptionNonce: crypto.AuthSum(s.ephPub[:], &s.app),
	}
	crypto.Wipe(outer[:])
	return o, nil
}

// Wipe zeroises every buffer the session holds, including the copied key
// inputs, and moves the session to Failed. The caller's own key buffers
// are untouched. Wipe is idempotent.
func (s *ServerSession) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	crypto.Wipe(s.app[:])
	crypto.Wipe(s.pub[:])
	crypto.Wipe(s.sec[:])
	crypto.Wipe(s.ephPub[:])
	crypto.Wipe(s.ephSec[:])
	crypto.Wipe(s.clientEphPub[:])
	crypto.Wipe(s.clientHello[:])
	crypto.Wipe(s.clientPub[:])
	crypto.Wipe(s.sharedHash[:])
	crypto.Wipe(s.boxSec[:])
	s.state = StateFailed
}

// transition moves to the next state, logging at trace level.
func (s *ServerSession) transition(next State) {
	if s.log != nil {
		s.log.Tracef("server %s -> %s", s.state, next)
	}
	s.state = next
}

// fail moves the session to Failed and returns err. The reason is logged
// locally and must never be forwarded to the peer.
func (s *ServerSession) fail(err error, reason string) error {
	if s.log != nil {
		s.log.Debugf("server handshake failed in %s: %s", s.state, reason)
	}
	s.state = StateFailed
	return err
}

// misuse reports an out-of-order operation without changing state.
func (s *ServerSession) misuse(op string) error {
	if s.log != nil {
		s.log.Debugf("server %s called in state %s", op, s.state)
	}
	return ErrMisuse
}
