package shs1

import (
	"sync"

	"github.com/pion/logging"

	"github.com/AljoschaMeyer/shs1-go/pkg/crypto"
)

// ClientSession drives the client half of the handshake.
//
// Usage:
//
//	session := shs1.NewClient(appKey, pub, sec, ephPub, ephSec, serverPub)
//	defer session.Wipe()
//	msg, _ := session.ClientChallenge()
//	// send msg, receive serverChallenge
//	err := session.VerifyServerChallenge(serverChallenge)
//	msg, err = session.ClientAuth()
//	// send msg, receive serverAccept
//	err = session.VerifyServerAccept(serverAccept)
//	outcome, _ := session.Outcome()
//
// All key material is copied at construction; the caller's buffers are
// never retained or modified. A session is single-use: after a failure or
// a Wipe no operation is valid.
type ClientSession struct {
	state State

	// Inputs, copied at construction.
	app       [AppKeySize]byte       // K
	pub       [PublicKeySize]byte    // A_p
	sec       [SecretKeySize]byte    // A_s
	ephPub    [EphemeralKeySize]byte // a_p
	ephSec    [EphemeralKeySize]byte // a_s
	serverPub [PublicKeySize]byte    // B_p

	// Intermediate results, accumulated step by step.
	serverEphPub      [EphemeralKeySize]byte        // b_p
	sharedSecret      [crypto.ScalarMultSize]byte   // a_s * b_p
	serverLtermShared [crypto.ScalarMultSize]byte   // a_s * B_p
	sharedHash        [crypto.SHA256LenBytes]byte   // sha256(a_s * b_p)
	hello             [HelloSize]byte               // H
	boxSec            [crypto.SHA256LenBytes]byte   // sha256(K | a_s*b_p | a_s*B_p | A_s*b_p)

	log logging.LeveledLogger

	mu sync.Mutex
}

// NewClient creates a client session from the shared application key, the
// client's long-term Ed25519 keypair, its ephemeral Curve25519 keypair,
// and the long-term public key of the server it intends to reach.
func NewClient(
	app *[AppKeySize]byte,
	pub *[PublicKeySize]byte,
	sec *[SecretKeySize]byte,
	ephPub *[EphemeralKeySize]byte,
	ephSec *[EphemeralKeySize]byte,
	serverPub *[PublicKeySize]byte,
) *ClientSession {
	s := &ClientSession{state: StateInit}
	s.app = *app
	s.pub = *pub
	s.sec = *sec
	s.ephPub = *ephPub
	s.ephSec = *ephSec
	s.serverPub = *serverPub
	return s
}

// SetLoggerFactory enables leveled logging with the given factory.
// If never called, logging is disabled. Log output identifies failing
// steps for the local operator only; nothing secret-derived is logged.
func (s *ClientSession) SetLoggerFactory(f logging.LoggerFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = f.NewLogger("shs1")
}

// Role returns RoleClient.
func (s *ClientSession) Role() Role {
	return RoleClient
}

// State returns the current protocol state.
func (s *ClientSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ClientChallenge produces the first message of the handshake,
// hmac_K(a_p) ‖ a_p. Valid only on a fresh session.
func (s *ClientSession) ClientChallenge() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInit {
		return nil, s.misuse("ClientChallenge")
	}

	tag := crypto.AuthSum(s.ephPub[:], &s.app)
	msg := make([]byte, 0, ChallengeSize)
	msg = append(msg, tag[:]...)
	msg = append(msg, s.ephPub[:]...)

	s.transition(StateSentChallenge)
	return msg, nil
}

// VerifyServerChallenge checks the second message of the handshake. On
// success the server's ephemeral public key is retained for the
// subsequent steps.
func (s *ClientSession) VerifyServerChallenge(challenge []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSentChallenge {
		return s.misuse("VerifyServerChallenge")
	}
	if len(challenge) != ChallengeSize {
		return s.fail(ErrInvalidMessage, "server challenge has wrong length")
	}
	if !crypto.AuthVerify(challenge[:crypto.AuthSize], challenge[crypto.AuthSize:], &s.app) {
		return s.fail(ErrInvalidMessage, "server challenge hmac mismatch")
	}

	copy(s.serverEphPub[:], challenge[crypto.AuthSize:])

	s.transition(StateGotPeerChallenge)
	return nil
}

// ClientAuth produces the third message of the handshake: the hello
// H = sign_{A_s}(K ‖ B_p ‖ sha256(a_s·b_p)) ‖ A_p, secretboxed under
// sha256(K ‖ a_s·b_p ‖ a_s·B_p) with the fixed zero nonce.
func (s *ClientSession) ClientAuth() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateGotPeerChallenge {
		return nil, s.misuse("ClientAuth")
	}

	var err error

	// a_s * b_p
	s.sharedSecret, err = crypto.ScalarMult(&s.ephSec, &s.serverEphPub)
	if err != nil {
		return nil, s.fail(ErrInvalidKey, "ephemeral shared secret is degenerate")
	}

	curveServerPub, err := crypto.PublicKeyToCurve25519(&s.serverPub)
	if err != nil {
		return nil, s.fail(ErrInvalidKey, "server public key is not convertible")
	}

	// a_s * B_p
	s.serverLtermShared, err = crypto.ScalarMult(&s.ephSec, &curveServerPub)
	if err != nil {
		return nil, s.fail(ErrInvalidKey, "server long-term shared secret is degenerate")
	}

	s.sharedHash = crypto.SHA256(s.sharedSecret[:])

	// sign_{A_s}(K ‖ B_p ‖ sha256(a_s·b_p))
	toSign := make([]byte, 0, AppKeySize+PublicKeySize+crypto.SHA256LenBytes)
	toSign = append(toSign, s.app[:]...)
	toSign = append(toSign, s.serverPub[:]...)
	toSign = append(toSign, s.sharedHash[:]...)
	sig := crypto.SignDetached(toSign, &s.sec)
	crypto.Wipe(toSign)

	// H = sig ‖ A_p
	copy(s.hello[:crypto.SignatureSize], sig[:])
	copy(s.hello[crypto.SignatureSize:], s.pub[:])

	boxKey := crypto.SHA256Concat(s.app[:], s.sharedSecret[:], s.serverLtermShared[:])
	msg := crypto.BoxSeal(s.hello[:], &boxKey)
	crypto.Wipe(boxKey[:])

	s.transition(StateSentAuth)
	return msg, nil
}

// VerifyServerAccept checks the fourth message of the handshake: the
// server's signature over K ‖ H ‖ sha256(a_s·b_p), secretboxed under
// sha256(K ‖ a_s·b_p ‖ a_s·B_p ‖ A_s·b_p). On success the session is
// complete and Outcome becomes available.
func (s *ClientSession) VerifyServerAccept(acc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSentAuth {
		return s.misuse("VerifyServerAccept")
	}
	if len(acc) != ServerAcceptSize {
		return s.fail(ErrInvalidMessage, "server accept has wrong length")
	}

	curveSec := crypto.SecretKeyToCurve25519(&s.sec)
	clientLtermShared, err := crypto.ScalarMult(&curveSec, &s.serverEphPub)
	crypto.Wipe(curveSec[:])
	if err != nil {
		return s.fail(ErrInvalidKey, "client long-term shared secret is degenerate")
	}

	s.boxSec = crypto.SHA256Concat(
		s.app[:], s.sharedSecret[:], s.serverLtermShared[:], clientLtermShared[:])
	crypto.Wipe(clientLtermShared[:])

	sig, ok := crypto.BoxOpen(acc, &s.boxSec)
	if !ok {
		return s.fail(ErrInvalidMessage, "server accept envelope does not open")
	}

	expected := make([]byte, 0, AppKeySize+HelloSize+crypto.SHA256LenBytes)
	expected = append(expected, s.app[:]...)
	expected = append(expected, s.hello[:]...)
	expected = append(expected, s.sharedHash[:]...)

	ok = crypto.VerifyDetached(sig, expected, &s.serverPub)
	crypto.Wipe(sig)
	crypto.Wipe(expected)
	if !ok {
		return s.fail(ErrInvalidMessage, "server accept signature invalid")
	}

	s.transition(StateComplete)
	return nil
}

// Outcome derives the box-stream keys and nonces once the handshake is
// complete. The encryption side addresses the server, the decryption side
// the client itself.
func (s *ClientSession) Outcome() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		return nil, s.misuse("Outcome")
	}

	outer := crypto.SHA256(s.boxSec[:])
	o := &Outcome{
		EncryptionKey:   crypto.SHA256Concat(outer[:], s.serverPub[:]),
		EncryptionNonce: crypto.AuthSum(s.serverEphPub[:], &s.app),
		DecryptionKey:   crypto.SHA256Concat(outer[:], s.pub[:]),
		DecryptionNonce: crypto.AuthSum(s.ephPub[:], &s.app),
	}
	crypto.Wipe(outer[:])
	return o, nil
}

// Wipe zeroises every buffer the session holds, including the copied key
// inputs, and moves the session to Failed. The caller's own key buffers
// are untouched. Wipe is idempotent.
func (s *ClientSession) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	crypto.Wipe(s.app[:])
	crypto.Wipe(s.pub[:])
	crypto.Wipe(s.sec[:])
	crypto.Wipe(s.ephPub[:])
	crypto.Wipe(s.ephSec[:])
	crypto.Wipe(s.serverPub[:])
	crypto.Wipe(s.serverEphPub[:])
	crypto.Wipe(s.sharedSecret[:])
	crypto.Wipe(s.serverLtermShared[:])
	crypto.Wipe(s.sharedHash[:])
	crypto.Wipe(s.hello[:])
	crypto.Wipe(s.boxSec[:])
	s.state = StateFailed
}

// transition moves to the next state, logging at trace level.
func (s *ClientSession) transition(next State) {
	if s.log != nil {
		s.log.Tracef("client %s -> %s", s.state, next)
	}
	s.state = next
}

// fail moves the session to Failed and returns err. The reason is logged
// locally and must never be forwarded to the peer.
func (s *ClientSession) fail(err error, reason string) error {
	if s.log != nil {
		s.log.Debugf("client handshake failed in %s: %s", s.state, reason)
	}
	s.state = StateFailed
	return err
}

// misuse reports an out-of-order operation without changing state.
func (s *ClientSession) misuse(op string) error {
	if s.log != nil {
		s.log.Debugf("client %s called in state %s", op, s.state)
	}
	return ErrMisuse
}
