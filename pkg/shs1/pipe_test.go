package shs1

import (
	"io"
	"net"
	"testing"
	"time"
)

// The whole handshake driven through real net.Conn reads and writes over
// an in-memory pipe, the way a transport integration would run it.
func TestHandshakeOverPipe(t *testing.T) {
	keys := fixtureKeys(t)
	pipe := NewPipe()
	defer pipe.Close()

	type result struct {
		outcome *Outcome
		err     error
	}
	clientDone := make(chan result, 1)

	go func() {
		outcome, err := runClientConn(keys.newClient(), pipe.Conn0())
		clientDone <- result{outcome, err}
	}()

	serverOutcome, err := runServerConn(keys.newServer(), pipe.Conn1())
	if err != nil {
		t.Fatalf("server handshake failed: %v", err)
	}

	var clientRes result
	select {
	case clientRes = <-clientDone:
	case <-time.After(5 * time.Second):
		t.Fatal("client handshake timed out")
	}
	if clientRes.err != nil {
		t.Fatalf("client handshake failed: %v", clientRes.err)
	}

	if clientRes.outcome.EncryptionKey != serverOutcome.DecryptionKey {
		t.Error("client encryption key != server decryption key")
	}
	if clientRes.outcome.DecryptionKey != serverOutcome.EncryptionKey {
		t.Error("client decryption key != server encryption key")
	}
}

func runClientConn(s *ClientSession, conn net.Conn) (*Outcome, error) {
	defer s.Wipe()

	msg, err := s.ClientChallenge()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(msg); err != nil {
		return nil, err
	}

	buf := make([]byte, ChallengeSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	if err := s.VerifyServerChallenge(buf); err != nil {
		return nil, err
	}

	msg, err = s.ClientAuth()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(msg); err != nil {
		return nil, err
	}

	buf = make([]byte, ServerAcceptSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	if err := s.VerifyServerAccept(buf); err != nil {
		return nil, err
	}

	return s.Outcome()
}

func runServerConn(s *ServerSession, conn net.Conn) (*Outcome, error) {
	defer s.Wipe()

	buf := make([]byte, ChallengeSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	if err := s.VerifyClientChallenge(buf); err != nil {
		return nil, err
	}

	msg, err := s.ServerChallenge()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(msg); err != nil {
		return nil, err
	}

	buf = make([]byte, ClientAuthSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	if err := s.VerifyClientAuth(buf); err != nil {
		return nil, err
	}

	msg, err = s.ServerAccept()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(msg); err != nil {
		return nil, err
	}

	return s.Outcome()
}

func TestPipeCloseIdempotent(t *testing.T) {
	pipe := NewPipe()
	if err := pipe.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := pipe.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
