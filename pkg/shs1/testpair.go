package shs1

import (
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// =============================================================================
// Exported Test Infrastructure for E2E Testing
// =============================================================================

// Pipe provides bidirectional in-memory communication between the two
// handshake roles for deterministic end-to-end tests. It wraps pion's
// test.Bridge and delivers queued messages from a background goroutine,
// so the four handshake messages can be driven through real net.Conn
// Read/Write calls without network I/O.
//
// Usage:
//
//	pipe := shs1.NewPipe()
//	defer pipe.Close()
//	go driveClient(pipe.Conn0())
//	driveServer(pipe.Conn1())
type Pipe struct {
	bridge *test.Bridge

	mu     sync.Mutex
	closed bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPipe creates a new bidirectional pipe with message delivery running
// in a background goroutine.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p
}

// Conn0 returns the connection for endpoint 0.
func (p *Pipe) Conn0() net.Conn {
	return p.bridge.GetConn0()
}

// Conn1 returns the connection for endpoint 1.
func (p *Pipe) Conn1() net.Conn {
	return p.bridge.GetConn1()
}

// Close closes both endpoints and stops message delivery.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()

	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}
