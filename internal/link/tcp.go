package link

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"macropad-service/internal/logger"
)

// TCP serves the line protocol to one host connection at a time. Frames
// written while no host is connected are dropped.
type TCP struct {
	lineQueue
	listener net.Listener
	logger   *logger.Logger

	mu   sync.Mutex
	conn net.Conn
	wg   sync.WaitGroup
}

func ListenTCP(addr string, l *logger.Logger) (*TCP, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	t := &TCP{lineQueue: newLineQueue(l), listener: ln, logger: l}
	t.wg.Add(1)
	go t.acceptLoop()

	l.Infof("Waiting for host on %s", ln.Addr())
	return t, nil
}

func (t *TCP) Addr() net.Addr {
	return t.listener.Addr()
}

func (t *TCP) acceptLoop() {
	defer t.wg.Done()
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.logger.Errorf("Accept failed: %v", err)
			}
			return
		}

		t.mu.Lock()
		if t.conn != nil {
			t.logger.Warnf("Replacing host connection %s with %s", t.conn.RemoteAddr(), conn.RemoteAddr())
			t.conn.Close()
		}
		t.conn = conn
		t.mu.Unlock()

		t.logger.Infof("Host connected from %s", conn.RemoteAddr())
		t.wg.Add(1)
		go t.readLoop(conn)
	}
}

func (t *TCP) readLoop(conn net.Conn) {
	defer t.wg.Done()

	var split splitter
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			split.feed(buf[:n], t.push)
		}
		if err != nil {
			break
		}
	}

	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
		t.logger.Infof("Host %s disconnected", conn.RemoteAddr())
	}
	t.mu.Unlock()
	conn.Close()
}

func (t *TCP) WriteFrame(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	if _, err := t.conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write to %s: %w", t.conn.RemoteAddr(), err)
	}
	return nil
}

func (t *TCP) Close() error {
	err := t.listener.Close()
	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.mu.Unlock()
	t.wg.Wait()
	return err
}
