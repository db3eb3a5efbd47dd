package link

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"

	"macropad-service/internal/logger"
)

const (
	// DefaultSerialPort is the CDC ACM function of the USB gadget.
	DefaultSerialPort = "/dev/ttyGS0"
	DefaultBaud       = 115200

	serialReadTimeout = 200 * time.Millisecond
)

// Serial is a line link over a serial port.
type Serial struct {
	lineQueue
	port   *serial.Port
	name   string
	logger *logger.Logger

	mu     sync.Mutex
	closed chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func OpenSerial(name string, baud int, l *logger.Logger) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: serialReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	s := &Serial{
		lineQueue: newLineQueue(l),
		port:      port,
		name:      name,
		logger:    l,
		closed:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.readLoop()

	l.Infof("Serial link open on %s at %d baud", name, baud)
	return s, nil
}

func (s *Serial) readLoop() {
	defer s.wg.Done()

	var split splitter
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if n > 0 {
			split.feed(buf[:n], s.push)
		}

		select {
		case <-s.closed:
			return
		default:
		}

		// A read timeout surfaces as EOF with no data.
		if err != nil && !errors.Is(err, io.EOF) {
			s.logger.Errorf("Serial read from %s failed: %v", s.name, err)
			select {
			case <-s.closed:
				return
			case <-time.After(time.Second):
			}
		}
	}
}

func (s *Serial) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.port.Write(frame); err != nil {
		return fmt.Errorf("failed to write to %s: %w", s.name, err)
	}
	return nil
}

func (s *Serial) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.port.Close()
		s.wg.Wait()
	})
	return err
}
