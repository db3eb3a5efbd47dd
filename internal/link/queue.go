// Package link carries protocol lines between the control loop and the
// host. Readers run in their own goroutine and queue complete lines; the
// loop polls them without blocking.
package link

import (
	"strings"

	"macropad-service/internal/logger"
)

// QueueSize bounds the lines waiting for the control loop.
const QueueSize = 64

type lineQueue struct {
	ch     chan string
	logger *logger.Logger
}

func newLineQueue(l *logger.Logger) lineQueue {
	return lineQueue{ch: make(chan string, QueueSize), logger: l}
}

func (q lineQueue) push(line string) {
	select {
	case q.ch <- line:
	default:
		q.logger.Warnf("Inbound queue full, dropping line %q", line)
	}
}

// ReadLine returns the oldest queued line without blocking.
func (q lineQueue) ReadLine() (string, bool) {
	select {
	case line := <-q.ch:
		return line, true
	default:
		return "", false
	}
}

// splitter accumulates raw reads and yields newline-terminated lines.
type splitter struct {
	pending strings.Builder
}

func (s *splitter) feed(data []byte, emit func(string)) {
	for _, b := range data {
		if b == '\n' {
			emit(s.pending.String())
			s.pending.Reset()
			continue
		}
		s.pending.WriteByte(b)
	}
}
