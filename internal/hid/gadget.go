package hid

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultDevice is the keyboard function exposed by the USB gadget.
const DefaultDevice = "/dev/hidg0"

// writeTimeout bounds how long one report waits for the host to poll the
// previous one.
const writeTimeout = 250 * time.Millisecond

// Gadget writes keystrokes to a HID gadget character device.
type Gadget struct {
	mu   sync.Mutex
	fd   int
	path string

	writeFn func(fd int, p []byte) (int, error)
	waitFn  func(fd int, timeout time.Duration) error
}

func OpenGadget(path string) (*Gadget, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open HID device %s: %w", path, err)
	}
	return &Gadget{fd: fd, path: path, writeFn: unix.Write, waitFn: waitWritable}, nil
}

// Press sends one report holding every named key, then a release report.
func (g *Gadget) Press(names []string) error {
	r, err := NewReport(names)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.write(r); err != nil {
		return err
	}
	return g.write(Report{})
}

// write sends one report. The device only holds one report at a time and
// answers EAGAIN until the host has read it, so the write is retried once
// the device is writable again, up to writeTimeout.
func (g *Gadget) write(r Report) error {
	var buf [ReportSize]byte
	r.MarshalTo(buf[:])

	deadline := time.Now().Add(writeTimeout)
	for {
		_, err := g.writeFn(g.fd, buf[:])
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EAGAIN) {
			return fmt.Errorf("failed to write report to %s: %w", g.path, err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("timed out writing report to %s: %w", g.path, err)
		}
		if err := g.waitFn(g.fd, remaining); err != nil && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("failed to wait for %s: %w", g.path, err)
		}
	}
}

func waitWritable(fd int, timeout time.Duration) error {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	_, err := unix.Poll(fds, ms)
	return err
}

func (g *Gadget) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fd < 0 {
		return nil
	}
	err := unix.Close(g.fd)
	g.fd = -1
	return err
}
