package hardware

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"macropad-service/internal/keys"
	"macropad-service/internal/logger"
)

const (
	evKey = 0x01

	// EVIOCGKEY(128)
	eviocgkey   = 0x80804518
	keyStateLen = 128
)

// inputEventSize is sizeof(struct input_event) on this platform.
var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// decodeInputEvent reads the fields after the timestamp of one raw
// input_event record.
func decodeInputEvent(buf []byte) (inputEvent, bool) {
	if len(buf) != inputEventSize {
		return inputEvent{}, false
	}
	off := inputEventSize - 8
	return inputEvent{
		Type:  binary.LittleEndian.Uint16(buf[off : off+2]),
		Code:  binary.LittleEndian.Uint16(buf[off+2 : off+4]),
		Value: int32(binary.LittleEndian.Uint32(buf[off+4 : off+8])),
	}, true
}

// keyEvent maps an evdev record to a pad key event. Autorepeat and codes
// outside the key table are dropped.
func keyEvent(ev inputEvent) (keys.Event, bool) {
	if ev.Type != evKey || ev.Value > 1 {
		return keys.Event{}, false
	}
	k, ok := keys.ByPin(keys.Pin(ev.Code))
	if !ok {
		return keys.Event{}, false
	}
	return keys.Event{Key: k, Pressed: ev.Value == 1}, true
}

// pressedIn lists the keys whose bit is set in an EVIOCGKEY bitmap.
func pressedIn(state []byte) []keys.Key {
	var out []keys.Key
	for _, k := range keys.All() {
		byteOffset := int(k.Pin / 8)
		bitOffset := k.Pin % 8
		if byteOffset < len(state) && state[byteOffset]&(1<<bitOffset) != 0 {
			out = append(out, k)
		}
	}
	return out
}

// KeyReader turns gpio-keys input events into a queue of pad key events.
type KeyReader struct {
	logger *logger.Logger
	path   string
	file   *os.File
	events chan keys.Event
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewKeyReader(path string, l *logger.Logger) *KeyReader {
	return &KeyReader{
		logger: l,
		path:   path,
		events: make(chan keys.Event, keyEventQueue),
		done:   make(chan struct{}),
	}
}

func (r *KeyReader) Open() error {
	r.logger.Infof("Opening input device: %s", r.path)
	f, err := os.OpenFile(r.path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open input device %s: %w", r.path, err)
	}
	r.file = f

	if held, err := r.readInitialState(); err != nil {
		r.logger.Warnf("Failed to read initial key state: %v", err)
	} else {
		for _, k := range held {
			r.logger.Infof("Initial state: %s is held", k)
		}
	}

	r.wg.Add(1)
	go r.monitor()
	return nil
}

func (r *KeyReader) readInitialState() ([]keys.Key, error) {
	buffer := make([]byte, keyStateLen)
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		r.file.Fd(),
		uintptr(eviocgkey),
		uintptr(unsafe.Pointer(&buffer[0])),
	)
	if errno != 0 {
		return nil, fmt.Errorf("EVIOCGKEY ioctl failed: %v", errno)
	}
	return pressedIn(buffer), nil
}

func (r *KeyReader) monitor() {
	defer r.wg.Done()

	buffer := make([]byte, inputEventSize)
	for {
		_, err := io.ReadFull(r.file, buffer)
		if err != nil {
			select {
			case <-r.done:
				return
			default:
			}
			if errors.Is(err, os.ErrClosed) {
				return
			}
			r.logger.Warnf("Error reading input: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		raw, _ := decodeInputEvent(buffer)
		ev, ok := keyEvent(raw)
		if !ok {
			continue
		}
		select {
		case r.events <- ev:
		default:
			r.logger.Warnf("Key queue full, dropping %s", ev.Key)
		}
	}
}

// Next returns a queued key event without blocking.
func (r *KeyReader) Next() (keys.Event, bool) {
	select {
	case ev := <-r.events:
		return ev, true
	default:
		return keys.Event{}, false
	}
}

func (r *KeyReader) Close() {
	if r.file == nil {
		return
	}
	close(r.done)
	r.file.Close()
	r.wg.Wait()
	r.file = nil
}
