package hardware

import (
	"bytes"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"macropad-service/internal/display"
)

// KeyLights drives the chain of addressable LEDs under the keys, one per
// key in ordinal order.
type KeyLights struct {
	mu   sync.Mutex
	port spi.PortCloser
	dev  *nrzled.Dev
	last []byte
}

func OpenKeyLights(portName string) (*KeyLights, error) {
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", portName, err)
	}
	opts := nrzled.DefaultOpts
	opts.NumPixels = display.Lights
	opts.Channels = 3
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to initialize key lights: %w", err)
	}
	return &KeyLights{port: port, dev: dev}, nil
}

// Show writes the frame's lights. An unchanged frame is not resent.
func (l *KeyLights) Show(f display.Frame) error {
	pixels := lightBytes(f)

	l.mu.Lock()
	defer l.mu.Unlock()
	if bytes.Equal(pixels, l.last) {
		return nil
	}
	if _, err := l.dev.Write(pixels); err != nil {
		return fmt.Errorf("failed to write key lights: %w", err)
	}
	l.last = pixels
	return nil
}

// Off blanks every light.
func (l *KeyLights) Off() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = nil
	_, err := l.dev.Write(make([]byte, display.Lights*3))
	return err
}

func (l *KeyLights) Close() {
	if err := l.Off(); err == nil {
		l.dev.Halt()
	}
	l.port.Close()
}
