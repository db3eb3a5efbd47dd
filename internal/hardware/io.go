package hardware

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/host/v3"

	"macropad-service/internal/display"
	"macropad-service/internal/keys"
	"macropad-service/internal/logger"
)

// ErrNoDisplay is returned by Show when neither the screen nor the key
// lights came up.
var ErrNoDisplay = errors.New("no display available")

// LinuxHardwareIO is the pad's hardware on a Linux board: switches through
// gpio-keys, the encoder through the GPIO character device, the OLED on
// I2C and the key lights on SPI.
type LinuxHardwareIO struct {
	logger  *logger.Logger
	cfg     Config
	keys    *KeyReader
	encoder *Encoder
	screen  *Screen
	lights  *KeyLights
	mu      sync.Mutex
}

func NewLinuxHardwareIO(cfg Config, l *logger.Logger) *LinuxHardwareIO {
	return &LinuxHardwareIO{
		logger: l.WithTag("Hardware"),
		cfg:    cfg,
	}
}

// Initialize opens every device. Only the switches are required; a
// missing encoder, screen or light chain is logged and left out.
func (io *LinuxHardwareIO) Initialize() error {
	io.logger.Infof("Initializing hardware IO")

	io.mu.Lock()
	defer io.mu.Unlock()

	if _, err := host.Init(); err != nil {
		io.logger.Warnf("Failed to initialize periph host drivers: %v", err)
	}

	io.keys = NewKeyReader(io.cfg.InputDevice, io.logger)
	if err := io.keys.Open(); err != nil {
		io.keys = nil
		return fmt.Errorf("failed to open keys: %w", err)
	}

	enc := NewEncoder(io.logger)
	if err := enc.Open(io.cfg.GPIOChip, io.cfg.EncoderA, io.cfg.EncoderB, io.cfg.EncoderSw); err != nil {
		io.logger.Warnf("Encoder unavailable: %v", err)
	} else {
		io.encoder = enc
	}

	if screen, err := OpenScreen(io.cfg.I2CBus); err != nil {
		io.logger.Warnf("Screen unavailable: %v", err)
	} else {
		io.screen = screen
		io.logger.Infof("Configured screen on I2C bus %q", io.cfg.I2CBus)
	}

	if lights, err := OpenKeyLights(io.cfg.SPIPort); err != nil {
		io.logger.Warnf("Key lights unavailable: %v", err)
	} else {
		io.lights = lights
		io.logger.Infof("Configured %d key lights on SPI port %q", display.Lights, io.cfg.SPIPort)
	}

	return nil
}

func (io *LinuxHardwareIO) NextKeyEvent() (keys.Event, bool) {
	if io.keys == nil {
		return keys.Event{}, false
	}
	return io.keys.Next()
}

func (io *LinuxHardwareIO) EncoderSwitch() bool {
	if io.encoder == nil {
		return false
	}
	return io.encoder.Pressed()
}

func (io *LinuxHardwareIO) EncoderPosition() int {
	if io.encoder == nil {
		return 0
	}
	return io.encoder.Position()
}

// Show draws the text on the screen and sets the key lights. A failure of
// one device does not stop the other from updating.
func (io *LinuxHardwareIO) Show(f display.Frame) error {
	io.mu.Lock()
	defer io.mu.Unlock()

	if io.screen == nil && io.lights == nil {
		return ErrNoDisplay
	}

	var errs []error
	if io.screen != nil {
		errs = append(errs, io.screen.Show(f))
	}
	if io.lights != nil {
		errs = append(errs, io.lights.Show(f))
	}
	return errors.Join(errs...)
}

func (io *LinuxHardwareIO) Cleanup() {
	io.mu.Lock()
	defer io.mu.Unlock()

	io.logger.Infof("Cleaning up hardware resources")

	if io.keys != nil {
		io.keys.Close()
		io.keys = nil
		io.logger.Infof("Closed input device")
	}
	if io.encoder != nil {
		io.encoder.Close()
		io.encoder = nil
		io.logger.Infof("Closed encoder lines")
	}
	if io.lights != nil {
		io.lights.Close()
		io.lights = nil
		io.logger.Infof("Turned off key lights")
	}
	if io.screen != nil {
		io.screen.Close()
		io.screen = nil
		io.logger.Infof("Halted screen")
	}

	io.logger.Infof("Hardware cleanup complete")
}
