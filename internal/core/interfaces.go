package core

import (
	"macropad-service/internal/display"
	"macropad-service/internal/keys"
	"macropad-service/internal/types"
)

// HardwareIO defines the interface for the pad's physical I/O needed by MacroPad
type HardwareIO interface {
	Initialize() error
	Cleanup()

	// Inputs
	NextKeyEvent() (keys.Event, bool)
	EncoderSwitch() bool
	EncoderPosition() int

	// Outputs
	Show(frame display.Frame) error
}

// Keyboard sends a keystroke combination to the host as a USB keyboard
type Keyboard interface {
	Press(names []string) error
}

// Link carries protocol frames to and from the host
type Link interface {
	ReadLine() (string, bool)
	WriteFrame(frame []byte) error
	Close() error
}

// Mirror defines the optional Redis side channel: navigation state and
// outbound frames are published, and queued command lines are read back
type Mirror interface {
	PublishView(view types.ViewState, mode string, page int) error
	PublishFrame(frame []byte) error
	ReadLine() (string, bool)
	Close() error
}
