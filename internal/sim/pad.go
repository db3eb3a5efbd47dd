// Package sim stands in for the pad's hardware with a terminal UI, so the
// control loop and a host tool can be exercised on a workstation.
package sim

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"macropad-service/internal/display"
	"macropad-service/internal/keys"
)

const eventQueue = 32

// frameMsg carries a new frame to the UI.
type frameMsg display.Frame

// keystrokeMsg reports a keystroke the pad sent to the computer.
type keystrokeMsg string

// Pad is the simulated hardware. The control loop talks to it through
// the hardware and keyboard interfaces; the UI feeds it input.
type Pad struct {
	mu       sync.Mutex
	events   chan keys.Event
	position int
	pressed  bool
	frame    display.Frame
	program  *tea.Program
	strokes  []string
}

func NewPad() *Pad {
	return &Pad{events: make(chan keys.Event, eventQueue)}
}

// Attach routes display and keystroke updates to the running UI.
func (p *Pad) Attach(program *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

func (p *Pad) Initialize() error { return nil }

func (p *Pad) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = display.Frame{}
}

func (p *Pad) NextKeyEvent() (keys.Event, bool) {
	select {
	case ev := <-p.events:
		return ev, true
	default:
		return keys.Event{}, false
	}
}

func (p *Pad) EncoderSwitch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pressed
}

func (p *Pad) EncoderPosition() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *Pad) Show(f display.Frame) error {
	p.mu.Lock()
	p.frame = f
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(frameMsg(f))
	}
	return nil
}

// Press records a keystroke combination instead of typing it.
func (p *Pad) Press(names []string) error {
	combo := strings.Join(names, "+")
	p.mu.Lock()
	p.strokes = append(p.strokes, combo)
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(keystrokeMsg(combo))
	}
	return nil
}

// Frame returns the last frame shown.
func (p *Pad) Frame() display.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Keystrokes returns every combination pressed so far.
func (p *Pad) Keystrokes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.strokes...)
}

// Tap queues a press and a release of k. Terminals report no key
// releases, so both are sent at once. It reports false when the queue is
// full.
func (p *Pad) Tap(k keys.Key) bool {
	select {
	case p.events <- keys.Event{Key: k, Pressed: true}:
	default:
		return false
	}
	select {
	case p.events <- keys.Event{Key: k, Pressed: false}:
	default:
	}
	return true
}

// Turn moves the encoder by delta detents.
func (p *Pad) Turn(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position += delta
}

// ToggleSwitch flips the encoder switch and returns its new state.
func (p *Pad) ToggleSwitch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pressed = !p.pressed
	return p.pressed
}
