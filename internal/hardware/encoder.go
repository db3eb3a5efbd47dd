package hardware

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"macropad-service/internal/logger"
)

// quadrature maps (previous AB << 2 | current AB) to a step. Invalid
// transitions, where both phases changed, count as zero.
var quadrature = [16]int{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

func quadratureStep(prev, cur uint8) int {
	return quadrature[(prev&3)<<2|cur&3]
}

// detents converts raw transitions to whole clicks, rounding toward
// negative infinity so the position does not stick around zero.
func detents(raw int) int {
	if raw < 0 {
		return -((-raw + EncoderDivisor - 1) / EncoderDivisor)
	}
	return raw / EncoderDivisor
}

// Encoder decodes a quadrature rotary encoder with a push switch from
// three GPIO lines.
type Encoder struct {
	logger *logger.Logger
	chip   *gpiocdev.Chip
	a, b   *gpiocdev.Line
	sw     *gpiocdev.Line

	mu      sync.Mutex
	state   uint8
	raw     int
	pressed bool
}

func NewEncoder(l *logger.Logger) *Encoder {
	return &Encoder{logger: l}
}

func (e *Encoder) Open(chipName string, offA, offB, offSw int) error {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return fmt.Errorf("failed to open GPIO chip %s: %w", chipName, err)
	}

	phaseOpts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(e.handlePhase),
		gpiocdev.WithConsumer(Consumer),
	}
	var a, b, sw *gpiocdev.Line
	fail := func(format string, args ...any) error {
		closeLines(a, b, sw)
		chip.Close()
		return fmt.Errorf(format, args...)
	}
	if a, err = chip.RequestLine(offA, phaseOpts...); err != nil {
		return fail("failed to request encoder line %d: %w", offA, err)
	}
	if b, err = chip.RequestLine(offB, phaseOpts...); err != nil {
		return fail("failed to request encoder line %d: %w", offB, err)
	}
	sw, err = chip.RequestLine(offSw,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.AsActiveLow,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(5*time.Millisecond),
		gpiocdev.WithEventHandler(e.handleSwitch),
		gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return fail("failed to request encoder switch line %d: %w", offSw, err)
	}

	e.mu.Lock()
	e.chip, e.a, e.b, e.sw = chip, a, b, sw
	e.state = e.readPhasesLocked()
	if v, err := sw.Value(); err == nil {
		e.pressed = v == 1
	}
	e.mu.Unlock()

	e.logger.Infof("Configured encoder: chip=%s a=%d b=%d sw=%d", chipName, offA, offB, offSw)
	return nil
}

func (e *Encoder) readPhasesLocked() uint8 {
	var state uint8
	if e.a != nil {
		if v, err := e.a.Value(); err == nil && v == 1 {
			state |= 2
		}
	}
	if e.b != nil {
		if v, err := e.b.Value(); err == nil && v == 1 {
			state |= 1
		}
	}
	return state
}

func (e *Encoder) handlePhase(evt gpiocdev.LineEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.a == nil || e.b == nil {
		return
	}
	cur := e.readPhasesLocked()
	e.raw += quadratureStep(e.state, cur)
	e.state = cur
}

func (e *Encoder) handleSwitch(evt gpiocdev.LineEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Active low: a rising edge of the logical value is a press.
	e.pressed = evt.Type == gpiocdev.LineEventRisingEdge
}

// Position is the number of detents turned since Open.
func (e *Encoder) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return detents(e.raw)
}

func (e *Encoder) Pressed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pressed
}

// Close releases the lines. Edge handlers still running see the lines
// gone and return, so the lock is not held while closing.
func (e *Encoder) Close() {
	e.mu.Lock()
	chip, a, b, sw := e.chip, e.a, e.b, e.sw
	e.chip, e.a, e.b, e.sw = nil, nil, nil, nil
	e.mu.Unlock()

	closeLines(a, b, sw)
	if chip != nil {
		chip.Close()
	}
}

func closeLines(lines ...*gpiocdev.Line) {
	for _, line := range lines {
		if line != nil {
			line.Close()
		}
	}
}
