// File: internal/core/system.go
package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/librescoot/librefsm"

	"macropad-service/internal/config"
	"macropad-service/internal/logger"
	"macropad-service/internal/protocol"
	"macropad-service/internal/types"
)

// DefaultTickInterval is the pause between two control loop iterations.
const DefaultTickInterval = 100 * time.Millisecond

// logQueueSize bounds log messages waiting to be forwarded to the host.
const logQueueSize = 32

// EncoderReading is the encoder state seen on the previous tick.
type EncoderReading struct {
	Switch   bool
	Position int
}

type MacroPad struct {
	store    *config.Store
	io       HardwareIO
	keyboard Keyboard
	link     Link
	mirror   Mirror
	logger   *logger.Logger
	machine  *librefsm.Machine
	handlers map[string]commandHandler

	mu      sync.Mutex
	nav     Navigation
	pending navRequest
	dirty   bool

	logs    chan protocol.Log
	started bool
}

// NewMacroPad wires the control loop. keyboard and mirror may be nil.
func NewMacroPad(store *config.Store, io HardwareIO, keyboard Keyboard, link Link, mirror Mirror, l *logger.Logger) *MacroPad {
	m := &MacroPad{
		store:    store,
		io:       io,
		keyboard: keyboard,
		link:     link,
		mirror:   mirror,
		logger:   l,
		nav:      Navigation{View: types.ViewHome},
		logs:     make(chan protocol.Log, logQueueSize),
	}
	m.handlers = m.commandHandlers()
	return m
}

// Start brings up the hardware and the state machine, announces the
// device to the host and draws the first frame.
func (m *MacroPad) Start(ctx context.Context) error {
	m.logger.Infof("Starting macro pad")

	if err := m.io.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize hardware: %w", err)
	}

	if err := m.initFSM(ctx); err != nil {
		m.io.Cleanup()
		return fmt.Errorf("failed to start state machine: %w", err)
	}

	m.send(protocol.TypeConnect, nil)
	m.logger.SetSink(m.forwardLog)
	m.started = true

	m.publishView()
	m.render()
	m.logger.Infof("Macro pad started with %d profiles", m.store.Len())
	return nil
}

// Stop says goodbye to the host and releases the hardware. It is safe to
// call more than once.
func (m *MacroPad) Stop() {
	if !m.started {
		return
	}
	m.started = false
	m.flushLogs()
	m.logger.SetSink(nil)
	m.send(protocol.TypeDisconnect, nil)
	m.io.Cleanup()
	m.logger.Infof("Macro pad stopped")
}

// Run starts the pad and ticks until ctx is cancelled. The disconnect
// notification is sent on every exit path once Start succeeded. A panic
// outside a command handler stops the loop and is reported to the host as
// critical before the disconnect.
func (m *MacroPad) Run(ctx context.Context, interval time.Duration) (err error) {
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Criticalf("Control loop crashed: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("control loop crashed: %v", r)
		}
	}()

	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	reading := m.ReadEncoder()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			reading = m.Tick(reading)
		}
	}
}

// ReadEncoder samples the encoder.
func (m *MacroPad) ReadEncoder() EncoderReading {
	return EncoderReading{Switch: m.io.EncoderSwitch(), Position: m.io.EncoderPosition()}
}

// Tick runs one loop iteration: at most one inbound command, then at most
// one key event, then the encoder, then a redraw if anything changed. The
// returned reading is passed to the next Tick.
func (m *MacroPad) Tick(prev EncoderReading) EncoderReading {
	m.flushLogs()

	if line, ok := m.nextLine(); ok {
		if p, ok := protocol.Parse(line); ok {
			m.dispatch(p)
		} else {
			m.logger.Debugf("Ignoring incomplete line %q", line)
		}
	}

	if ev, ok := m.io.NextKeyEvent(); ok {
		m.handleKey(ev)
	}

	cur := m.ReadEncoder()
	if nav := m.Navigation(); nav.View == types.ViewActive {
		mode := modeOf(nav)
		if cur.Switch != prev.Switch {
			m.send(protocol.TypeEvent, protocol.NewEncoderSwitchEvent(mode, cur.Switch))
		}
		if cur.Position != prev.Position {
			m.send(protocol.TypeEvent, protocol.NewEncoderValueEvent(mode, cur.Position))
		}
	}

	m.mu.Lock()
	dirty := m.dirty
	m.mu.Unlock()
	if dirty {
		m.render()
	}

	m.flushLogs()
	return cur
}

func (m *MacroPad) nextLine() (string, bool) {
	if line, ok := m.link.ReadLine(); ok {
		return line, true
	}
	if m.mirror != nil {
		return m.mirror.ReadLine()
	}
	return "", false
}

// send encodes and writes one outbound frame, mirroring it to Redis.
func (m *MacroPad) send(typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		m.logger.Errorf("%v", err)
		return
	}
	if err := m.link.WriteFrame(frame); err != nil {
		m.logger.Warnf("Failed to send %s frame: %v", typ, err)
	}
	if m.mirror != nil {
		if err := m.mirror.PublishFrame(frame); err != nil {
			m.logger.Debugf("Failed to mirror %s frame: %v", typ, err)
		}
	}
}

// forwardLog is the logger sink. It may run on any goroutine, so messages
// are queued and written by the loop.
func (m *MacroPad) forwardLog(level logger.LogLevel, message string) {
	select {
	case m.logs <- protocol.Log{Content: message, Level: protocolLevel(level)}:
	default:
	}
}

// flushLogs writes queued log messages. Write failures are not logged
// again, which would only queue another message.
func (m *MacroPad) flushLogs() {
	for {
		select {
		case entry := <-m.logs:
			frame, err := protocol.Encode(protocol.TypeLog, entry)
			if err != nil {
				continue
			}
			m.link.WriteFrame(frame)
			if m.mirror != nil {
				m.mirror.PublishFrame(frame)
			}
		default:
			return
		}
	}
}

func protocolLevel(level logger.LogLevel) types.LogLevel {
	switch level {
	case logger.LogLevelDebug:
		return types.LevelDebug
	case logger.LogLevelInfo:
		return types.LevelInfo
	case logger.LogLevelWarning:
		return types.LevelWarning
	case logger.LogLevelCritical:
		return types.LevelCritical
	default:
		return types.LevelError
	}
}

func (m *MacroPad) requestRefresh() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

// render draws the current navigation state.
func (m *MacroPad) render() {
	m.mu.Lock()
	nav := m.nav
	m.dirty = false
	m.mu.Unlock()

	frame := m.frameFor(nav)
	if err := m.io.Show(frame); err != nil {
		m.logger.Warnf("Failed to update display: %v", err)
	}
}

func (m *MacroPad) publishView() {
	if m.mirror == nil {
		return
	}
	nav := m.Navigation()
	if err := m.mirror.PublishView(nav.View, nav.Active, nav.Page); err != nil {
		m.logger.Debugf("Failed to publish view: %v", err)
	}
}
