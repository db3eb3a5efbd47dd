package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"macropad-service/internal/config"
	"macropad-service/internal/protocol"
	"macropad-service/internal/types"
)

// ErrInvalidPayload marks a command whose body is missing or malformed.
var ErrInvalidPayload = errors.New("invalid payload")

// CommandResult is how a command ended.
type CommandResult int

const (
	// ResultApplied means state changed; it is logged at info and the
	// display is redrawn.
	ResultApplied CommandResult = iota
	// ResultIgnored is a valid request with nothing to do. Nothing is
	// logged.
	ResultIgnored
	// ResultInvalid is a rejected payload, logged as a warning.
	ResultInvalid
	// ResultFault is a failure while applying, logged as an error.
	ResultFault
)

func (r CommandResult) String() string {
	switch r {
	case ResultApplied:
		return "applied"
	case ResultIgnored:
		return "ignored"
	case ResultInvalid:
		return "invalid"
	case ResultFault:
		return "fault"
	}
	return fmt.Sprintf("CommandResult(%d)", int(r))
}

// Outcome is what a command handler reports back to the dispatcher.
type Outcome struct {
	Result CommandResult
	Detail string
	Err    error
}

func applied(format string, args ...any) Outcome {
	return Outcome{Result: ResultApplied, Detail: fmt.Sprintf(format, args...)}
}

func ignored() Outcome {
	return Outcome{Result: ResultIgnored}
}

func invalid(err error) Outcome {
	if !errors.Is(err, ErrInvalidPayload) {
		err = fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return Outcome{Result: ResultInvalid, Err: err}
}

func fault(err error) Outcome {
	return Outcome{Result: ResultFault, Err: err}
}

type commandHandler func(p protocol.Packet) Outcome

func (m *MacroPad) commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		protocol.CmdSetColor:   m.handleSetColor,
		protocol.CmdWriteMode:  m.handleWriteMode,
		protocol.CmdDeleteMode: m.handleDeleteMode,
		protocol.CmdClearModes: m.handleClearModes,
		protocol.CmdSetMode:    m.handleSetMode,
		protocol.CmdSetHome:    m.handleSetHome,
		protocol.CmdReadConfig: m.handleReadConfig,
	}
}

// dispatch acknowledges p, runs its handler and reports the outcome.
func (m *MacroPad) dispatch(p protocol.Packet) Outcome {
	m.send(protocol.TypeRecv, protocol.Recv{Command: p.Name, Data: p.Data})

	handler, ok := m.handlers[p.Name]
	if !ok {
		m.logger.Warnf("Unknown command %q", p.Name)
		return ignored()
	}

	out := m.runHandler(handler, p)
	m.report(p.Name, out)
	return out
}

// runHandler contains a panicking handler to its own command.
func (m *MacroPad) runHandler(handler commandHandler, p protocol.Packet) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fault(fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()
	return handler(p)
}

func (m *MacroPad) report(command string, out Outcome) {
	switch out.Result {
	case ResultApplied:
		m.logger.Infof("%s", out.Detail)
		m.requestRefresh()
	case ResultInvalid:
		m.logger.Warnf("Ignoring %s: %v", command, out.Err)
	case ResultFault:
		m.logger.Errorf("Command %s failed: %v", command, out.Err)
	}
}

// decode fills v from the packet body. Any failure is a validation error.
func decode(p protocol.Packet, v any) error {
	if err := p.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// storeFailure classifies a store error: rejected input is invalid,
// anything else is a fault.
func storeFailure(err error) Outcome {
	if errors.Is(err, config.ErrInvalidProfile) || errors.Is(err, config.ErrInvalidColor) || errors.Is(err, config.ErrUnknownColor) {
		return invalid(err)
	}
	return fault(err)
}

func (m *MacroPad) handleSetColor(p protocol.Packet) Outcome {
	var req struct {
		Key   string          `json:"key"`
		Color json.RawMessage `json:"color"`
	}
	if err := decode(p, &req); err != nil {
		return invalid(err)
	}
	if !config.IsColorName(req.Key) {
		return invalid(fmt.Errorf("%w: %q", config.ErrUnknownColor, req.Key))
	}

	value, err := config.ParseColorValue(req.Key, req.Color)
	if err != nil {
		return invalid(err)
	}
	if err := m.store.SetColor(req.Key, value); err != nil {
		return storeFailure(err)
	}
	return applied("Set color %s", req.Key)
}

func (m *MacroPad) handleWriteMode(p protocol.Packet) Outcome {
	var profile config.Profile
	if err := decode(p, &profile); err != nil {
		return invalid(err)
	}
	if err := m.store.Write(profile); err != nil {
		return storeFailure(err)
	}
	m.clampPage()
	return applied("Saved mode %s", profile.Key)
}

func (m *MacroPad) handleDeleteMode(p protocol.Packet) Outcome {
	var req struct {
		Key string `json:"key"`
	}
	if err := decode(p, &req); err != nil {
		return invalid(err)
	}
	if req.Key == "" {
		return invalid(errors.New("missing key"))
	}

	wasActive := m.isActive(req.Key)
	if err := m.store.Delete(req.Key); err != nil {
		return fault(err)
	}
	if wasActive {
		m.goHome()
		m.sendModeEvent()
	}
	m.clampPage()
	return applied("Deleted mode %s", req.Key)
}

func (m *MacroPad) handleClearModes(p protocol.Packet) Outcome {
	wasActive := m.Navigation().View == types.ViewActive
	if err := m.store.Clear(); err != nil {
		return fault(err)
	}
	m.goHome()
	if wasActive {
		m.sendModeEvent()
	}
	return applied("Cleared all modes")
}

// handleSetMode activates a stored profile. An unknown key is ignored
// without a log entry.
func (m *MacroPad) handleSetMode(p protocol.Packet) Outcome {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decode(p, &req); err != nil {
		return invalid(err)
	}
	if !m.activate(req.Mode) {
		return ignored()
	}
	m.sendModeEvent()
	return applied("Activated mode %s", req.Mode)
}

func (m *MacroPad) handleSetHome(p protocol.Packet) Outcome {
	m.goHome()
	m.sendModeEvent()
	return applied("Returned home")
}

func (m *MacroPad) handleReadConfig(p protocol.Packet) Outcome {
	body, err := config.EncodeDocument(m.store.Document())
	if err != nil {
		return fault(err)
	}
	m.send(protocol.TypeConfig, json.RawMessage(body))
	return applied("Sent config")
}

func (m *MacroPad) isActive(key string) bool {
	nav := m.Navigation()
	return nav.View == types.ViewActive && nav.Active == key
}
