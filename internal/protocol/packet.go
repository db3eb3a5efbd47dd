// Package protocol is the line framing spoken with the host over the
// serial link.
//
// Inbound frames are COMMAND[:JSON]; and outbound frames are TYPE:JSON;\n.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"macropad-service/internal/keys"
	"macropad-service/internal/types"
)

// Outbound packet types.
const (
	TypeConnect    = "connect"
	TypeDisconnect = "disconnect"
	TypeRecv       = "recv"
	TypeLog        = "log"
	TypeEvent      = "event"
	TypeConfig     = "config"
)

// Inbound commands.
const (
	CmdSetColor   = "set_color"
	CmdWriteMode  = "write_mode"
	CmdDeleteMode = "delete_mode"
	CmdClearModes = "clear_modes"
	CmdSetMode    = "set_mode"
	CmdSetHome    = "set_home"
	CmdReadConfig = "read_config"
)

// Event payload types.
const (
	EventKey           = "key"
	EventEncoderSwitch = "encoder.switch"
	EventEncoderValue  = "encoder.value"
	EventMode          = "mode"
)

const terminator = ";"

// Packet is a decoded inbound frame. Data is nil when the frame had no
// body or the body was not valid JSON.
type Packet struct {
	Name string
	Data json.RawMessage
}

// Parse decodes one line. It reports false for lines that are not a
// complete frame; a malformed body never makes Parse fail.
func Parse(line string) (Packet, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, terminator) {
		return Packet{}, false
	}

	name, body, _ := strings.Cut(line, ":")
	p := Packet{Name: strings.ToLower(strings.TrimRight(name, terminator))}

	body = strings.TrimRight(strings.TrimSpace(body), terminator)
	body = strings.TrimSpace(body)
	if body != "" && json.Valid([]byte(body)) {
		p.Data = json.RawMessage(body)
	}
	return p, true
}

// Decode unmarshals the packet body into v. A packet without a body is an
// error.
func (p Packet) Decode(v any) error {
	if p.Data == nil {
		return fmt.Errorf("%s: no payload", p.Name)
	}
	dec := json.NewDecoder(bytes.NewReader(p.Data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	return nil
}

// Encode builds an outbound frame. A nil payload leaves the body empty.
func Encode(typ string, payload any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(strings.ToUpper(typ))
	buf.WriteByte(':')
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", typ, err)
		}
		buf.Write(data)
	}
	buf.WriteString(terminator + "\n")
	return buf.Bytes(), nil
}

// Recv acknowledges an inbound command. A nil Data encodes as null.
type Recv struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
}

type Log struct {
	Content string         `json:"content"`
	Level   types.LogLevel `json:"level"`
}

// KeyRef is how a key appears in a key event.
type KeyRef struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

func RefOf(k keys.Key) KeyRef {
	return KeyRef{Code: k.Code, Name: k.Name}
}

// Mode is the active profile key, or nil in Home.
type Mode = *string

type KeyEvent struct {
	Mode Mode   `json:"mode"`
	Type string `json:"type"`
	Key  KeyRef `json:"key"`
}

type EncoderSwitchEvent struct {
	Mode    Mode   `json:"mode"`
	Type    string `json:"type"`
	Pressed bool   `json:"pressed"`
}

type EncoderValueEvent struct {
	Mode  Mode   `json:"mode"`
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type ModeEvent struct {
	Mode Mode   `json:"mode"`
	Type string `json:"type"`
}

func NewKeyEvent(mode Mode, k keys.Key) KeyEvent {
	return KeyEvent{Mode: mode, Type: EventKey, Key: RefOf(k)}
}

func NewEncoderSwitchEvent(mode Mode, pressed bool) EncoderSwitchEvent {
	return EncoderSwitchEvent{Mode: mode, Type: EventEncoderSwitch, Pressed: pressed}
}

func NewEncoderValueEvent(mode Mode, value int) EncoderValueEvent {
	return EncoderValueEvent{Mode: mode, Type: EventEncoderValue, Value: value}
}

func NewModeEvent(mode Mode) ModeEvent {
	return ModeEvent{Mode: mode, Type: EventMode}
}
