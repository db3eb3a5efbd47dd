// Package hid turns keystroke names into USB boot keyboard reports and
// writes them to the gadget's HID function.
package hid

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownKey = errors.New("unknown key name")

// Modifier bits of the first report byte.
const (
	ModLeftCtrl   = 1 << 0
	ModLeftShift  = 1 << 1
	ModLeftAlt    = 1 << 2
	ModLeftGUI    = 1 << 3
	ModRightCtrl  = 1 << 4
	ModRightShift = 1 << 5
	ModRightAlt   = 1 << 6
	ModRightGUI   = 1 << 7
)

// Usage IDs from the keyboard/keypad page.
const (
	KeyA           = 0x04
	Key1           = 0x1E
	Key0           = 0x27
	KeyEnter       = 0x28
	KeyEscape      = 0x29
	KeyBackspace   = 0x2A
	KeyTab         = 0x2B
	KeySpace       = 0x2C
	KeyMinus       = 0x2D
	KeyEqual       = 0x2E
	KeyLeftBrace   = 0x2F
	KeyRightBrace  = 0x30
	KeyBackslash   = 0x31
	KeySemicolon   = 0x33
	KeyQuote       = 0x34
	KeyGrave       = 0x35
	KeyComma       = 0x36
	KeyDot         = 0x37
	KeySlash       = 0x38
	KeyCapsLock    = 0x39
	KeyF1          = 0x3A
	KeyF13         = 0x68
	KeyPrintScreen = 0x46
	KeyScrollLock  = 0x47
	KeyPause       = 0x48
	KeyInsert      = 0x49
	KeyHome        = 0x4A
	KeyPageUp      = 0x4B
	KeyDelete      = 0x4C
	KeyEnd         = 0x4D
	KeyPageDown    = 0x4E
	KeyRight       = 0x4F
	KeyLeft        = 0x50
	KeyDown        = 0x51
	KeyUp          = 0x52
	KeyMute        = 0x7F
	KeyVolumeUp    = 0x80
	KeyVolumeDown  = 0x81
)

var modifiers = map[string]uint8{
	"CTRL":          ModLeftCtrl,
	"CONTROL":       ModLeftCtrl,
	"LEFT_CONTROL":  ModLeftCtrl,
	"SHIFT":         ModLeftShift,
	"LEFT_SHIFT":    ModLeftShift,
	"ALT":           ModLeftAlt,
	"OPTION":        ModLeftAlt,
	"LEFT_ALT":      ModLeftAlt,
	"GUI":           ModLeftGUI,
	"WINDOWS":       ModLeftGUI,
	"COMMAND":       ModLeftGUI,
	"SUPER":         ModLeftGUI,
	"LEFT_GUI":      ModLeftGUI,
	"RIGHT_CONTROL": ModRightCtrl,
	"RIGHT_SHIFT":   ModRightShift,
	"RIGHT_ALT":     ModRightAlt,
	"ALTGR":         ModRightAlt,
	"RIGHT_GUI":     ModRightGUI,
}

var usages = map[string]uint8{
	"ENTER":         KeyEnter,
	"RETURN":        KeyEnter,
	"ESCAPE":        KeyEscape,
	"ESC":           KeyEscape,
	"BACKSPACE":     KeyBackspace,
	"TAB":           KeyTab,
	"SPACE":         KeySpace,
	"SPACEBAR":      KeySpace,
	"MINUS":         KeyMinus,
	"EQUALS":        KeyEqual,
	"LEFT_BRACKET":  KeyLeftBrace,
	"RIGHT_BRACKET": KeyRightBrace,
	"BACKSLASH":     KeyBackslash,
	"SEMICOLON":     KeySemicolon,
	"QUOTE":         KeyQuote,
	"GRAVE_ACCENT":  KeyGrave,
	"COMMA":         KeyComma,
	"PERIOD":        KeyDot,
	"FORWARD_SLASH": KeySlash,
	"CAPS_LOCK":     KeyCapsLock,
	"PRINT_SCREEN":  KeyPrintScreen,
	"SCROLL_LOCK":   KeyScrollLock,
	"PAUSE":         KeyPause,
	"INSERT":        KeyInsert,
	"HOME":          KeyHome,
	"PAGE_UP":       KeyPageUp,
	"DELETE":        KeyDelete,
	"END":           KeyEnd,
	"PAGE_DOWN":     KeyPageDown,
	"RIGHT_ARROW":   KeyRight,
	"RIGHT":         KeyRight,
	"LEFT_ARROW":    KeyLeft,
	"LEFT":          KeyLeft,
	"DOWN_ARROW":    KeyDown,
	"DOWN":          KeyDown,
	"UP_ARROW":      KeyUp,
	"UP":            KeyUp,
	"MUTE":          KeyMute,
	"VOLUME_UP":     KeyVolumeUp,
	"VOLUME_DOWN":   KeyVolumeDown,
}

func init() {
	for i := 0; i < 26; i++ {
		usages[string(rune('A'+i))] = uint8(KeyA + i)
	}
	// Digit usages run 1..9 then 0.
	for i := 1; i <= 9; i++ {
		usages[fmt.Sprint(i)] = uint8(Key1 + i - 1)
	}
	usages["0"] = Key0
	for i := 1; i <= 12; i++ {
		usages[fmt.Sprintf("F%d", i)] = uint8(KeyF1 + i - 1)
	}
	for i := 13; i <= 24; i++ {
		usages[fmt.Sprintf("F%d", i)] = uint8(KeyF13 + i - 13)
	}
}

// ParseCombo splits a combination such as "ctrl+shift+a" into upper-case
// key names. Empty segments are dropped.
func ParseCombo(combo string) []string {
	var names []string
	for _, part := range strings.Split(combo, "+") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Lookup resolves one key name into either a modifier bit or a usage ID.
func Lookup(name string) (modifier uint8, usage uint8, err error) {
	name = strings.ToUpper(name)
	if m, ok := modifiers[name]; ok {
		return m, 0, nil
	}
	if u, ok := usages[name]; ok {
		return 0, u, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}
