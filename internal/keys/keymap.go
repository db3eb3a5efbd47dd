// Package keys is the static table of the pad's twelve buttons.
package keys

import "fmt"

// Pin is the evdev key code the gpio-keys overlay reports for a switch.
type Pin uint16

// Evdev codes assigned to the switches, KEY_F13 through KEY_F24.
const (
	PinKey1  Pin = 183
	PinKey2  Pin = 184
	PinKey3  Pin = 185
	PinKey4  Pin = 186
	PinKey5  Pin = 187
	PinKey6  Pin = 188
	PinKey7  Pin = 189
	PinKey8  Pin = 190
	PinKey9  Pin = 191
	PinKey10 Pin = 192
	PinKey11 Pin = 193
	PinKey12 Pin = 194
)

// Key identifies one physical button.
type Key struct {
	Code    int
	Name    string
	Pin     Pin
	Special bool
}

// SpecialCount is the number of navigation buttons preceding the action
// buttons in ordinal order.
const SpecialCount = 3

// ActionCount is the number of action buttons.
const ActionCount = 9

var (
	Previous = Key{Code: 0, Name: "previous", Pin: PinKey1, Special: true}
	Select   = Key{Code: 1, Name: "select", Pin: PinKey2, Special: true}
	Next     = Key{Code: 2, Name: "next", Pin: PinKey3, Special: true}

	Action1 = Key{Code: 3, Name: "action_1", Pin: PinKey4}
	Action2 = Key{Code: 4, Name: "action_2", Pin: PinKey5}
	Action3 = Key{Code: 5, Name: "action_3", Pin: PinKey6}
	Action4 = Key{Code: 6, Name: "action_4", Pin: PinKey7}
	Action5 = Key{Code: 7, Name: "action_5", Pin: PinKey8}
	Action6 = Key{Code: 8, Name: "action_6", Pin: PinKey9}
	Action7 = Key{Code: 9, Name: "action_7", Pin: PinKey10}
	Action8 = Key{Code: 10, Name: "action_8", Pin: PinKey11}
	Action9 = Key{Code: 11, Name: "action_9", Pin: PinKey12}
)

var table = [...]Key{
	Previous, Select, Next,
	Action1, Action2, Action3,
	Action4, Action5, Action6,
	Action7, Action8, Action9,
}

// All returns the registry in ordinal order.
func All() []Key {
	out := make([]Key, len(table))
	copy(out, table[:])
	return out
}

func ByCode(code int) (Key, bool) {
	if code < 0 || code >= len(table) {
		return Key{}, false
	}
	return table[code], true
}

func ByName(name string) (Key, bool) {
	for _, k := range table {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

func ByPin(pin Pin) (Key, bool) {
	for _, k := range table {
		if k.Pin == pin {
			return k, true
		}
	}
	return Key{}, false
}

// Equal compares the identifying fields only.
func (k Key) Equal(o Key) bool {
	return k.Code == o.Code && k.Name == o.Name
}

// ActionIndex returns the 0-based action slot, or -1 for special keys.
func (k Key) ActionIndex() int {
	if k.Special {
		return -1
	}
	return k.Code - SpecialCount
}

func (k Key) String() string {
	return k.Name
}

func (k Key) GoString() string {
	return fmt.Sprintf("keys.Key{%d %q}", k.Code, k.Name)
}

// Event is one press or release reported by the hardware layer.
type Event struct {
	Key     Key
	Pressed bool
}
