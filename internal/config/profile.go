package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrUnknownColor    = errors.New("unknown color name")
	ErrInvalidColor    = errors.New("invalid color value")
)

// Color is an RGB triple, encoded as [r, g, b].
type Color [3]uint8

var Black = Color{0, 0, 0}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{int(c[0]), int(c[1]), int(c[2])})
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("%w: want 3 components, got %d", ErrInvalidColor, len(parts))
	}
	for i, v := range parts {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: component %d out of range: %d", ErrInvalidColor, i, v)
		}
		c[i] = uint8(v)
	}
	return nil
}

// BindingKind tags the three shapes a key slot can take.
type BindingKind uint8

const (
	// BindingNone is an unbound slot, persisted as null.
	BindingNone BindingKind = iota
	// BindingLabel is a bare label string; pressing it reports to the host.
	BindingLabel
	// BindingAction is a {label, keys?, color?} record.
	BindingAction
)

func (k BindingKind) String() string {
	switch k {
	case BindingNone:
		return "none"
	case BindingLabel:
		return "label"
	case BindingAction:
		return "action"
	}
	return fmt.Sprintf("BindingKind(%d)", k)
}

// KeyBinding is the behavior of one action button within a profile.
type KeyBinding struct {
	Kind  BindingKind
	Label string
	// Keys is a keystroke combination such as "ctrl+shift+a". Empty means
	// the press is reported to the host instead.
	Keys  string
	Color *Color
}

func Unbound() KeyBinding {
	return KeyBinding{Kind: BindingNone}
}

func LabelBinding(label string) KeyBinding {
	return KeyBinding{Kind: BindingLabel, Label: label}
}

func ActionBinding(label, keys string, color *Color) KeyBinding {
	return KeyBinding{Kind: BindingAction, Label: label, Keys: keys, Color: color}
}

func (b KeyBinding) Bound() bool {
	return b.Kind != BindingNone
}

// Keystroke reports the combination to send locally, if any.
func (b KeyBinding) Keystroke() (string, bool) {
	if b.Kind == BindingAction && b.Keys != "" {
		return b.Keys, true
	}
	return "", false
}

type bindingRecord struct {
	Label *string `json:"label"`
	Keys  *string `json:"keys,omitempty"`
	Color *Color  `json:"color,omitempty"`
}

func (b KeyBinding) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case BindingNone:
		return []byte("null"), nil
	case BindingLabel:
		return json.Marshal(b.Label)
	case BindingAction:
		rec := bindingRecord{Label: &b.Label, Color: b.Color}
		if b.Keys != "" {
			rec.Keys = &b.Keys
		}
		return json.Marshal(rec)
	}
	return nil, fmt.Errorf("unknown binding kind %d", b.Kind)
}

func (b *KeyBinding) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*b = Unbound()
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		if label != "" {
			*b = LabelBinding(label)
		}
		return nil
	case '{':
		var rec bindingRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if rec.Label == nil {
			return fmt.Errorf("%w: key record without label", ErrInvalidProfile)
		}
		keys := ""
		if rec.Keys != nil {
			keys = *rec.Keys
		}
		*b = ActionBinding(*rec.Label, keys, rec.Color)
		return nil
	}
	return fmt.Errorf("%w: unexpected key slot %s", ErrInvalidProfile, data)
}

// Profile is one named set of action-button bindings ("mode" on the wire).
type Profile struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	TitleShort string       `json:"title_short"`
	Color      *Color       `json:"color,omitempty"`
	Keys       []KeyBinding `json:"keys"`
}

// Is reports whether p and o name the same profile.
func (p Profile) Is(o Profile) bool {
	return p.Key == o.Key
}

// Binding returns slot i, or an unbound slot when i is out of range.
func (p Profile) Binding(i int) KeyBinding {
	if i < 0 || i >= len(p.Keys) {
		return Unbound()
	}
	return p.Keys[i]
}

// Label is the text shown for slot i.
func (p Profile) Label(i int) string {
	b := p.Binding(i)
	if !b.Bound() {
		return "--"
	}
	return b.Label
}

// Validate only requires a key. Long short titles are cut by the home grid
// and slots past the ninth are kept but never shown.
func (p Profile) Validate() error {
	if p.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidProfile)
	}
	return nil
}

func (p Profile) clone() Profile {
	out := p
	if p.Color != nil {
		c := *p.Color
		out.Color = &c
	}
	if p.Keys != nil {
		out.Keys = make([]KeyBinding, len(p.Keys))
		for i, b := range p.Keys {
			if b.Color != nil {
				c := *b.Color
				b.Color = &c
			}
			out.Keys[i] = b
		}
	}
	return out
}
