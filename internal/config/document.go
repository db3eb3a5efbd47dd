package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Names accepted by SetColor.
const (
	ColorPrevious   = "previous"
	ColorSelect     = "select"
	ColorNext       = "next"
	ColorDefault    = "default"
	ColorBrightness = "brightness"
)

// ColorScheme drives the indicator lights.
type ColorScheme struct {
	Previous   Color   `json:"previous"`
	Select     Color   `json:"select"`
	Next       Color   `json:"next"`
	Default    Color   `json:"default"`
	Brightness float64 `json:"brightness"`
}

// IsColorName reports whether name is a recognised scheme field.
func IsColorName(name string) bool {
	switch name {
	case ColorPrevious, ColorSelect, ColorNext, ColorDefault, ColorBrightness:
		return true
	}
	return false
}

// Document is the persisted record: every profile plus the color scheme.
type Document struct {
	Colors ColorScheme `json:"colors"`
	Modes  []Profile   `json:"modes"`
}

func DefaultDocument() Document {
	return Document{
		Colors: ColorScheme{Brightness: 1},
		Modes:  []Profile{},
	}
}

func (d Document) clone() Document {
	out := Document{Colors: d.Colors, Modes: make([]Profile, len(d.Modes))}
	for i, p := range d.Modes {
		out.Modes[i] = p.clone()
	}
	return out
}

// Validate checks the invariants a loaded document must hold: every
// profile has a key and no key appears twice.
func (d Document) Validate() error {
	seen := make(map[string]bool, len(d.Modes))
	for i, p := range d.Modes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("mode %d: %w", i, err)
		}
		if seen[p.Key] {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidProfile, p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// DecodeDocument parses and validates a persisted document. Both top
// level fields are required.
func DecodeDocument(data []byte) (Document, error) {
	var raw struct {
		Colors *ColorScheme `json:"colors"`
		Modes  *[]Profile   `json:"modes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("failed to parse document: %w", err)
	}
	if raw.Colors == nil {
		return Document{}, errors.New("document has no colors")
	}
	if raw.Modes == nil {
		return Document{}, errors.New("document has no modes")
	}

	doc := Document{Colors: *raw.Colors, Modes: *raw.Modes}
	doc.Colors.Brightness = clampBrightness(doc.Colors.Brightness)
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func EncodeDocument(d Document) ([]byte, error) {
	if d.Modes == nil {
		d.Modes = []Profile{}
	}
	return json.Marshal(d)
}

func clampBrightness(b float64) float64 {
	switch {
	case b < 0:
		return 0
	case b > 1:
		return 1
	}
	return b
}
