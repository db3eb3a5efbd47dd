// Package config owns the persisted profiles and color scheme.
package config

import (
	"encoding/json"
	"fmt"

	"macropad-service/internal/logger"
)

// PageSize is the number of profiles shown per home page.
const PageSize = 9

// Backend persists whole documents. Commit always rewrites everything.
type Backend interface {
	Load() (Document, error)
	Commit(doc Document) error
	Close() error
}

// Store is the in-memory document plus the backend it is committed to.
// It is not safe for concurrent use; the control loop is its only user.
type Store struct {
	backend Backend
	doc     Document
	logger  *logger.Logger
}

// Open loads the document from backend. Any load failure falls back to
// the default document, which is committed before returning. Only a failed
// commit of that default is reported.
func Open(backend Backend, l *logger.Logger) (*Store, error) {
	s := &Store{backend: backend, logger: l}

	doc, err := backend.Load()
	if err == nil {
		s.doc = doc
		l.Infof("Loaded %d profiles", len(doc.Modes))
		return s, nil
	}

	l.Warnf("Failed to load store, creating default: %v", err)
	s.doc = DefaultDocument()
	if err := s.commit(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) commit() error {
	if err := s.backend.Commit(s.doc); err != nil {
		return fmt.Errorf("failed to commit store: %w", err)
	}
	return nil
}

// Document returns a deep copy of the current document.
func (s *Store) Document() Document {
	return s.doc.clone()
}

func (s *Store) Colors() ColorScheme {
	return s.doc.Colors
}

func (s *Store) Len() int {
	return len(s.doc.Modes)
}

// At returns the profile at position i in navigation order.
func (s *Store) At(i int) (Profile, bool) {
	if i < 0 || i >= len(s.doc.Modes) {
		return Profile{}, false
	}
	return s.doc.Modes[i].clone(), true
}

func (s *Store) Profiles() []Profile {
	return s.Document().Modes
}

func (s *Store) Get(key string) (Profile, bool) {
	for _, p := range s.doc.Modes {
		if p.Key == key {
			return p.clone(), true
		}
	}
	return Profile{}, false
}

// IndexOf returns the position of p's key, or false if it is no longer
// stored.
func (s *Store) IndexOf(p Profile) (int, bool) {
	for i, m := range s.doc.Modes {
		if m.Is(p) {
			return i, true
		}
	}
	return 0, false
}

// Next is the cyclic successor of p. A profile that is not stored is
// returned unchanged.
func (s *Store) Next(p Profile) Profile {
	i, ok := s.IndexOf(p)
	if !ok {
		return p
	}
	return s.doc.Modes[(i+1)%len(s.doc.Modes)].clone()
}

// Previous is the cyclic predecessor of p. A profile that is not stored is
// returned unchanged.
func (s *Store) Previous(p Profile) Profile {
	i, ok := s.IndexOf(p)
	if !ok {
		return p
	}
	n := len(s.doc.Modes)
	return s.doc.Modes[(i-1+n)%n].clone()
}

// PageCount is the number of home pages holding at least one profile,
// never less than one.
func (s *Store) PageCount() int {
	n := len(s.doc.Modes)
	if n == 0 {
		return 1
	}
	return (n-1)/PageSize + 1
}

// Page returns the profiles on home page page.
func (s *Store) Page(page int) []Profile {
	start := page * PageSize
	if page < 0 || start >= len(s.doc.Modes) {
		return nil
	}
	end := start + PageSize
	if end > len(s.doc.Modes) {
		end = len(s.doc.Modes)
	}
	out := make([]Profile, 0, end-start)
	for _, p := range s.doc.Modes[start:end] {
		out = append(out, p.clone())
	}
	return out
}

// Write replaces the profile with the same key in place, or appends it.
func (s *Store) Write(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.clone()
	if i, ok := s.IndexOf(p); ok {
		s.doc.Modes[i] = p
	} else {
		s.doc.Modes = append(s.doc.Modes, p)
	}
	return s.commit()
}

// Delete removes key if present. Deleting an unknown key still commits.
func (s *Store) Delete(key string) error {
	kept := s.doc.Modes[:0]
	for _, p := range s.doc.Modes {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	s.doc.Modes = kept
	return s.commit()
}

func (s *Store) Clear() error {
	s.doc.Modes = []Profile{}
	return s.commit()
}

// SetColor overwrites one scheme field. value is a Color for the four
// named colors and a float64 in [0, 1] for brightness.
func (s *Store) SetColor(name string, value any) error {
	colors := s.doc.Colors
	switch name {
	case ColorBrightness:
		b, ok := value.(float64)
		if !ok || b < 0 || b > 1 {
			return fmt.Errorf("%w: brightness %v", ErrInvalidColor, value)
		}
		colors.Brightness = b
	case ColorPrevious, ColorSelect, ColorNext, ColorDefault:
		c, ok := value.(Color)
		if !ok {
			return fmt.Errorf("%w: %s expects an RGB triple, got %T", ErrInvalidColor, name, value)
		}
		switch name {
		case ColorPrevious:
			colors.Previous = c
		case ColorSelect:
			colors.Select = c
		case ColorNext:
			colors.Next = c
		case ColorDefault:
			colors.Default = c
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	s.doc.Colors = colors
	return s.commit()
}

// ParseColorValue decodes the JSON value of a set_color request for name.
func ParseColorValue(name string, raw json.RawMessage) (any, error) {
	switch name {
	case ColorBrightness:
		var b float64
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidColor, err)
		}
		return b, nil
	case ColorPrevious, ColorSelect, ColorNext, ColorDefault:
		var c Color
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}
