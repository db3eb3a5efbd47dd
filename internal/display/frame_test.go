package display

import (
	"fmt"
	"path/filepath"
	"testing"

	"macropad-service/internal/config"
	"macropad-service/internal/logger"
)

func newStore(t *testing.T, n int) *config.Store {
	t.Helper()
	s, err := config.Open(config.NewFileBackend(filepath.Join(t.TempDir(), "db.json")), logger.NewLogger(nil, logger.LogLevelNone))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for i := 0; i < n; i++ {
		p := config.Profile{Key: fmt.Sprintf("m%d", i), Title: fmt.Sprintf("Mode %d", i), TitleShort: fmt.Sprintf("M%d", i)}
		if i == 1 {
			c := config.Color{0, 0, 200}
			p.Color = &c
		}
		if err := s.Write(p); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	return s
}

func TestPadCenter(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"--", 4, " -- "},
		{"abc", 4, " abc"},
		{"a", 4, "  a "},
		{"  ab  ", 4, " ab "},
		{"toolong", 4, "tool"},
		{"", 3, "   "},
		{"HOME: 1", 20, "       HOME: 1      "},
	}
	for _, tt := range tests {
		if got := PadCenter(tt.text, tt.width); got != tt.want {
			t.Errorf("PadCenter(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHomeFrame(t *testing.T) {
	s := newStore(t, 4)
	if err := s.SetColor(config.ColorDefault, config.Color{9, 9, 9}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetColor(config.ColorSelect, config.Color{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	f := Home(s, 0, false)
	want := [Rows]string{
		"       HOME: 1      ",
		"<-     [ -- ]     ->",
		"[ M0 ] [ M1 ] [ M2 ]",
		"[ M3 ] [ -- ] [ -- ]",
		"[ -- ] [ -- ] [ -- ]",
	}
	if f.Lines != want {
		t.Errorf("Unexpected home frame:\n%s", f)
	}
	for i, line := range f.Lines {
		if len(line) != Columns {
			t.Errorf("Line %d has width %d", i, len(line))
		}
	}

	if f.Colors[1] != (config.Color{1, 2, 3}) {
		t.Errorf("Expected select light color, got %v", f.Colors[1])
	}
	if f.Colors[3] != (config.Color{9, 9, 9}) {
		t.Errorf("Expected default color for m0, got %v", f.Colors[3])
	}
	if f.Colors[4] != (config.Color{0, 0, 200}) {
		t.Errorf("Expected profile color for m1, got %v", f.Colors[4])
	}
	if f.Colors[7] != config.Black {
		t.Errorf("Expected empty slot to be dark, got %v", f.Colors[7])
	}

	if back := Home(s, 0, true); back.Lines[1] != "<-     [BACK]     ->" {
		t.Errorf("Expected back hint, got %q", back.Lines[1])
	}
}

func TestHomeFrameSecondPage(t *testing.T) {
	s := newStore(t, 11)
	f := Home(s, 1, false)
	if f.Lines[0] != PadCenter("HOME: 2", Columns) {
		t.Errorf("Unexpected title %q", f.Lines[0])
	}
	if f.Lines[2] != "[ M9 ] [ M10] [ -- ]" {
		t.Errorf("Unexpected first row %q", f.Lines[2])
	}
}

func TestProfileFrame(t *testing.T) {
	red := config.Color{255, 0, 0}
	p := config.Profile{
		Key:   "edit",
		Title: "Editing",
		Keys: []config.KeyBinding{
			config.ActionBinding("Copy", "ctrl+c", &red),
			config.Unbound(),
			config.LabelBinding("Ping"),
		},
	}
	colors := config.ColorScheme{Default: config.Color{5, 5, 5}, Brightness: 0.5}

	f := Profile(p, colors)
	want := [Rows]string{
		"       Editing      ",
		"<-     [HOME]     ->",
		"[Copy] [ -- ] [Ping]",
		"[ -- ] [ -- ] [ -- ]",
		"[ -- ] [ -- ] [ -- ]",
	}
	if f.Lines != want {
		t.Errorf("Unexpected profile frame:\n%s", f)
	}
	if f.Colors[3] != red {
		t.Errorf("Expected binding color, got %v", f.Colors[3])
	}
	if f.Colors[4] != config.Black {
		t.Errorf("Expected unbound slot to be dark, got %v", f.Colors[4])
	}
	if f.Colors[5] != (config.Color{5, 5, 5}) {
		t.Errorf("Expected default color, got %v", f.Colors[5])
	}
	if got := f.Scaled(3); got != (config.Color{128, 0, 0}) {
		t.Errorf("Expected scaled color [128 0 0], got %v", got)
	}
}
