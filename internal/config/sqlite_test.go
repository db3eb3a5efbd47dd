package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pad.db")

	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	if _, err := backend.Load(); err == nil {
		t.Error("Expected load from an empty database to fail")
	}

	s, err := Open(backend, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	want := Profile{Key: "edit", Title: "Editing", TitleShort: "EDIT", Keys: []KeyBinding{ActionBinding("Undo", "ctrl+z", nil)}}
	if err := s.Write(want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Write(profile("second")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	doc, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Modes) != 2 {
		t.Fatalf("Expected 2 modes, got %d", len(doc.Modes))
	}
	if !reflect.DeepEqual(doc.Modes[0], want) {
		t.Errorf("Expected %+v, got %+v", want, doc.Modes[0])
	}
	if doc.Colors.Brightness != 1 {
		t.Errorf("Expected default brightness, got %v", doc.Colors.Brightness)
	}
}
