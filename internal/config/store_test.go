package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"macropad-service/internal/logger"
)

type memBackend struct {
	doc       Document
	loadErr   error
	commitErr error
	commits   []Document
}

func (m *memBackend) Load() (Document, error) {
	if m.loadErr != nil {
		return Document{}, m.loadErr
	}
	return m.doc.clone(), nil
}

func (m *memBackend) Commit(doc Document) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits = append(m.commits, doc.clone())
	return nil
}

func (m *memBackend) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.NewLogger(nil, logger.LogLevelError)
}

func profile(key string) Profile {
	return Profile{Key: key, Title: "Title " + key, TitleShort: key, Keys: []KeyBinding{LabelBinding(key)}}
}

func newTestStore(t *testing.T, keys ...string) (*Store, *memBackend) {
	t.Helper()
	doc := DefaultDocument()
	for _, k := range keys {
		doc.Modes = append(doc.Modes, profile(k))
	}
	backend := &memBackend{doc: doc}
	s, err := Open(backend, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, backend
}

func TestOpenFallsBackToDefault(t *testing.T) {
	backend := &memBackend{loadErr: errors.New("corrupt")}
	s, err := Open(backend, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d profiles", s.Len())
	}
	if s.Colors() != (ColorScheme{Brightness: 1}) {
		t.Errorf("Expected default colors, got %+v", s.Colors())
	}
	if len(backend.commits) != 1 {
		t.Fatalf("Expected default to be committed once, got %d commits", len(backend.commits))
	}
	if backend.commits[0].Modes == nil {
		t.Error("Expected committed default to carry an empty, non-nil mode list")
	}
}

func TestOpenReportsFailedDefaultCommit(t *testing.T) {
	backend := &memBackend{loadErr: errors.New("missing"), commitErr: errors.New("read-only")}
	if _, err := Open(backend, testLogger()); err == nil {
		t.Error("Expected error when the default cannot be committed")
	}
}

func TestOpenKeepsLoadedDocument(t *testing.T) {
	s, backend := newTestStore(t, "a", "b")
	if s.Len() != 2 {
		t.Errorf("Expected 2 profiles, got %d", s.Len())
	}
	if len(backend.commits) != 0 {
		t.Errorf("Expected no commit on successful load, got %d", len(backend.commits))
	}
}

func TestCyclicNavigation(t *testing.T) {
	s, _ := newTestStore(t, "a", "b", "c")

	for _, p := range s.Profiles() {
		if got := s.Next(s.Previous(p)); !got.Is(p) {
			t.Errorf("next(previous(%s)) = %s", p.Key, got.Key)
		}
		if got := s.Previous(s.Next(p)); !got.Is(p) {
			t.Errorf("previous(next(%s)) = %s", p.Key, got.Key)
		}
	}

	last, _ := s.Get("c")
	if got := s.Next(last); got.Key != "a" {
		t.Errorf("Expected next of last to wrap to a, got %s", got.Key)
	}
	first, _ := s.Get("a")
	if got := s.Previous(first); got.Key != "c" {
		t.Errorf("Expected previous of first to wrap to c, got %s", got.Key)
	}
}

func TestCyclicNavigationUnknownProfile(t *testing.T) {
	s, _ := newTestStore(t, "a", "b")
	ghost := profile("ghost")

	if got := s.Next(ghost); !reflect.DeepEqual(got, ghost) {
		t.Errorf("Expected unknown profile unchanged, got %+v", got)
	}
	if got := s.Previous(ghost); !reflect.DeepEqual(got, ghost) {
		t.Errorf("Expected unknown profile unchanged, got %+v", got)
	}
	if _, ok := s.IndexOf(ghost); ok {
		t.Error("Expected IndexOf to miss")
	}
}

func TestSingleProfileCyclesToItself(t *testing.T) {
	s, _ := newTestStore(t, "solo")
	p, _ := s.Get("solo")
	if !s.Next(p).Is(p) || !s.Previous(p).Is(p) {
		t.Error("Expected single profile to be its own neighbour")
	}
}

func TestWriteUpsertsInPlace(t *testing.T) {
	s, backend := newTestStore(t, "a", "b", "c")

	updated := profile("b")
	updated.Title = "Updated"
	if err := s.Write(updated); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if i, _ := s.IndexOf(updated); i != 1 {
		t.Errorf("Expected b to keep position 1, got %d", i)
	}
	got, _ := s.Get("b")
	if got.Title != "Updated" {
		t.Errorf("Expected title Updated, got %q", got.Title)
	}

	if err := s.Write(profile("d")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if i, _ := s.IndexOf(profile("d")); i != 3 {
		t.Errorf("Expected new profile appended at 3, got %d", i)
	}
	if len(backend.commits) != 2 {
		t.Errorf("Expected 2 commits, got %d", len(backend.commits))
	}
	if n := len(backend.commits[1].Modes); n != 4 {
		t.Errorf("Expected committed document with 4 modes, got %d", n)
	}
}

func TestWriteRejectsInvalidProfile(t *testing.T) {
	s, backend := newTestStore(t)
	err := s.Write(Profile{Title: "No key"})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Expected ErrInvalidProfile, got %v", err)
	}
	if len(backend.commits) != 0 {
		t.Error("Expected no commit for invalid profile")
	}
}

func TestWriteKeepsLongShortTitle(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Write(Profile{Key: "x", TitleShort: "ABCDE"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if p, _ := s.Get("x"); p.TitleShort != "ABCDE" {
		t.Errorf("Expected title_short stored as given, got %q", p.TitleShort)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t, "a")
	p, _ := s.Get("a")
	p.Keys[0] = LabelBinding("mutated")

	again, _ := s.Get("a")
	if again.Keys[0].Label != "a" {
		t.Errorf("Expected store to be unaffected by caller mutation, got %q", again.Keys[0].Label)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s, backend := newTestStore(t, "a", "b", "c")

	if err := s.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := s.Get("b"); ok {
		t.Error("Expected b to be gone")
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 profiles, got %d", s.Len())
	}

	if err := s.Delete("missing"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected delete of missing key to be a no-op, got %d", s.Len())
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d", s.Len())
	}
	if len(backend.commits) != 3 {
		t.Errorf("Expected every mutation to commit, got %d", len(backend.commits))
	}
}

func TestSetColor(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.SetColor(ColorSelect, Color{1, 2, 3}); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if err := s.SetColor(ColorDefault, Color{9, 9, 9}); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if err := s.SetColor(ColorBrightness, 0.25); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	c := s.Colors()
	if c.Select != (Color{1, 2, 3}) || c.Default != (Color{9, 9, 9}) || c.Brightness != 0.25 {
		t.Errorf("Unexpected colors %+v", c)
	}

	if err := s.SetColor("background", Color{}); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("Expected ErrUnknownColor, got %v", err)
	}
	if err := s.SetColor(ColorBrightness, 1.5); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("Expected ErrInvalidColor, got %v", err)
	}
	if err := s.SetColor(ColorNext, 0.5); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("Expected ErrInvalidColor, got %v", err)
	}
}

func TestParseColorValue(t *testing.T) {
	v, err := ParseColorValue(ColorNext, []byte(`[4,5,6]`))
	if err != nil || v != (Color{4, 5, 6}) {
		t.Errorf("ParseColorValue(next) = %v, %v", v, err)
	}
	v, err = ParseColorValue(ColorBrightness, []byte(`0.75`))
	if err != nil || v != 0.75 {
		t.Errorf("ParseColorValue(brightness) = %v, %v", v, err)
	}
	if _, err := ParseColorValue(ColorNext, []byte(`"red"`)); err == nil {
		t.Error("Expected error for non-triple color")
	}
	if _, err := ParseColorValue("nope", []byte(`1`)); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("Expected ErrUnknownColor, got %v", err)
	}
}

func TestPages(t *testing.T) {
	var keys []string
	for i := 0; i < 20; i++ {
		keys = append(keys, fmt.Sprintf("p%02d", i))
	}
	s, _ := newTestStore(t, keys...)

	if s.PageCount() != 3 {
		t.Errorf("Expected 3 pages, got %d", s.PageCount())
	}
	if n := len(s.Page(0)); n != 9 {
		t.Errorf("Expected 9 profiles on page 0, got %d", n)
	}
	last := s.Page(2)
	if len(last) != 2 || last[0].Key != "p18" {
		t.Errorf("Unexpected last page %+v", last)
	}
	if s.Page(3) != nil || s.Page(-1) != nil {
		t.Error("Expected out-of-range pages to be empty")
	}

	empty, _ := newTestStore(t)
	if empty.PageCount() != 1 {
		t.Errorf("Expected empty store to have one page, got %d", empty.PageCount())
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	backend := NewFileBackend(path)

	s, err := Open(backend, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected default document to be written: %v", err)
	}

	p := Profile{
		Key:        "games",
		Title:      "Games",
		TitleShort: "GAME",
		Color:      colorPtr(0, 0, 255),
		Keys:       []KeyBinding{ActionBinding("Copy", "ctrl+c", nil), Unbound(), LabelBinding("Ping")},
	}
	if err := s.Write(p); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := s.SetColor(ColorPrevious, Color{7, 8, 9}); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}

	reopened, err := Open(NewFileBackend(path), testLogger())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	got, ok := reopened.Get("games")
	if !ok || !reflect.DeepEqual(got, p) {
		t.Errorf("Expected persisted profile %+v, got %+v", p, got)
	}
	if reopened.Colors().Previous != (Color{7, 8, 9}) {
		t.Errorf("Expected persisted color, got %+v", reopened.Colors())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the document in the directory, got %d entries", len(entries))
	}
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(NewFileBackend(path), testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected default store, got %d profiles", s.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeDocument(data); err != nil {
		t.Errorf("Expected corrupt file to be replaced by a valid default: %v", err)
	}
}

func TestFileBackendKeepsLooseProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	data := `{"colors":{"previous":[9,9,9],"select":[0,0,0],"next":[0,0,0],"default":[0,0,0],"brightness":1},` +
		`"modes":[{"key":"edit","title":"Edit","title_short":"EDIT","keys":["Undo"]},{"key":"games","title":"Games","title_short":"GAMES","keys":[]}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(NewFileBackend(path), testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Expected both profiles to load, got %d", s.Len())
	}
	if c := s.Colors().Previous; c != (Color{9, 9, 9}) {
		t.Errorf("Expected colors to survive, got %v", c)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != data {
		t.Errorf("Expected file untouched on load, got %s", after)
	}
}

func TestOpenBackendSelectsImplementation(t *testing.T) {
	b, err := OpenBackend("/tmp/db.json")
	if err != nil {
		t.Fatalf("OpenBackend failed: %v", err)
	}
	if fb, ok := b.(*FileBackend); !ok || fb.Path() != "/tmp/db.json" {
		t.Errorf("Expected file backend, got %T", b)
	}

	b, err = OpenBackend("sqlite:" + filepath.Join(t.TempDir(), "pad.db"))
	if err != nil {
		t.Fatalf("OpenBackend failed: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*SQLiteBackend); !ok {
		t.Errorf("Expected sqlite backend, got %T", b)
	}
}
