package flashfs

import (
	"errors"
	"testing"
)

func mountedMemory(t *testing.T) *Store {
	t.Helper()
	s := NewMemory(64)
	if _, err := s.MountOrFormat(); err != nil {
		t.Fatalf("MountOrFormat: %v", err)
	}
	return s
}

func TestMountOrFormatBlankDevice(t *testing.T) {
	s := NewMemory(64)
	formatted, err := s.MountOrFormat()
	if err != nil {
		t.Fatalf("MountOrFormat: %v", err)
	}
	if !formatted {
		t.Fatalf("MountOrFormat formatted = false on a blank device, want true")
	}
	if got := s.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
}

func TestWriteReadAndSortedListing(t *testing.T) {
	s := mountedMemory(t)
	files := map[string]string{
		"pi":    "pi = 3\n",
		"hello": "print(\"Hello, world!\")",
		"nums":  "print(1)\nprint(257)",
	}
	for _, name := range []string{"pi", "hello", "nums"} {
		if err := s.WriteFile(name, []byte(files[name])); err != nil {
			t.Fatalf("WriteFile(%q): %v", name, err)
		}
	}

	want := []string{"hello", "nums", "pi"}
	if got := s.Len(); got != len(want) {
		t.Fatalf("Len() = %d, want %d", got, len(want))
	}
	for i, name := range want {
		if got := s.Name(i); got != name {
			t.Fatalf("Name(%d) = %q, want %q", i, got, name)
		}
	}
	if got := s.Name(len(want)); got != "" {
		t.Fatalf("Name(out of range) = %q, want empty", got)
	}

	for _, e := range s.List() {
		if e.Size != int64(len(files[e.Name])) || e.Dir {
			t.Fatalf("entry %+v, want size %d file", e, len(files[e.Name]))
		}
	}

	got, err := s.ReadFile("nums")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != files["nums"] {
		t.Fatalf("ReadFile(nums) = %q, want %q", got, files["nums"])
	}
}

func TestCreateTruncates(t *testing.T) {
	s := mountedMemory(t)
	if err := s.WriteFile("a", []byte("longer text")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile("a", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := s.ReadFile("a")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("ReadFile(a) = %q, want %q", got, "x")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestNameValidation(t *testing.T) {
	s := mountedMemory(t)
	if _, err := s.Create("elevenbytes"); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("Create(11 bytes) err = %v, want %v", err, ErrNameTooLong)
	}
	if _, err := s.Create("a/b"); !errors.Is(err, ErrBadName) {
		t.Fatalf("Create(a/b) err = %v, want %v", err, ErrBadName)
	}
	if _, err := s.Create("tenbytes.."); err != nil {
		t.Fatalf("Create(10 bytes) err = %v, want nil", err)
	}
}

func TestReadMissing(t *testing.T) {
	s := mountedMemory(t)
	if _, err := s.ReadFile("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadFile(nope) err = %v, want %v", err, ErrNotFound)
	}
}

func TestUnmountedStoreRefusesIO(t *testing.T) {
	s := NewMemory(64)
	if _, err := s.Create("a"); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("Create before mount err = %v, want %v", err, ErrNotMounted)
	}
	if _, err := s.ReadFile("a"); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("ReadFile before mount err = %v, want %v", err, ErrNotMounted)
	}
}

func TestFormatEmptiesListing(t *testing.T) {
	s := mountedMemory(t)
	if err := s.WriteFile("a", []byte("1")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Format(); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() after Format = %d, want 0", s.Len())
	}
}

func TestRemountKeepsFiles(t *testing.T) {
	s := mountedMemory(t)
	if err := s.WriteFile("keep", []byte("me")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Unmount(); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	formatted, err := s.MountOrFormat()
	if err != nil {
		t.Fatalf("MountOrFormat: %v", err)
	}
	if formatted {
		t.Fatalf("MountOrFormat formatted a valid filesystem")
	}
	if s.Len() != 1 || s.Name(0) != "keep" {
		t.Fatalf("listing after remount = %+v, want [keep]", s.List())
	}
}
