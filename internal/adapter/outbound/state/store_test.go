package state

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFileStorage_GetAbsentKey(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	value, ok, err := s.Get(KeySession)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for absent key, want false")
	}
	if value != nil {
		t.Errorf("Get() value = %q for absent key, want nil", value)
	}
}

func TestFileStorage_SetGetRoundTrip(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	want := []byte(`{"token":"session_1_abcdefghi_AAAAAAAA"}`)
	if err := s.Set(KeySession, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := s.Get(KeySession)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false after Set")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestFileStorage_SetCreatesBackupOnOverwrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	if err := s.Set(KeyUsers, []byte(`[1]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(KeyUsers, []byte(`[1,2]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	bak, err := os.ReadFile(filepath.Join(dir, KeyUsers+".json.bak"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(bak) != `[1]` {
		t.Errorf("backup = %q, want previous value [1]", bak)
	}
}

func TestFileStorage_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	if err := s.Set(KeyCSRFToken, []byte("csrf_1_abc")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, KeyCSRFToken+".json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %04o, want 0600", perm)
	}
}

func TestFileStorage_DeleteIsIdempotent(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	if err := s.Set(KeySession, []byte(`{}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete(KeySession); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(KeySession); err != nil {
		t.Errorf("Delete() second call error = %v, want nil", err)
	}

	_, ok, err := s.Get(KeySession)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true after Delete, want false")
	}
}

func TestFileStorage_RejectsUnsafeKeys(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	for _, key := range []string{"../escape", "a/b", "UPPER", ""} {
		if err := s.Set(key, []byte("x")); err == nil {
			t.Errorf("Set(%q) error = nil, want invalid key error", key)
		}
	}
}

func TestMemoryStorage_RoundTrip(t *testing.T) {
	s := NewMemoryStorage()

	if err := s.Set(KeySession, []byte("a")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := s.Get(KeySession)
	if err != nil || !ok || string(got) != "a" {
		t.Fatalf("Get() = %q, %v, %v; want a, true, nil", got, ok, err)
	}

	// Mutating the returned slice must not affect the stored value.
	got[0] = 'z'
	again, _, _ := s.Get(KeySession)
	if string(again) != "a" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}

	if err := s.Delete(KeySession); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", s.Len())
	}
}
