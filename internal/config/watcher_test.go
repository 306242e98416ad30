package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type reloadResult struct {
	f   *File
	err error
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.toml")
	if err := os.WriteFile(path, []byte("[layout]\nfont_size = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := make(chan reloadResult, 4)
	w, err := NewWatcher(path, func(f *File, err error) {
		results <- reloadResult{f, err}
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[layout]\nfont_size = 14\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-results:
		if r.err != nil {
			t.Fatalf("reload error: %v", r.err)
		}
		if r.f.Layout.FontSize != 14 {
			t.Errorf("expected font size 14, got %g", r.f.Layout.FontSize)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	results := make(chan reloadResult, 4)
	w, err := NewWatcher(path, func(f *File, err error) {
		results <- reloadResult{f, err}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-results:
		t.Errorf("unexpected reload: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
