package tailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readLine(t *testing.T, tl *Tailer) string {
	t.Helper()
	select {
	case line, ok := <-tl.Lines():
		if !ok {
			t.Fatal("Lines() closed")
		}
		return line
	case err := <-tl.Errors():
		t.Fatalf("tail error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a line")
	}
	return ""
}

func TestTailer_FromStartAndFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("first\r\nsecond\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.FromStart = true
	cfg.Poll = true
	tl, err := New(context.Background(), path, cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer tl.Stop()

	if got := readLine(t, tl); got != "first" {
		t.Errorf("line 1 = %q, want first", got)
	}
	if got := readLine(t, tl); got != "second" {
		t.Errorf("line 2 = %q, want second", got)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("third\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if got := readLine(t, tl); got != "third" {
		t.Errorf("line 3 = %q, want third", got)
	}
}

func TestTailer_MissingFile(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultConfig())
	if err == nil {
		t.Fatal("New() error = nil for a missing file")
	}
}

func TestTailer_StopClosesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Poll = true
	tl, err := New(context.Background(), path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	tl.Stop()
	tl.Stop()

	select {
	case _, ok := <-tl.Lines():
		if ok {
			t.Error("Lines() delivered after Stop")
		}
	case <-time.After(time.Second):
		t.Error("Lines() not closed after Stop")
	}
}
