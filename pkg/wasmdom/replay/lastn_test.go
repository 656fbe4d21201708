package replay

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLines(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadLastNLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    []string
	}{
		{"normal", "line1\nline2\nline3\nline4\nline5\n", 3, []string{"line3", "line4", "line5"}},
		{"empty file", "", 10, nil},
		{"fewer than n", "line1\nline2\n", 10, []string{"line1", "line2"}},
		{"exactly n", "line1\nline2\nline3\n", 3, []string{"line1", "line2", "line3"}},
		{"no trailing newline", "line1\nline2\nline3", 2, []string{"line2", "line3"}},
		{"crlf", "line1\r\nline2\r\n", 2, []string{"line1", "line2"}},
		{"blank lines skipped", "line1\n\n\nline2\n\n", 2, []string{"line1", "line2"}},
		{"single line", "only", 1, []string{"only"}},
		{"zero n", "line1\n", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLastNLines(writeLines(t, tt.content), tt.n, 0, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLastNLines_SpansChunks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("line-")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("\n")
	}
	b.WriteString("last\n")

	got, err := readLastNLines(writeLines(t, b.String()), 1500, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1500 {
		t.Fatalf("got %d lines, want 1500", len(got))
	}
	if got[len(got)-1] != "last" {
		t.Errorf("last line = %q, want last", got[len(got)-1])
	}
	for _, line := range got[:len(got)-1] {
		if !strings.HasPrefix(line, "line-") {
			t.Fatalf("corrupted line %q", line)
		}
	}
}

func TestReadLastNLines_Limits(t *testing.T) {
	t.Run("max bytes", func(t *testing.T) {
		content := strings.Repeat("0123456789\n", 1000)
		_, err := readLastNLines(writeLines(t, content), 1000, 5000, 0)
		if !errors.Is(err, ErrReplayLimitExceeded) {
			t.Errorf("err = %v, want ErrReplayLimitExceeded", err)
		}
	})

	t.Run("max line bytes", func(t *testing.T) {
		content := "short\n" + strings.Repeat("y", 100) + "\nshort\n"
		_, err := readLastNLines(writeLines(t, content), 3, 0, 50)
		if !errors.Is(err, ErrReplayLimitExceeded) {
			t.Errorf("err = %v, want ErrReplayLimitExceeded", err)
		}
	})

	t.Run("long first line", func(t *testing.T) {
		content := strings.Repeat("z", 100) + "\nshort\n"
		_, err := readLastNLines(writeLines(t, content), 2, 0, 50)
		if !errors.Is(err, ErrReplayLimitExceeded) {
			t.Errorf("err = %v, want ErrReplayLimitExceeded", err)
		}
	})

	t.Run("within limits", func(t *testing.T) {
		content := "a\nb\nc\n"
		got, err := readLastNLines(writeLines(t, content), 2, 100, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"b", "c"}) {
			t.Errorf("got %q", got)
		}
	})
}

func TestReadLastNLines_RejectsSymlink(t *testing.T) {
	target := writeLines(t, "line\n")
	link := filepath.Join(t.TempDir(), "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, err := readLastNLines(link, 1, 0, 0); err == nil {
		t.Error("expected error for symlink")
	}
}
