package storage

import (
	"strings"
	"testing"
)

func TestToValidUTF8ReplacesBrokenBytes(t *testing.T) {
	broken := string([]byte{'o', 'k', 0xff, 0xfe})
	got := toValidUTF8(broken)
	if !strings.HasPrefix(got, "ok") {
		t.Fatalf("valid prefix lost: %q", got)
	}
	if strings.Contains(got, "\xff") {
		t.Fatalf("invalid bytes survived: %q", got)
	}

	clean := "все хорошо 好"
	if toValidUTF8(clean) != clean {
		t.Fatalf("valid UTF-8 should pass through unchanged")
	}
}

func TestTruncateRunesBoundsColumnLength(t *testing.T) {
	long := strings.Repeat("字", snippetColumnLimit+50)
	got := truncateRunes(long, snippetColumnLimit)
	if len([]rune(got)) != snippetColumnLimit {
		t.Fatalf("truncated length = %d runes, want %d", len([]rune(got)), snippetColumnLimit)
	}

	if got := truncateRunes("  short  ", 600); got != "short" {
		t.Fatalf("short values should only be trimmed: %q", got)
	}
	if got := truncateRunes("anything", 0); got != "" {
		t.Fatalf("limit 0 should yield empty, got %q", got)
	}
}
