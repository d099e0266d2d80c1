package utils

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"milliseconds", 45 * time.Millisecond, "45ms"},
		{"seconds", 1500 * time.Millisecond, "1.5s"},
		{"minutes and seconds", 2*time.Minute + 30*time.Second, "2m 30s"},
		{"exact minutes", 5 * time.Minute, "5m"},
		{"hours and minutes", time.Hour + 15*time.Minute, "1h 15m"},
		{"exact hours", 2 * time.Hour, "2h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.duration); got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.input); got != tt.expected {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTruncateText(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		if got := TruncateText("incendie rue des Lilas", 100); got != "incendie rue des Lilas" {
			t.Errorf("unexpected result: %q", got)
		}
	})

	t.Run("long text truncated with ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 200)
		got := TruncateText(long, 100)
		if len(got) != 100 {
			t.Errorf("expected length 100, got %d", len(got))
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected ellipsis suffix, got %q", got)
		}
	})

	t.Run("newlines collapsed", func(t *testing.T) {
		got := TruncateText("ligne une\nligne deux", 100)
		if strings.Contains(got, "\n") {
			t.Errorf("expected newlines removed, got %q", got)
		}
	})

	t.Run("tiny max length", func(t *testing.T) {
		if got := TruncateText("abcdef", 3); got != "..." {
			t.Errorf("expected bare ellipsis, got %q", got)
		}
	})

	t.Run("accented text cut on rune boundary", func(t *testing.T) {
		// Put a two-byte rune exactly across the byte position where a
		// naive byte slice would cut.
		text := strings.Repeat("a", 96) + "é" + strings.Repeat("b", 50)
		got := TruncateText(text, 100)

		if !utf8.ValidString(got) {
			t.Fatalf("truncation produced invalid UTF-8: %q", got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected ellipsis suffix, got %q", got)
		}
		if n := utf8.RuneCountInString(got); n != 100 {
			t.Errorf("expected 100 runes, got %d", n)
		}
	})

	t.Run("rune counting for accented text", func(t *testing.T) {
		// 10 runes but 13 bytes; must fit a 10-rune budget untouched.
		text := "été blessé"
		if got := TruncateText(text, 10); got != text {
			t.Errorf("expected %q unchanged, got %q", text, got)
		}
	})
}
