package logger

import "testing"

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		for _, format := range []string{"text", "json"} {
			l := New(Config{Level: level, Format: format})
			if l == nil || l.Logger == nil {
				t.Fatalf("New(%q, %q) returned nil logger", level, format)
			}
		}
	}
}

func TestWithHelpers(t *testing.T) {
	l := Default()

	if c := l.WithComponent("scanner"); c == nil || c == l {
		t.Error("WithComponent should return a derived logger")
	}
	if s := l.WithSong(42, "Song"); s == nil || s == l {
		t.Error("WithSong should return a derived logger")
	}
	if s := l.WithSession("abc"); s == nil || s == l {
		t.Error("WithSession should return a derived logger")
	}
}
