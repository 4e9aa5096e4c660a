package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug text", "debug", "text"},
		{"info json", "info", "json"},
		{"warn text", "warn", "text"},
		{"error json", "error", "json"},
		{"unknown level falls back", "verbose", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(Config{Level: tt.level, Format: tt.format})
			if l == nil || l.Logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestWithHelpers(t *testing.T) {
	l := Default()

	if got := l.WithComponent("pipeline"); got == nil || got.Logger == nil {
		t.Error("WithComponent returned nil logger")
	}
	if got := l.WithImage("a.jpg"); got == nil || got.Logger == nil {
		t.Error("WithImage returned nil logger")
	}
	if got := l.WithAlbum("Nirvana", "Nevermind"); got == nil || got.Logger == nil {
		t.Error("WithAlbum returned nil logger")
	}
}
