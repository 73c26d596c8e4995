package tray

import (
	"slices"
	"testing"
)

func TestBrowserURL(t *testing.T) {
	tests := []struct {
		listen string
		want   string
	}{
		{":8080", "http://localhost:8080"},
		{"0.0.0.0:9000", "http://localhost:9000"},
		{"[::]:9000", "http://localhost:9000"},
		{"127.0.0.1:80", "http://127.0.0.1:80"},
		{"[::1]:8080", "http://[::1]:8080"},
		{"example.local", "http://example.local"},
	}
	for _, tt := range tests {
		if got := BrowserURL(tt.listen); got != tt.want {
			t.Errorf("BrowserURL(%q) = %q, want %q", tt.listen, got, tt.want)
		}
	}
}

func TestBrowserCommand(t *testing.T) {
	url := "http://localhost:8080"
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
		{"darwin", "open", []string{url}},
		{"linux", "xdg-open", []string{url}},
	}
	for _, tt := range tests {
		name, args := browserCommand(tt.goos, url)
		if name != tt.name || !slices.Equal(args, tt.args) {
			t.Errorf("%s: got %s %v", tt.goos, name, args)
		}
	}
}

func TestIcon(t *testing.T) {
	data := Icon()
	// ICONDIR header: reserved 0, type 1 (icon)
	if len(data) < 6 || data[0] != 0 || data[1] != 0 || data[2] != 1 {
		t.Errorf("icon header % x", data[:min(len(data), 6)])
	}
}
