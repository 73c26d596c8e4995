package console

import "testing"

func TestIsExplorer(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{`C:\Windows\explorer.exe`, true},
		{`C:\Windows\EXPLORER.EXE`, true},
		{"explorer.exe", true},
		{"C:/Windows/explorer.exe", true},
		{`C:\Windows\System32\cmd.exe`, false},
		{`C:\tools\notexplorer.exe`, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isExplorer(tt.path); got != tt.want {
			t.Errorf("isExplorer(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

