// Package console detects how the process was started and installs a Ctrl+C
// handler that keeps working while SDL owns a locked OS thread. Both only do
// something on Windows.
package console

import "strings"

// isExplorer reports whether path names explorer.exe, which starts programs
// that were double-clicked.
func isExplorer(path string) bool {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		path = path[i+1:]
	}
	return strings.EqualFold(path, "explorer.exe")
}
