package console

import (
	"log"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

// Attached reports whether the process runs in a terminal. A console-mode
// build that was double-clicked drops its console window and reports false.
// A GUI-mode build started from a terminal gets a console of its own.
func Attached() bool {
	fromExplorer := launchedFromExplorer()
	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}

	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams points os.Stdout and friends at a freshly allocated
// console. They are bound at startup and would otherwise stay invalid.
func redirectStdStreams() {
	stdout, err1 := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	stderr, err2 := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err1 != nil || err2 != nil || stdout == 0 || stderr == 0 {
		return
	}
	os.Stdout = os.NewFile(uintptr(stdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(stderr), "/dev/stderr")
	if stdin, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && stdin != 0 {
		os.Stdin = os.NewFile(uintptr(stdin), "/dev/stdin")
	}
	log.SetOutput(os.Stderr)
}

func launchedFromExplorer() bool {
	ppid := parentProcessID(uint32(os.Getpid()))
	if ppid == 0 {
		return false
	}
	name := processImageName(ppid)
	return name != "" && isExplorer(name)
}

func parentProcessID(pid uint32) uint32 {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if entry.ProcessID == pid {
			return entry.ParentProcessID
		}
	}
	return 0
}

func processImageName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

var (
	handlerOnce sync.Once
	stopOnce    sync.Once
	handlerStop func()
	handlerCb   uintptr
)

// HandleInterrupt calls stop once on Ctrl+C or Ctrl+Break. os/signal misses
// these while SDL holds a locked thread. SDL also replaces the console handler
// during init, so the returned function registers it again.
func HandleInterrupt(stop func()) func() {
	handlerOnce.Do(func() {
		handlerCb = windows.NewCallback(func(ctrlType uint32) uintptr {
			if ctrlType == ctrlCEvent || ctrlType == ctrlBreakEvent {
				stopOnce.Do(handlerStop)
				return 1
			}
			return 0
		})
	})
	handlerStop = stop

	register := func() {
		if ret, _, _ := procSetConsoleCtrlHandler.Call(handlerCb, 1); ret == 0 {
			log.Printf("Warning: Failed to set Windows console control handler")
		}
	}
	register()
	return register
}
