//go:build windows

package power

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

// windowsInhibitor issues SetThreadExecutionState. The call's effect is not
// guaranteed to persist indefinitely, so Assert reissues it every poll
// cycle while engaged.
type windowsInhibitor struct {
	mu    sync.Mutex
	flags uintptr
}

func newInhibitor() Inhibitor {
	return &windowsInhibitor{}
}

func (w *windowsInhibitor) Start(scope Scope) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.flags != 0 {
		return nil // already engaged
	}

	flags := uintptr(esContinuous)
	if scope.System {
		flags |= esSystemRequired
	}
	if scope.Display {
		flags |= esDisplayRequired
	}

	if err := setExecutionState(flags); err != nil {
		return err
	}
	w.flags = flags
	return nil
}

func (w *windowsInhibitor) Assert() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.flags == 0 {
		return nil
	}
	return setExecutionState(w.flags)
}

func (w *windowsInhibitor) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.flags == 0 {
		return
	}
	// Plain ES_CONTINUOUS clears the requirements we set.
	setExecutionState(esContinuous)
	w.flags = 0
}

func (w *windowsInhibitor) Name() string {
	return "execution-state"
}

func setExecutionState(flags uintptr) error {
	prev, _, callErr := procSetThreadExecutionState.Call(flags)
	if prev == 0 {
		return errors.Wrap(callErr, "SetThreadExecutionState failed")
	}
	return nil
}
