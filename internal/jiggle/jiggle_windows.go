//go:build windows

package jiggle

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/wakeguard/wakeguard/internal/config"
	"github.com/wakeguard/wakeguard/internal/ui"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procSendInput        = user32.NewProc("SendInput")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")

	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	procGetTickCount = kernel32.NewProc("GetTickCount")
)

const (
	inputMouse     = 0
	mouseEventMove = 0x0001
)

type mouseInput struct {
	dx        int32
	dy        int32
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// input mirrors the C INPUT struct: the uintptr in mouseInput forces the
// union member to offset 8 and the total size to 40, matching what
// SendInput expects for its cbSize argument.
type input struct {
	typ uint32
	mi  mouseInput
}

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type windowsJiggler struct {
	pixels int32
	gate   gate
}

func newJiggler(cfg *config.Config) Jiggler {
	return &windowsJiggler{
		pixels: int32(cfg.JigglePixels),
		gate: gate{
			interval:  cfg.JiggleInterval,
			threshold: cfg.IdleThreshold,
		},
	}
}

func (j *windowsJiggler) Supported() bool { return true }

func (j *windowsJiggler) Tick(now time.Time) {
	idle, err := systemIdle()
	if !j.gate.due(now, idle, err) {
		return
	}

	// Nudge and immediately nudge back; net cursor position is unchanged.
	sendMove(j.pixels, 0)
	sendMove(-j.pixels, 0)
	ui.Debug("jiggle: nudged pointer ±%dpx", j.pixels)
}

func sendMove(dx, dy int32) {
	in := input{typ: inputMouse}
	in.mi = mouseInput{dx: dx, dy: dy, flags: mouseEventMove}
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

// systemIdle returns how long the user has been idle, from
// GetLastInputInfo against the current tick count.
func systemIdle() (time.Duration, error) {
	var lii lastInputInfo
	lii.cbSize = uint32(unsafe.Sizeof(lii))

	ok, _, callErr := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&lii)))
	if ok == 0 {
		return 0, errors.Wrap(callErr, "GetLastInputInfo failed")
	}

	ticks, _, _ := procGetTickCount.Call()
	// GetTickCount wraps at 32 bits; the subtraction is wrap-safe in
	// uint32 arithmetic.
	idleMillis := uint32(ticks) - lii.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}
