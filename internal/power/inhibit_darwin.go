//go:build darwin

package power

import (
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

type darwinInhibitor struct {
	mu    sync.Mutex
	scope Scope
	cmd   *exec.Cmd
	done  chan struct{}
}

func newInhibitor() Inhibitor {
	return &darwinInhibitor{}
}

func (d *darwinInhibitor) Start(scope Scope) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return nil // already running
	}

	d.scope = scope
	return d.startLocked()
}

func (d *darwinInhibitor) startLocked() error {
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return errors.Wrap(err, "caffeinate not found")
	}

	// -d: prevent display sleep
	// -i: prevent idle system sleep
	// -w <pid>: exit automatically if wakeguard dies
	flags := "-"
	if d.scope.Display {
		flags += "d"
	}
	if d.scope.System {
		flags += "i"
	}

	cmd := exec.Command(path, flags, "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start caffeinate")
	}

	done := make(chan struct{})
	go func() {
		// Reap the child so it doesn't become a zombie, and record the
		// exit so Assert can relaunch.
		cmd.Wait()
		close(done)
	}()

	d.cmd = cmd
	d.done = done
	return nil
}

// Assert relaunches caffeinate if it exited underneath us.
func (d *darwinInhibitor) Assert() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil {
		return nil // not engaged
	}

	select {
	case <-d.done:
		d.cmd = nil
		return d.startLocked()
	default:
		return nil
	}
}

func (d *darwinInhibitor) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.cmd = nil
}

func (d *darwinInhibitor) Name() string {
	return "caffeinate"
}
