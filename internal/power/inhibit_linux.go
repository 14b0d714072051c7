//go:build linux

package power

import (
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

// candidate is one external inhibitor helper, tried in priority order.
type candidate struct {
	name string
	args func(scope Scope) []string
}

// linuxCandidates: systemd first, then the GNOME session mechanism, then an
// xdg-screensaver reset loop as a last resort.
var linuxCandidates = []candidate{
	{
		name: "systemd-inhibit",
		args: func(scope Scope) []string {
			var what []string
			if scope.Display {
				what = append(what, "idle")
			}
			if scope.System {
				what = append(what, "sleep")
			}
			return []string{
				"--what=" + strings.Join(what, ":"),
				"--who=wakeguard",
				"--why=watched process is running",
				"--mode=block",
				"sleep", "infinity",
			}
		},
	},
	{
		name: "gnome-session-inhibit",
		args: func(scope Scope) []string {
			args := []string{"--reason", "watched process is running"}
			if scope.Display {
				args = append(args, "--inhibit", "idle")
			}
			if scope.System {
				args = append(args, "--inhibit", "suspend")
			}
			return append(args, "sleep", "infinity")
		},
	},
	{
		// Only resets the screensaver; system sleep is not held off, but
		// it is better than nothing on minimal desktops.
		name: "xdg-screensaver",
		args: func(Scope) []string {
			return nil // wrapped in a reset loop below
		},
	},
}

type linuxInhibitor struct {
	mu      sync.Mutex
	scope   Scope
	engaged bool
	next    int // index of the next candidate to try
	active  string
	cmd     *exec.Cmd
	done    chan struct{}

	// injectable for tests
	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
	wait     func(*exec.Cmd) error
}

func newInhibitor() Inhibitor {
	return &linuxInhibitor{
		lookPath: exec.LookPath,
		start:    (*exec.Cmd).Start,
		wait:     (*exec.Cmd).Wait,
	}
}

func (l *linuxInhibitor) Start(scope Scope) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engaged && l.cmd != nil {
		return nil // already running
	}

	l.scope = scope
	l.next = 0
	err := l.launchLocked()
	l.engaged = true
	return err
}

// launchLocked tries candidates from l.next onward, keeping the first one
// that starts.
func (l *linuxInhibitor) launchLocked() error {
	for ; l.next < len(linuxCandidates); l.next++ {
		c := linuxCandidates[l.next]

		path, err := l.lookPath(c.name)
		if err != nil {
			continue
		}

		var cmd *exec.Cmd
		if c.name == "xdg-screensaver" {
			// xdg-screensaver has no blocking mode; poke it on a loop.
			cmd = exec.Command("sh", "-c",
				"while true; do "+path+" reset; sleep 50; done")
		} else {
			cmd = exec.Command(path, c.args(l.scope)...)
		}
		// Kernel sends SIGTERM to the helper if wakeguard dies — prevents
		// orphaned inhibitors.
		cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}

		if err := l.start(cmd); err != nil {
			continue
		}

		done := make(chan struct{})
		go func(cmd *exec.Cmd, done chan struct{}) {
			l.wait(cmd)
			close(done)
		}(cmd, done)

		l.cmd = cmd
		l.done = done
		l.active = c.name
		l.next++ // a later cascade resumes after this candidate
		return nil
	}

	l.cmd = nil
	l.active = ""
	return errors.New("no sleep inhibitor available (tried systemd-inhibit, gnome-session-inhibit, xdg-screensaver)")
}

// Assert cascades to the next fallback if the running helper exited.
func (l *linuxInhibitor) Assert() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.engaged || l.cmd == nil {
		return nil
	}

	select {
	case <-l.done:
		prev := l.active
		return errors.Wrapf(l.launchLocked(), "%s exited", prev)
	default:
		return nil
	}
}

func (l *linuxInhibitor) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil && l.cmd.Process != nil {
		l.cmd.Process.Kill()
	}
	l.cmd = nil
	l.active = ""
	l.engaged = false
}

func (l *linuxInhibitor) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == "" {
		return "none"
	}
	return l.active
}
