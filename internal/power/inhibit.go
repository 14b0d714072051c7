package power

// Scope selects which sleep states to hold off.
type Scope struct {
	Display bool
	System  bool
}

// ScopeFor maps the --display-only/--system-only flag pair to a Scope.
// Neither flag, or both together, means both.
func ScopeFor(displayOnly, systemOnly bool) Scope {
	if displayOnly == systemOnly {
		return Scope{Display: true, System: true}
	}
	return Scope{Display: displayOnly, System: systemOnly}
}

func (s Scope) String() string {
	switch {
	case s.Display && s.System:
		return "display+system"
	case s.Display:
		return "display"
	case s.System:
		return "system"
	}
	return "none"
}

// Inhibitor prevents the machine from going to sleep while engaged.
// Exactly one mechanism is active at a time; the platform backend is
// selected at startup.
type Inhibitor interface {
	// Start engages the platform mechanism for the given scope. Calling
	// Start while already engaged is a no-op. Returns an error when no
	// mechanism is available; callers should treat this as non-fatal
	// (warn and continue uninhibited).
	Start(scope Scope) error

	// Assert re-establishes the mechanism while engaged. The Windows
	// execution-state call is not guaranteed to persist and is reissued
	// every poll cycle; the helper-process backends use Assert to detect
	// a dead helper and relaunch or cascade to the next fallback. A no-op
	// when not engaged.
	Assert() error

	// Stop releases the inhibition so nothing persists after shutdown or
	// a state transition. Safe to call multiple times.
	Stop()

	// Name identifies the active mechanism for logging.
	Name() string
}

// New returns the platform-appropriate Inhibitor.
// See inhibit_windows.go, inhibit_darwin.go, inhibit_linux.go,
// inhibit_other.go.
func New() Inhibitor {
	return newInhibitor()
}
