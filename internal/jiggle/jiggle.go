// Package jiggle synthesizes tiny pointer movements to simulate user
// activity. Only Windows has an implementation; everywhere else the
// jiggler is a silent no-op.
package jiggle

import (
	"time"

	"github.com/wakeguard/wakeguard/internal/config"
)

// Jiggler nudges the pointer by a configured amplitude and immediately
// back, leaving the cursor where it was.
type Jiggler interface {
	// Tick fires a nudge when the jiggle interval has elapsed and, if an
	// idle threshold is configured, the user has been idle at least that
	// long. Called once per keeper cycle while inhibition is active.
	Tick(now time.Time)

	// Supported reports whether this platform can jiggle at all.
	Supported() bool
}

// New returns the platform jiggler, or a no-op when jiggling is disabled
// or unsupported.
func New(cfg *config.Config) Jiggler {
	if !cfg.Jiggle {
		return noopJiggler{}
	}
	return newJiggler(cfg)
}

type noopJiggler struct{}

func (noopJiggler) Tick(time.Time)  {}
func (noopJiggler) Supported() bool { return false }

// gate decides whether a nudge is due. Platform-neutral so the timing and
// idle-threshold rules are testable everywhere.
type gate struct {
	interval  time.Duration
	threshold time.Duration // 0 = no idle gating
	last      time.Time
}

// due rate-limits to one nudge per interval and, when a threshold is set,
// suppresses nudges while the user is active. An idle time exactly equal
// to the threshold fires. Unknown idle time (measurement error) suppresses
// rather than risking a nudge under the user's hand.
func (g *gate) due(now time.Time, idle time.Duration, idleErr error) bool {
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	if g.threshold > 0 {
		if idleErr != nil || idle < g.threshold {
			return false
		}
	}
	g.last = now
	return true
}
