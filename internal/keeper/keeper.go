// Package keeper runs the control loop: scan, transition the awake state,
// re-assert the inhibitor, tick the jiggler, sleep until the next poll.
package keeper

import (
	"context"
	"time"

	"github.com/wakeguard/wakeguard/internal/config"
	"github.com/wakeguard/wakeguard/internal/jiggle"
	"github.com/wakeguard/wakeguard/internal/power"
	"github.com/wakeguard/wakeguard/internal/ui"
)

// Scanner reports whether any watched process is running. Implemented by
// scan.Scanner; an interface so tests can drive the state machine.
type Scanner interface {
	Scan(ctx context.Context) (hit string, ok bool, err error)
}

// Keeper owns the two-state awake machine (inhibiting / idle) and the only
// reference to the platform inhibitor. Everything runs on one goroutine.
type Keeper struct {
	cfg     *config.Config
	scanner Scanner
	inhib   power.Inhibitor
	jiggler jiggle.Jiggler
	scope   power.Scope

	inhibiting bool
	warned     bool // inhibitor-unavailable warning printed

	now func() time.Time
}

func New(cfg *config.Config, scanner Scanner, inhib power.Inhibitor, jiggler jiggle.Jiggler) *Keeper {
	return &Keeper{
		cfg:     cfg,
		scanner: scanner,
		inhib:   inhib,
		jiggler: jiggler,
		scope:   power.ScopeFor(cfg.DisplayOnly, cfg.SystemOnly),
		now:     time.Now,
	}
}

// Run loops until the context is cancelled or the configured duration
// elapses, then releases any held inhibition. A nil return is a clean
// shutdown (exit status 0).
func (k *Keeper) Run(ctx context.Context) error {
	defer k.release()

	ticker := time.NewTicker(k.cfg.Poll)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if k.cfg.Duration > 0 {
		t := time.NewTimer(k.cfg.Duration)
		defer t.Stop()
		deadline = t.C
	}

	for {
		k.Tick(ctx)

		select {
		case <-ctx.Done():
			ui.Info("interrupted, shutting down")
			return nil
		case <-deadline:
			ui.Info("duration elapsed, shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick performs one poll cycle: evaluate whether the machine should stay
// awake, transition at most once, and service the active mechanisms.
func (k *Keeper) Tick(ctx context.Context) {
	want := true
	hit := ""

	if !k.cfg.AlwaysOn {
		var err error
		hit, want, err = k.scanner.Scan(ctx)
		if err != nil {
			// Transient: treat as no-match; the next cycle rescans.
			ui.Debug("process scan failed: %v", err)
			want = false
		}
	}

	switch {
	case want && !k.inhibiting:
		k.engage(hit)
	case !want && k.inhibiting:
		ui.Info("no watched process running, releasing")
		k.release()
	case want && k.inhibiting:
		if err := k.inhib.Assert(); err != nil {
			ui.Debug("inhibitor assert: %v", err)
		}
	}

	if k.inhibiting {
		k.jiggler.Tick(k.now())
	}
}

// Inhibiting reports the current awake state.
func (k *Keeper) Inhibiting() bool {
	return k.inhibiting
}

func (k *Keeper) engage(hit string) {
	if hit != "" {
		ui.Info("watched process detected (%s), staying awake", hit)
	} else {
		ui.Info("staying awake (%s)", k.scope)
	}

	if err := k.inhib.Start(k.scope); err != nil {
		// Best effort: the awake state is still entered so the jiggler
		// and later Assert retries keep working, but sleep is not
		// actually prevented.
		if !k.warned {
			ui.Warn("continuing without sleep inhibition: %v", err)
			k.warned = true
		}
	} else {
		ui.Debug("inhibitor engaged: %s", k.inhib.Name())
	}
	k.inhibiting = true
}

func (k *Keeper) release() {
	if !k.inhibiting {
		return
	}
	k.inhib.Stop()
	k.inhibiting = false
	ui.Debug("inhibitor released")
}
