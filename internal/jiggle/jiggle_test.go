package jiggle

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/wakeguard/wakeguard/internal/config"
)

func TestGateInterval(t *testing.T) {
	g := &gate{interval: time.Minute}
	base := time.Unix(1000, 0)

	if !g.due(base, 0, nil) {
		t.Fatal("first check should fire")
	}
	if g.due(base.Add(30*time.Second), 0, nil) {
		t.Error("fired again inside the interval")
	}
	if !g.due(base.Add(time.Minute), 0, nil) {
		t.Error("did not fire once the interval elapsed")
	}
}

func TestGateIdleThreshold(t *testing.T) {
	tests := []struct {
		name string
		idle time.Duration
		err  error
		want bool
	}{
		{"below threshold", 9 * time.Second, nil, false},
		{"at threshold", 10 * time.Second, nil, true}, // boundary fires
		{"above threshold", 11 * time.Second, nil, true},
		{"measurement failed", time.Hour, errors.New("no input info"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &gate{interval: time.Minute, threshold: 10 * time.Second}
			if got := g.due(time.Unix(1000, 0), tt.idle, tt.err); got != tt.want {
				t.Errorf("due(idle=%v, err=%v) = %v, want %v", tt.idle, tt.err, got, tt.want)
			}
		})
	}
}

func TestGateSuppressedCheckDoesNotResetInterval(t *testing.T) {
	g := &gate{interval: time.Minute, threshold: 10 * time.Second}
	base := time.Unix(1000, 0)

	// User active: suppressed, interval untouched.
	if g.due(base, time.Second, nil) {
		t.Fatal("fired while the user was active")
	}
	// User goes idle a moment later: fires immediately, no interval wait.
	if !g.due(base.Add(time.Second), 10*time.Second, nil) {
		t.Error("should fire as soon as the user is idle")
	}
}

func TestGateNoThresholdIgnoresIdle(t *testing.T) {
	g := &gate{interval: time.Minute}
	if !g.due(time.Unix(1000, 0), 0, errors.New("unavailable")) {
		t.Error("without a threshold the idle measurement must not matter")
	}
}

func TestNewDisabledReturnsNoop(t *testing.T) {
	j := New(&config.Config{Jiggle: false})
	if j.Supported() {
		t.Error("disabled jiggler must report unsupported")
	}
	j.Tick(time.Now()) // must be a harmless no-op
}
