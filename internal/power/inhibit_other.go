//go:build !windows && !darwin && !linux

package power

import "github.com/pkg/errors"

type noopInhibitor struct{}

func newInhibitor() Inhibitor {
	return &noopInhibitor{}
}

func (n *noopInhibitor) Start(Scope) error {
	return errors.New("sleep inhibition is not supported on this platform")
}

func (n *noopInhibitor) Assert() error { return nil }
func (n *noopInhibitor) Stop()         {}
func (n *noopInhibitor) Name() string  { return "none" }
