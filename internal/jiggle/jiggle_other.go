//go:build !windows

package jiggle

import "github.com/wakeguard/wakeguard/internal/config"

// No pointer synthesis outside Windows; the jiggler silently does nothing.
func newJiggler(*config.Config) Jiggler {
	return noopJiggler{}
}
