// Package scan answers "is a watched process currently running?" by
// listing process names with the platform's enumeration command once per
// poll cycle.
package scan

import (
	"context"
	"encoding/csv"
	"io"
	"os/exec"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wakeguard/wakeguard/internal/config"
)

// listTimeout bounds a single run of the process-listing command so a
// wedged tasklist/ps cannot stall the poll loop.
const listTimeout = 10 * time.Second

// runner executes the listing command; injectable for tests.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Scanner matches normalized running-process names against watch terms.
type Scanner struct {
	terms    []string
	mode     config.MatchMode
	patterns []*regexp.Regexp
	run      runner
}

// New builds a Scanner from the run configuration. Watch terms are
// normalized once here, the same way process names are at scan time.
func New(cfg *config.Config) *Scanner {
	terms := make([]string, 0, len(cfg.Watch))
	for _, t := range cfg.Watch {
		if n := Canon(t); n != "" {
			terms = append(terms, n)
		}
	}
	return &Scanner{
		terms:    terms,
		mode:     cfg.Match,
		patterns: cfg.Patterns,
		run:      defaultRunner,
	}
}

// Terms returns the normalized watch terms, for startup output.
func (s *Scanner) Terms() []string {
	return s.terms
}

// Scan lists running processes and reports the first process name that any
// watch term matches. An error means the listing command failed; callers
// treat that cycle as no-match and retry on the next poll.
func (s *Scanner) Scan(ctx context.Context) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	out, err := s.run(ctx, listCommand, listArgs...)
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to run %s", listCommand)
	}

	return s.Match(parseNames(out))
}

// Match evaluates the configured mode against a process snapshot. Exported
// separately from Scan so the predicate logic is testable without a live
// process list.
func (s *Scanner) Match(names []string) (string, bool, error) {
	for _, name := range names {
		if s.matchName(name) {
			return name, true, nil
		}
	}
	return "", false, nil
}

func (s *Scanner) matchName(name string) bool {
	if s.mode == config.MatchRegex {
		for _, re := range s.patterns {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}
	for _, term := range s.terms {
		switch s.mode {
		case config.MatchExact:
			if name == term {
				return true
			}
		case config.MatchStartsWith:
			if strings.HasPrefix(name, term) {
				return true
			}
		default: // substr
			if strings.Contains(name, term) {
				return true
			}
		}
	}
	return false
}

// Canon normalizes a process name or watch term: trimmed, lowercased,
// trailing ".exe" stripped.
func Canon(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(n, ".exe")
}

// parseCSVNames extracts normalized image names from `tasklist /fo csv /nh`
// output. The image name is the first CSV column.
func parseCSVNames(out []byte) []string {
	r := csv.NewReader(strings.NewReader(string(out)))
	r.FieldsPerRecord = -1

	var names []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if len(row) == 0 {
			continue
		}
		if n := Canon(row[0]); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// parseCommNames extracts normalized names from `ps -A -o comm=` output.
// Some systems report full paths in comm, so only the basename is kept.
func parseCommNames(out []byte) []string {
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if n := Canon(path.Base(strings.TrimSpace(line))); n != "" && n != "." {
			names = append(names, n)
		}
	}
	return names
}
