package scan

import (
	"context"
	"reflect"
	"regexp"
	"testing"

	"github.com/pkg/errors"

	"github.com/wakeguard/wakeguard/internal/config"
)

// fakeListing parses identically under both platform parsers: one process
// name per line with no CSV quoting.
var fakeListing = []byte("code\nFreeFileSync.exe\n")

func regexpMustCompile(t *testing.T, expr string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(expr)
	if err != nil {
		t.Fatalf("compile %q: %v", expr, err)
	}
	return re
}

func TestCanon(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"FreeFileSync.exe", "freefilesync"},
		{"  OBS64 ", "obs64"},
		{"reaper", "reaper"},
		{"Setup.EXE", "setup"}, // suffix check runs after lowering
		{"", ""},
	}
	for _, tt := range tests {
		if got := Canon(tt.in); got != tt.want {
			t.Errorf("Canon(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newTestScanner(t *testing.T, mode config.MatchMode, terms ...string) *Scanner {
	t.Helper()
	cfg := &config.Config{Watch: terms, Match: mode}
	if mode == config.MatchRegex {
		for _, term := range terms {
			cfg.Patterns = append(cfg.Patterns, regexpMustCompile(t, "(?i)"+term))
		}
	}
	return New(cfg)
}

func TestMatchModes(t *testing.T) {
	procs := []string{"freefilesync", "obs64", "code"}

	tests := []struct {
		mode config.MatchMode
		term string
		want bool
	}{
		// the FreeFileSync fixture: substr and regex hit, exact and
		// startswith don't
		{config.MatchSubstr, "filesync", true},
		{config.MatchStartsWith, "filesync", false},
		{config.MatchExact, "filesync", false},
		{config.MatchRegex, "filesync", true},

		{config.MatchExact, "obs64", true},
		{config.MatchExact, "obs", false},
		{config.MatchStartsWith, "obs", true},
		{config.MatchStartsWith, "bs6", false},
		{config.MatchSubstr, "bs6", true},
		{config.MatchSubstr, "audacity", false},
		{config.MatchRegex, "^obs\\d+$", true},
		{config.MatchRegex, "^audacity", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.term, func(t *testing.T) {
			s := newTestScanner(t, tt.mode, tt.term)
			_, ok, err := s.Match(procs)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if ok != tt.want {
				t.Errorf("mode=%s term=%q against %v: got %v, want %v",
					tt.mode, tt.term, procs, ok, tt.want)
			}
		})
	}
}

func TestMatchReportsHitName(t *testing.T) {
	s := newTestScanner(t, config.MatchSubstr, "filesync")
	hit, ok, _ := s.Match([]string{"code", "freefilesync", "realtimesync"})
	if !ok || hit != "freefilesync" {
		t.Errorf("got (%q, %v), want first matching name", hit, ok)
	}
}

func TestNewNormalizesTerms(t *testing.T) {
	s := newTestScanner(t, config.MatchSubstr, " FileSync.exe ", "OBS64")
	want := []string{"filesync", "obs64"}
	if !reflect.DeepEqual(s.Terms(), want) {
		t.Errorf("Terms() = %v, want %v", s.Terms(), want)
	}
}

func TestParseCSVNames(t *testing.T) {
	out := []byte(`"FreeFileSync.exe","1234","Console","1","45,678 K"
"System Idle Process","0","Services","0","8 K"
not,a,quoted,row
"obs64.exe","5678","Console","1","120,000 K"
`)
	names := parseCSVNames(out)
	want := []string{"freefilesync", "system idle process", "not", "obs64"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("parseCSVNames = %v, want %v", names, want)
	}
}

func TestParseCommNames(t *testing.T) {
	out := []byte("launchd\n/usr/sbin/distnoted\nFreeFileSync.exe\n\n  \n")
	names := parseCommNames(out)
	want := []string{"launchd", "distnoted", "freefilesync"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("parseCommNames = %v, want %v", names, want)
	}
}

func TestScanListFailureIsNoMatch(t *testing.T) {
	s := newTestScanner(t, config.MatchSubstr, "obs")
	s.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("command not found")
	}

	hit, ok, err := s.Scan(context.Background())
	if err == nil {
		t.Fatal("Scan should surface the listing error")
	}
	if ok || hit != "" {
		t.Errorf("failed scan must report no match, got (%q, %v)", hit, ok)
	}
}

func TestScanWithFakeListing(t *testing.T) {
	s := newTestScanner(t, config.MatchSubstr, "filesync")
	s.run = func(context.Context, string, ...string) ([]byte, error) {
		return fakeListing, nil
	}

	hit, ok, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if hit != "freefilesync" {
		t.Errorf("hit = %q, want freefilesync", hit)
	}
}
