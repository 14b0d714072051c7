package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Built-in defaults, overridable by environment and flags.
const (
	DefaultPoll           = 5  // seconds between process scans
	DefaultJiggleInterval = 60 // seconds between pointer nudges
	DefaultJigglePixels   = 1  // nudge amplitude
)

// DefaultWatch is the built-in watch list: common recording and DAW
// processes, plus FreeFileSync/RealTimeSync. Terms are matched with the
// configured mode (substring by default) against normalized process names,
// so "filesync" covers both FreeFileSync and RealTimeSync binaries.
var DefaultWatch = []string{
	"obs", "obs64", "audacity", "reaper",
	"ableton", "logic", "cubase",
	"fl", "fl64", "protools", "studio one",
	"filesync", "freefilesync", "realtimesync",
}

// MatchMode selects how watch terms are compared against process names.
type MatchMode string

const (
	MatchExact      MatchMode = "exact"
	MatchStartsWith MatchMode = "startswith"
	MatchSubstr     MatchMode = "substr"
	MatchRegex      MatchMode = "regex"
)

// ParseMatchMode validates a user-supplied match mode string.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchExact:
		return MatchExact, nil
	case MatchStartsWith:
		return MatchStartsWith, nil
	case MatchSubstr:
		return MatchSubstr, nil
	case MatchRegex:
		return MatchRegex, nil
	}
	return "", fmt.Errorf("--match must be one of exact|startswith|substr|regex (got %q)", s)
}

// Config is the immutable run configuration. Built once by Load at startup
// and passed explicitly to every component; nothing mutates it afterwards.
type Config struct {
	AlwaysOn bool

	Watch    []string
	Match    MatchMode
	Patterns []*regexp.Regexp // compiled case-insensitive, only for MatchRegex

	Jiggle         bool
	JiggleInterval time.Duration
	JigglePixels   int
	IdleThreshold  time.Duration // 0 = no idle gating

	DisplayOnly bool
	SystemOnly  bool

	Duration time.Duration // 0 = run until signalled
	Poll     time.Duration

	Debug bool
}

// Load resolves configuration from defaults < environment < flags, the
// flag set being the cobra command's. There is deliberately no config
// file layer.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		Jiggle:         true,
		Match:          MatchSubstr,
		JiggleInterval: DefaultJiggleInterval * time.Second,
		JigglePixels:   DefaultJigglePixels,
		Poll:           DefaultPoll * time.Second,
	}

	watch := ""
	watchSet := false
	alwaysOnSet := false

	// 1. Environment variables override built-in defaults.
	if err := loadFromEnv(cfg, &watch, &watchSet, &alwaysOnSet); err != nil {
		return nil, err
	}

	// 2. CLI flags override everything. Only flags the user actually set
	// are applied, so pflag defaults don't clobber env values.
	if fs.Changed("always-on") {
		cfg.AlwaysOn = true
		alwaysOnSet = true
	}
	if fs.Changed("no-always-on") {
		cfg.AlwaysOn = false
		alwaysOnSet = true
	}
	if fs.Changed("jiggle") {
		cfg.Jiggle = true
	}
	if fs.Changed("no-jiggle") {
		cfg.Jiggle = false
	}
	if fs.Changed("jiggle-interval") {
		v, _ := fs.GetInt("jiggle-interval")
		cfg.JiggleInterval = time.Duration(v) * time.Second
	}
	if fs.Changed("jiggle-pixels") {
		v, _ := fs.GetInt("jiggle-pixels")
		cfg.JigglePixels = v
	}
	if fs.Changed("idle-threshold") {
		v, _ := fs.GetInt("idle-threshold")
		if v <= 0 {
			return nil, fmt.Errorf("--idle-threshold must be a positive number of seconds (got %d)", v)
		}
		cfg.IdleThreshold = time.Duration(v) * time.Second
	}
	if fs.Changed("watch") {
		watch, _ = fs.GetString("watch")
		watchSet = true
	}
	if fs.Changed("match") {
		m, _ := fs.GetString("match")
		mode, err := ParseMatchMode(m)
		if err != nil {
			return nil, err
		}
		cfg.Match = mode
	}
	if fs.Changed("display-only") {
		cfg.DisplayOnly = true
	}
	if fs.Changed("system-only") {
		cfg.SystemOnly = true
	}
	if fs.Changed("duration") {
		v, _ := fs.GetInt("duration")
		if v <= 0 {
			return nil, fmt.Errorf("--duration must be a positive number of seconds (got %d)", v)
		}
		cfg.Duration = time.Duration(v) * time.Second
	}
	if fs.Changed("poll") {
		v, _ := fs.GetInt("poll")
		cfg.Poll = time.Duration(v) * time.Second
	}
	if fs.Changed("debug") {
		cfg.Debug = true
	}

	// --duration without an explicit mode choice keeps the machine awake
	// unconditionally for the window.
	if cfg.Duration > 0 && !watchSet && !alwaysOnSet {
		cfg.AlwaysOn = true
	}

	cfg.Watch = splitWatch(watch)
	if len(cfg.Watch) == 0 {
		cfg.Watch = DefaultWatch
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Match == MatchRegex {
		if err := compilePatterns(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadFromEnv applies WAKEGUARD_* overrides.
func loadFromEnv(cfg *Config, watch *string, watchSet, alwaysOnSet *bool) error {
	if v := os.Getenv("WAKEGUARD_ALWAYS_ON"); v != "" {
		b, err := parseBool("WAKEGUARD_ALWAYS_ON", v)
		if err != nil {
			return err
		}
		cfg.AlwaysOn = b
		*alwaysOnSet = true
	}
	if v := os.Getenv("WAKEGUARD_JIGGLE"); v != "" {
		b, err := parseBool("WAKEGUARD_JIGGLE", v)
		if err != nil {
			return err
		}
		cfg.Jiggle = b
	}
	if v := os.Getenv("WAKEGUARD_JIGGLE_INTERVAL"); v != "" {
		d, err := parseSeconds("WAKEGUARD_JIGGLE_INTERVAL", v)
		if err != nil {
			return err
		}
		cfg.JiggleInterval = d
	}
	if v := os.Getenv("WAKEGUARD_JIGGLE_PIXELS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("WAKEGUARD_JIGGLE_PIXELS must be a number (got %q)", v)
		}
		cfg.JigglePixels = n
	}
	if v := os.Getenv("WAKEGUARD_IDLE_THRESHOLD"); v != "" {
		d, err := parseSeconds("WAKEGUARD_IDLE_THRESHOLD", v)
		if err != nil {
			return err
		}
		cfg.IdleThreshold = d
	}
	if v := os.Getenv("WAKEGUARD_WATCH"); v != "" {
		*watch = v
		*watchSet = true
	}
	if v := os.Getenv("WAKEGUARD_MATCH"); v != "" {
		mode, err := ParseMatchMode(v)
		if err != nil {
			return fmt.Errorf("WAKEGUARD_MATCH: %w", err)
		}
		cfg.Match = mode
	}
	if v := os.Getenv("WAKEGUARD_DURATION"); v != "" {
		d, err := parseSeconds("WAKEGUARD_DURATION", v)
		if err != nil {
			return err
		}
		cfg.Duration = d
	}
	if v := os.Getenv("WAKEGUARD_POLL"); v != "" {
		d, err := parseSeconds("WAKEGUARD_POLL", v)
		if err != nil {
			return err
		}
		cfg.Poll = d
	}
	if v := os.Getenv("WAKEGUARD_DEBUG"); v != "" {
		b, err := parseBool("WAKEGUARD_DEBUG", v)
		if err != nil {
			return err
		}
		cfg.Debug = b
	}
	return nil
}

func parseBool(name, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s must be true or false (got %q)", name, v)
}

func parseSeconds(name, v string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds (got %q)", name, v)
	}
	return time.Duration(n) * time.Second, nil
}

// splitWatch splits a comma-separated watch list, dropping empty entries.
// Terms are kept verbatim here; the scanner normalizes them.
func splitWatch(s string) []string {
	var terms []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// validate rejects non-positive numeric settings with a usage error naming
// the offending flag. Optional values (duration, idle threshold) are only
// checked when set.
func validate(cfg *Config) error {
	if cfg.JiggleInterval <= 0 {
		return fmt.Errorf("--jiggle-interval must be a positive number of seconds (got %d)", int(cfg.JiggleInterval/time.Second))
	}
	if cfg.JigglePixels <= 0 {
		return fmt.Errorf("--jiggle-pixels must be a positive pixel count (got %d)", cfg.JigglePixels)
	}
	if cfg.IdleThreshold < 0 {
		return fmt.Errorf("--idle-threshold must be a positive number of seconds")
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("--duration must be a positive number of seconds")
	}
	if cfg.Poll <= 0 {
		return fmt.Errorf("--poll must be a positive number of seconds (got %d)", int(cfg.Poll/time.Second))
	}
	return nil
}

// compilePatterns compiles the watch terms as case-insensitive regexes.
func compilePatterns(cfg *Config) error {
	cfg.Patterns = make([]*regexp.Regexp, 0, len(cfg.Watch))
	for _, term := range cfg.Watch {
		re, err := regexp.Compile("(?i)" + term)
		if err != nil {
			return fmt.Errorf("--watch term %q is not a valid regex: %v", term, err)
		}
		cfg.Patterns = append(cfg.Patterns, re)
	}
	return nil
}
