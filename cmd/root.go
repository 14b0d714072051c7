package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wakeguard/wakeguard/internal/config"
	"github.com/wakeguard/wakeguard/internal/jiggle"
	"github.com/wakeguard/wakeguard/internal/keeper"
	"github.com/wakeguard/wakeguard/internal/lockfile"
	"github.com/wakeguard/wakeguard/internal/power"
	"github.com/wakeguard/wakeguard/internal/scan"
	"github.com/wakeguard/wakeguard/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "wakeguard",
	Short: "Keep the machine awake while watched processes are running",
	Long: `wakeguard prevents idle sleep, either unconditionally or only while
specific processes are running.

By default it polls the process list and holds a platform sleep inhibitor
(SetThreadExecutionState on Windows, caffeinate on macOS, systemd-inhibit
and friends on Linux) while any watched process is found. On Windows an
optional mouse jiggler additionally simulates activity.

Examples:
  wakeguard --always-on --jiggle --jiggle-interval 120 --jiggle-pixels 2 --debug
  wakeguard --watch "obs64,Audacity,REAPER,filesync" --match substr
  wakeguard --duration 7200 --no-jiggle`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.Bool("always-on", false, "keep the machine awake unconditionally")
	f.Bool("no-always-on", false, "force watch mode (overrides --always-on)")
	f.Bool("jiggle", false, "enable the mouse jiggler (Windows only; on by default)")
	f.Bool("no-jiggle", false, "disable the mouse jiggler")
	f.Int("jiggle-interval", config.DefaultJiggleInterval, "seconds between pointer nudges")
	f.Int("jiggle-pixels", config.DefaultJigglePixels, "pointer nudge amplitude in pixels")
	f.Int("idle-threshold", 0, "only jiggle after this many seconds without user input")
	f.String("watch", "", "comma-separated process names to watch (default: built-in list)")
	f.String("match", string(config.MatchSubstr), "watch match mode: exact|startswith|substr|regex")
	f.Bool("display-only", false, "only keep the display awake")
	f.Bool("system-only", false, "only prevent system sleep")
	f.Int("duration", 0, "stay awake for a fixed number of seconds, then exit")
	f.Int("poll", config.DefaultPoll, "process scan interval in seconds")
	f.Bool("debug", false, "verbose diagnostic output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return errors.Wrap(err, "configuration error")
	}
	ui.SetDebug(cfg.Debug)

	ui.Banner(version)

	lock, err := lockfile.Acquire(lockfile.DefaultPath())
	if err != nil {
		if errors.Is(err, lockfile.ErrAlreadyLocked) {
			return errors.New("wakeguard is already running")
		}
		return err
	}
	defer lock.Release()

	scanner := scan.New(cfg)
	jiggler := jiggle.New(cfg)
	scope := power.ScopeFor(cfg.DisplayOnly, cfg.SystemOnly)

	fmt.Fprintln(os.Stderr)
	if cfg.AlwaysOn {
		ui.KeyValue("Mode", "always-on")
	} else {
		ui.KeyValue("Mode", fmt.Sprintf("watch (%s)", cfg.Match))
		ui.KeyValue("Watch", strings.Join(scanner.Terms(), ", "))
		ui.KeyValue("Poll", cfg.Poll.String())
	}
	ui.KeyValue("Scope", scope.String())
	if cfg.Duration > 0 {
		ui.KeyValue("Duration", cfg.Duration.String())
	}
	if cfg.Jiggle && jiggler.Supported() {
		ui.KeyValue("Jiggle", fmt.Sprintf("every %s, ±%dpx", cfg.JiggleInterval, cfg.JigglePixels))
	} else if cfg.Jiggle {
		ui.Debug("jiggler not supported on this platform, skipping")
	}
	ui.Separator()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	k := keeper.New(cfg, scanner, power.New(), jiggler)
	return k.Run(ctx)
}
