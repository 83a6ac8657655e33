// Command quadterm runs the four-window terminal on the host, either in a
// desktop window, headless, or inside the current terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"quadterm/app"
	"quadterm/hal"
	"quadterm/internal/buildinfo"
	"quadterm/quados/console"
)

const terminalLogPath = "quadterm.log"

func main() {
	var (
		display     string
		hcfg        hal.HeadlessConfig
		divider     uint64
		flashPath   string
		open        string
		bell        bool
		showVersion bool
	)
	flag.StringVar(&display, "display", "window", "Display: window, headless, termbox or tcell.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Step rate of the headless and terminal runners.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N steps (0 = run until quit).")
	flag.Uint64Var(&divider, "tick-divider", app.DefaultTickDivider, "HAL milliseconds per timer interrupt.")
	flag.StringVar(&flashPath, "flash", envOr("QUADTERM_FLASH_PATH", "quadterm.flash"), "Flash image path (empty = RAM store; builds without cgo always use RAM).")
	flag.StringVar(&open, "open", "", "Comma separated stored files to load into windows 1..4.")
	flag.BoolVar(&bell, "bell", false, "Ring the bell on keys the editor ignores.")
	flag.StringVar(&hcfg.DumpPath, "dump", "", "Write the last frame to this PNG on exit (headless).")
	flag.BoolVar(&showVersion, "version", false, "Print the version and exit.")
	flag.Parse()

	if showVersion {
		fmt.Println(buildinfo.String())
		return
	}

	cfg := app.Config{
		TickDivider: divider,
		Open:        splitList(open),
		Bell:        bell,
	}
	if err := run(display, cfg, hcfg, flashPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(display string, cfg app.Config, hcfg hal.HeadlessConfig, flashPath string) error {
	w, h, err := console.FramebufferSize(console.DefaultFont)
	if err != nil {
		return err
	}
	opts := hal.Options{Width: w, Height: h, FlashPath: flashPath, Bell: cfg.Bell}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch display {
	case "window":
		cfg.HoldPanic = true
		return hal.RunWindow(opts, app.New(cfg))
	case "headless":
		err = hal.RunHeadless(ctx, opts, app.New(cfg), hcfg)
	case app.ConsoleTermbox, app.ConsoleTcell:
		// The terminal owns stdout, so log lines go to a file.
		cfg.Console = display
		opts.LogPath = terminalLogPath
		hcfg.DumpPath = ""
		err = hal.RunHeadless(ctx, opts, app.New(cfg), hcfg)
	default:
		return fmt.Errorf("unknown -display %q", display)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
