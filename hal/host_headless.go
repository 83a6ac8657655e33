package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Hz is the step rate.
	Hz int
	// Ticks stops the runner after N steps. Zero runs until ctx is done or the app stops.
	Ticks uint64
	// DumpPath, when set, receives a PNG of the last presented frame on exit.
	DumpPath string
}

// RunHeadless runs the app without opening a window.
func RunHeadless(ctx context.Context, opts Options, newApp AppFunc, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h, err := newHost(opts)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := newApp(ctx, h)
	if err != nil {
		return finish(h, nil, err)
	}
	err = runHeadless(ctx, h, app, d, cfg.Ticks)
	cancel()

	if cfg.DumpPath != "" {
		if derr := SavePNG(h, cfg.DumpPath); derr != nil && err == nil {
			err = fmt.Errorf("dump %q: %w", cfg.DumpPath, derr)
		}
	}
	return finish(h, app, err)
}

func runHeadless(ctx context.Context, h *hostHAL, app App, d time.Duration, limit uint64) error {
	t := time.NewTicker(d)
	defer t.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			h.t.advance(now)
			if err := app.Step(); err != nil {
				return err
			}
			n++
			if limit > 0 && n >= limit {
				return nil
			}
		}
	}
}
