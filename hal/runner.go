package hal

import (
	"context"
	"errors"
	"image"

	"github.com/fogleman/gg"
)

// App is the program a host runner drives.
type App interface {
	// Step runs once per frame. Returning ErrStop ends the runner cleanly.
	Step() error
	// Close runs after the last Step, before the HAL is released.
	Close() error
}

// AppFunc builds the App for a runner. ctx is cancelled when the runner exits.
type AppFunc func(ctx context.Context, h HAL) (App, error)

// StepFunc adapts a step function with nothing to release to App.
type StepFunc func() error

func (f StepFunc) Step() error  { return f() }
func (f StepFunc) Close() error { return nil }

// finish maps the runner's exit error and releases the app and host resources.
func finish(h *hostHAL, app App, err error) error {
	if errors.Is(err, ErrStop) {
		err = nil
	}
	if app != nil {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := h.close(); err == nil {
		err = cerr
	}
	return err
}

// frameImage returns the last presented frame as an RGBA image.
func frameImage(fb *hostFramebuffer) *image.RGBA {
	scratch := make([]byte, len(fb.front))
	fb.snapshotRGB565(scratch)
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	expandRGB565(img, scratch)
	return img
}

// SavePNG writes the last presented frame of h to path.
func SavePNG(h HAL, path string) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return ErrNotImplemented
	}
	dc := gg.NewContextForRGBA(frameImage(hh.fb))
	return dc.SavePNG(path)
}
