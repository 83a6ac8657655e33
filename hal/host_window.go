//go:build cgo

package hal

import (
	"context"
	"image"
	"time"

	"quadterm/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a desktop window that shows the framebuffer and forwards
// keyboard input. It blocks until the window closes or the app stops.
func RunWindow(opts Options, newApp AppFunc) error {
	h, err := newHost(opts)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApp(ctx, h)
	if err != nil {
		return finish(h, nil, err)
	}

	g := &hostGame{h: h, app: app}
	ebiten.SetWindowTitle("quadterm (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	err = ebiten.RunGame(g)
	cancel()
	return finish(h, app, err)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	seen    uint64
	app     App
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.advance(time.Now())
	return g.app.Step()
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.front))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	if seq := fb.snapshotRGB565(g.scratch); seq != g.seen {
		g.seen = seq
		expandRGB565(g.img, g.scratch)
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
