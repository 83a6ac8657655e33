//go:build cgo

package hal

import (
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	bellSampleRate = 44100
	bellFreqHz     = 880
	bellLength     = 50 * time.Millisecond
	bellMinGap     = 100 * time.Millisecond
)

var (
	bellCtxOnce sync.Once
	bellCtx     *audio.Context
)

// hostBell plays a short square wave through ebiten's audio context.
type hostBell struct {
	mu     sync.Mutex
	logger Logger
	player *audio.Player
	last   time.Time
}

func newHostBell(logger Logger) Bell {
	bellCtxOnce.Do(func() {
		bellCtx = audio.NewContext(bellSampleRate)
	})
	return &hostBell{
		logger: logger,
		player: bellCtx.NewPlayerFromBytes(squareWave(bellFreqHz, bellLength)),
	}
}

// Ring restarts the tone. Rings closer together than bellMinGap are merged.
func (b *hostBell) Ring() {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	if !b.last.IsZero() && now.Sub(b.last) < bellMinGap {
		return
	}
	b.last = now
	if err := b.player.Rewind(); err != nil {
		b.logger.WriteLineString("bell: " + err.Error())
		return
	}
	b.player.Play()
}

// squareWave renders 16-bit little-endian stereo PCM.
func squareWave(freq int, d time.Duration) []byte {
	n := int(int64(bellSampleRate) * int64(d) / int64(time.Second))
	out := make([]byte, n*4)
	period := float64(bellSampleRate) / float64(freq)
	const amp = math.MaxInt16 / 8
	for i := 0; i < n; i++ {
		s := int16(amp)
		if math.Mod(float64(i), period) >= period/2 {
			s = -amp
		}
		out[i*4+0] = byte(s)
		out[i*4+1] = byte(s >> 8)
		out[i*4+2] = byte(s)
		out[i*4+3] = byte(s >> 8)
	}
	return out
}
