//go:build !cgo

package hal

// logBell stands in for the audio bell when cgo is unavailable.
type logBell struct {
	logger Logger
}

func newHostBell(logger Logger) Bell { return logBell{logger: logger} }

func (b logBell) Ring() { b.logger.WriteLineString("bell") }
