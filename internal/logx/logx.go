// Package logx is the engine's logging wrapper. The teacher's
// textcolor.go keys every message to a small severity enum
// (DW_COLOR_INFO/ERROR/REC/DECODED/XMIT/DEBUG) before printing; we keep
// that idea but delegate the actual colored output to
// charmbracelet/log and add the structured fields (channel/device tag)
// that a signal-processing engine needs when several devices are being
// learned or transmitted at once.
package logx

import (
	"os"

	"github.com/charmbracelet/log"
)

// base is the process-wide logger. Callers needing a scoped logger use
// WithDevice/WithChannel rather than mutating this one.
var base = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.000",
})

// SetLevel adjusts verbosity; called once at daemon startup from the
// -v/-q pflag.
func SetLevel(level log.Level) {
	base.SetLevel(level)
}

// Logger returns the process-wide logger.
func Logger() *log.Logger { return base }

// WithDevice returns a derived logger carrying a "device" field, used
// by the AC state machine and the action store so a learn/transmit
// failure can be traced back to its logical device.
func WithDevice(device string) *log.Logger {
	return base.With("device", device)
}

// WithChannel returns a derived logger carrying a "channel" field, for
// installations with more than one IR receiver/emitter pair.
func WithChannel(channel int) *log.Logger {
	return base.With("channel", channel)
}

// WithProtocol returns a derived logger carrying a "protocol" field,
// used by the decoder cascade and the AC encoders.
func WithProtocol(protocolName string) *log.Logger {
	return base.With("protocol", protocolName)
}
