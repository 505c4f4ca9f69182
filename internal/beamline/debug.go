package beamline

import (
	"io"
	"log"
	"sync/atomic"
)

const logPrefix = "[beamline] "

// LogWriters selects the destination of each log stream. A nil writer
// disables its stream.
type LogWriters struct {
	Ops   io.Writer // run lifecycle, failures, output locations
	Diag  io.Writer // per-step summaries, thresholds, counts
	Trace io.Writer // one line per event and column
}

// Verbosity returns writers that send ops to w always, and diag and trace
// to w when requested.
func Verbosity(w io.Writer, diag, trace bool) LogWriters {
	lw := LogWriters{Ops: w}
	if diag {
		lw.Diag = w
	}
	if trace {
		lw.Trace = w
	}
	return lw
}

type streams struct {
	ops, diag, trace *log.Logger
}

// active is swapped whole so a reader never sees a half-configured set.
var active atomic.Pointer[streams]

func init() { active.Store(&streams{}) }

// SetLogWriters replaces all three streams.
func SetLogWriters(w LogWriters) {
	active.Store(&streams{
		ops:   streamLogger(w.Ops),
		diag:  streamLogger(w.Diag),
		trace: streamLogger(w.Trace),
	})
}

func streamLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, logPrefix, log.LstdFlags|log.Lmicroseconds)
}

func printTo(l *log.Logger, format string, args []interface{}) {
	if l != nil {
		l.Printf(format, args...)
	}
}

// Opsf logs to the ops stream.
func Opsf(format string, args ...interface{}) { printTo(active.Load().ops, format, args) }

// Diagf logs to the diag stream.
func Diagf(format string, args ...interface{}) { printTo(active.Load().diag, format, args) }

// Tracef logs to the trace stream.
func Tracef(format string, args ...interface{}) { printTo(active.Load().trace, format, args) }

// TraceEnabled reports whether the trace stream has a writer.
func TraceEnabled() bool { return active.Load().trace != nil }
