// Package breaksignal defines the interface for an external asynchronous
// break source (e.g. a host SIGINT handler), grounded directly on
// irq.Sender: an interrupt receiver should depend on this small
// interface rather than the concrete signal-handling implementation, the
// same way irq decouples interrupt sources from interrupt-raising chips.
package breaksignal

import "sync/atomic"

// Source reports whether a break (e.g. Ctrl-C) has been raised since it
// was last cleared. The interpreter polls this between statements, per
// spec §5's "suspension points" contract.
type Source interface {
	// Raised indicates whether a break is currently pending.
	Raised() bool
	// Clear acknowledges the break, resetting Raised to false.
	Clear()
}

// none is a Source that never raises, used where no external break
// signal is wired up (e.g. running a program from a test or a script).
type none struct{}

func (none) Raised() bool { return false }
func (none) Clear()       {}

// None returns a Source that never raises a break.
func None() Source { return none{} }

// Flag is a simple in-process Source a host can set from a signal
// handler goroutine.
type Flag struct {
	raised atomic.Bool
}

// NewFlag returns a ready-to-use Flag, not raised.
func NewFlag() *Flag {
	return &Flag{}
}

// Raise marks a break as pending. Safe to call from a signal handler
// goroutine: the flag is an atomic.Bool, and the interpreter reads it
// between statements (single-threaded cooperative execution per spec §5),
// so the write is observed at the next poll.
func (f *Flag) Raise() {
	f.raised.Store(true)
}

// Raised implements Source.
func (f *Flag) Raised() bool {
	return f.raised.Load()
}

// Clear implements Source.
func (f *Flag) Clear() {
	f.raised.Store(false)
}
