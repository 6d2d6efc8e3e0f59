package overwrite

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// signalDiscipline scopes the engine's cancellation indicator to one
// RunPasses invocation frame (spec §9 Design Notes: "Re-architect as an
// atomic flag owned by the engine's invocation frame, registered with a
// small signal-dispatch table on engine entry and deregistered on exit").
//
// Soft-handlers for user-defined/info signals set the flag and resume;
// SIGPIPE is ignored for the engine's lifetime. Both dispositions are
// restored on every exit path, including error paths (spec §4.2 "Signal
// discipline").
type signalDiscipline struct {
	flag int32
	ch   chan os.Signal
}

func installSignals() *signalDiscipline {
	d := &signalDiscipline{ch: make(chan os.Signal, 1)}
	notifyCancelSignals(d.ch)
	signal.Ignore(syscall.SIGPIPE)
	go func() {
		for range d.ch {
			atomic.StoreInt32(&d.flag, 1)
		}
	}()
	return d
}

// Pending reports whether the signal has fired, without clearing it.
func (d *signalDiscipline) Pending() bool {
	return atomic.LoadInt32(&d.flag) != 0
}

// Consume reports whether the signal had fired, clearing it (one-shot),
// per spec §4.2 "clear the interrupt flag (one-shot)".
func (d *signalDiscipline) Consume() bool {
	return atomic.CompareAndSwapInt32(&d.flag, 1, 0)
}

// stop restores the prior signal dispositions. Safe to call multiple
// times is not required; RunPasses calls it exactly once via defer.
func (d *signalDiscipline) stop() {
	signal.Stop(d.ch)
	close(d.ch)
	signal.Reset(syscall.SIGPIPE)
}
