package engine

import (
	"github.com/barmassimo/midi-notebook/internal/console"
	"github.com/barmassimo/midi-notebook/internal/event"
	"github.com/barmassimo/midi-notebook/internal/loop"
)

// Capture is the callback sink invoked by the MIDI driver for real input
// (loopback=false, playerSlot=-1) and by Loop Players replaying captured
// notes (loopback=true, playerSlot=the replaying slot). It never panics:
// any malformed input is logged as a warning and dropped, and a panic is
// recovered and logged, so a misbehaving driver callback can't crash the
// process.
func (e *Engine) Capture(raw []byte, driverDeltaSeconds float64, loopback bool, playerSlot int) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorw("recovered from panic in capture", "panic", r)
		}
	}()

	msg, err := event.FromBytes(raw, driverDeltaSeconds)
	if err != nil {
		e.logger.Warnw("dropping malformed captured message", "error", err)
		return
	}

	for n := 0; n < loop.NumLoops; n++ {
		sig := e.config().ToggleSignatures[n]
		if msg.MatchesControlChange(sig.CCNumber, sig.Value) {
			e.toggle(n)
			return
		}
	}

	now := e.clock.Now()

	e.logMu.Lock()
	delta := now.Sub(e.lastEvent).Seconds()
	if len(e.notebook) == 0 {
		delta = 0
	}
	e.lastEvent = now
	logged := msg.WithDelta(delta)
	e.notebook = append(e.notebook, logged)
	e.logMu.Unlock()

	if e.config().Monitor {
		column := playerSlot
		if !loopback {
			column = e.currentlyRecordingSlot()
		}
		e.sink.WriteMessage(console.FormatMonitorLine(logged, loopback, column))
	}

	if !loopback {
		isSyncActive := e.barrier.isActive()
		lastSync := e.barrier.lastSync()
		for n := 0; n < loop.NumLoops; n++ {
			if e.loops[n].IsRecording() {
				e.loops[n].Append(logged, now, isSyncActive, lastSync, n == loop.MasterIndex)
			}
		}
	}
}

// currentlyRecordingSlot returns the one slot currently recording, or the
// master slot when none is (at most one slot records at a time, so a
// live, non-loopback message always lands in some column).
func (e *Engine) currentlyRecordingSlot() int {
	for n := 0; n < loop.NumLoops; n++ {
		if e.loops[n].IsRecording() {
			return n
		}
	}
	return loop.MasterIndex
}
