package engine

import (
	"sync/atomic"
	"time"

	"github.com/barmassimo/midi-notebook/internal/loop"
)

// loopPlayer is one worker goroutine for a playing slot. It snapshots the
// slot's body/duration/sync_delay once at startup so a concurrent
// re-record of the same slot can't corrupt an in-flight pass.
type loopPlayer struct {
	engine   *Engine
	slot     int
	isMaster bool

	forceExitFlag int32 // atomic bool
}

func newLoopPlayer(e *Engine, slot int) *loopPlayer {
	return &loopPlayer{engine: e, slot: slot, isMaster: slot == loop.MasterIndex}
}

func (p *loopPlayer) forceExit() {
	atomic.StoreInt32(&p.forceExitFlag, 1)
}

func (p *loopPlayer) forceExitRequested() bool {
	return atomic.LoadInt32(&p.forceExitFlag) != 0
}

func (p *loopPlayer) start() {
	go p.run()
}

func (p *loopPlayer) run() {
	l := p.engine.loops[p.slot]
	snap := l.Snapshot()

	if len(snap.Messages) < 2 {
		p.engine.sink.WriteMessage("NOTHING TO PLAY. :-(")
		return
	}

	// The first message's pre-delay is 0 unless this slave has a
	// recorded sync_delay and sync is currently active.
	messages := make([]float64, len(snap.Messages))
	for i, m := range snap.Messages {
		messages[i] = m.DeltaSeconds
	}
	if snap.SyncDelay == nil || !p.engine.IsSyncActive() {
		messages[0] = 0
		l.SetWaitingForSync(false)
	} else {
		messages[0] = *snap.SyncDelay
		l.SetWaitingForSync(true)
	}

	if err := p.engine.ensureOutputOpen(); err != nil {
		p.engine.sink.WriteMessage("Please select a MIDI output port.")
		return
	}

	var totalDelta float64
	for _, d := range messages[1:] {
		totalDelta += d
	}

	for {
		p.rendezvous()

		for i, m := range snap.Messages {
			if !l.IsPlayback() && !p.isMaster {
				return // master loop is never self-exited, only muted
			}
			if p.forceExitRequested() {
				return
			}

			time.Sleep(durationFromSeconds(messages[i]))

			if l.IsPlayback() {
				raw := m.Bytes()
				if err := p.engine.sendOutput(raw); err != nil {
					p.engine.logger.Warnw("failed to send loop player output", "error", err)
				}
				p.engine.Capture(raw, m.DeltaSeconds, true, p.slot)
			}
		}

		time.Sleep(durationFromSeconds(snap.Duration - totalDelta))
	}
}

// rendezvous implements the per-iteration sync barrier step: the master
// publishes the boundary and wakes every slave; a slave waits for the
// next boundary only while sync is active.
func (p *loopPlayer) rendezvous() {
	if p.isMaster {
		p.engine.barrier.masterTick(p.engine.clock.Now())
		return
	}
	if p.engine.barrier.isActive() {
		p.engine.barrier.slaveWait()
		p.engine.loops[p.slot].SetWaitingForSync(false)
	}
}

func durationFromSeconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
