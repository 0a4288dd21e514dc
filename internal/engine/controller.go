package engine

import (
	"time"

	"github.com/barmassimo/midi-notebook/internal/loop"
)

const doubleTapWindow = 500 * time.Millisecond

// toggle implements the loop controller's single-tap/double-tap state
// machine for slot n.
func (e *Engine) toggle(n int) {
	now := e.clock.Now()

	e.toggleMu.Lock()
	last := e.lastToggleTime[n]
	doubleTap := !last.IsZero() && now.Sub(last) < doubleTapWindow
	if !doubleTap {
		e.lastToggleTime[n] = now
	}
	e.toggleMu.Unlock()

	if doubleTap {
		e.cleanLoop(n)
		e.startRecording(n)
		return
	}

	l := e.loops[n]
	switch {
	case l.IsPlayback():
		e.stopLoop(n)
	case l.IsRecording():
		e.stopRecording(n)
		if l.IsPlayable() {
			e.playLoop(n)
		} else {
			l.Clean()
			e.startRecording(n)
		}
	case l.IsClean():
		e.startRecording(n)
	default:
		e.playLoop(n)
	}
}

// startRecording stops recording on every other slot, force-exits any
// prior player for slot n, and -- when n is the master -- cleans the
// master and stops every slave, since a master re-record invalidates the
// slaves' phase lock.
func (e *Engine) startRecording(n int) {
	now := e.clock.Now()
	for i, l := range e.loops {
		if i != n {
			l.StopRecording(now)
		}
	}

	e.loops[n].SetPlayback(false)
	e.forceExitPlayer(n)

	if n == loop.MasterIndex {
		e.loops[loop.MasterIndex].Clean()
		e.barrier.reset()
		for i := 1; i < loop.NumLoops; i++ {
			e.stopLoop(i)
		}
	}

	e.loops[n].StartRecording()
}

// stopRecording ends recording on slot n without affecting anything else.
func (e *Engine) stopRecording(n int) {
	e.loops[n].StopRecording(e.clock.Now())
}

// stopLoop mutes slot n's output. For the master, the player thread is
// never exited -- only muted -- so the slaves' phase lock survives.
func (e *Engine) stopLoop(n int) {
	e.loops[n].SetPlayback(false)
}

// cleanLoop resets slot n to empty. Cleaning the master also stops sync,
// which frees any slave currently blocked on the barrier to free-run.
func (e *Engine) cleanLoop(n int) {
	e.loops[n].Clean()
	if n == loop.MasterIndex {
		e.barrier.reset()
	}
}

// playLoop sets slot n to playback and spawns a new Loop Player, with one
// exception: resuming the master while a slave is already playing and a
// prior master player handle exists leaves that player untouched (no new
// master player is spawned), so the slaves don't lose their phase lock.
func (e *Engine) playLoop(n int) {
	e.loops[n].SetPlayback(true)

	slaveIsPlaying := false
	for i := 1; i < loop.NumLoops; i++ {
		if e.loops[i].IsPlayback() {
			slaveIsPlaying = true
			break
		}
	}

	e.playerMu.Lock()
	priorMaster := e.players[loop.MasterIndex]
	needResumeMaster := n == loop.MasterIndex && slaveIsPlaying && priorMaster != nil
	e.playerMu.Unlock()

	if needResumeMaster {
		return
	}

	player := newLoopPlayer(e, n)
	player.start()

	e.playerMu.Lock()
	prior := e.players[n]
	e.players[n] = player
	e.playerMu.Unlock()

	if prior != nil {
		prior.forceExit()
	}
}

// forceExitPlayer force-exits and forgets slot n's player, if any.
func (e *Engine) forceExitPlayer(n int) {
	e.playerMu.Lock()
	p := e.players[n]
	e.players[n] = nil
	e.playerMu.Unlock()

	if p != nil {
		p.forceExit()
	}
}
