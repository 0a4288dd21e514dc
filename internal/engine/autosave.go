package engine

import (
	"time"

	"github.com/barmassimo/midi-notebook/internal/event"
)

const autosavePollInterval = 1 * time.Second

// StartAutosave launches the idle autosave poller: roughly once a second
// it checks whether the notebook has been quiet for longer than LongPause
// and, if so, saves. It runs until Close stops it, and never exits on a
// save error -- a failed write is logged and retried on the next tick.
func (e *Engine) StartAutosave() {
	if e.config().LongPause == nil {
		return
	}
	go e.autosaveLoop()
}

func (e *Engine) autosaveLoop() {
	ticker := time.NewTicker(autosavePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopAutosave:
			return
		case <-ticker.C:
			e.maybeAutosave()
		}
	}
}

func (e *Engine) maybeAutosave() {
	longPause := e.config().LongPause
	if longPause == nil {
		return
	}

	e.logMu.Lock()
	idle := len(e.notebook) > 0 && e.clock.Now().Sub(e.lastEvent) > *longPause
	e.logMu.Unlock()

	if !idle {
		return
	}
	if err := e.Save(); err != nil {
		e.logger.Warnw("autosave failed", "error", err)
	}
}

// Save exports the notebook log to the configured MIDI file name and
// clears it on success, for both the idle autosave poller and an
// explicit manual-save console command. Saving an empty log is a no-op.
func (e *Engine) Save() error {
	if e.export == nil {
		return nil
	}

	e.logMu.Lock()
	snapshot := make([]event.Message, len(e.notebook))
	copy(snapshot, e.notebook)
	e.logMu.Unlock()

	if len(snapshot) == 0 {
		return nil
	}

	if err := e.export.Export(snapshot, e.config().BPM, e.config().MIDIFileName); err != nil {
		return err
	}

	// Drop only the entries that were exported: a driver thread or a Loop
	// Player may have appended more to e.notebook while Export was
	// writing the file, and those must survive the clear.
	e.logMu.Lock()
	e.notebook = e.notebook[len(snapshot):]
	e.logMu.Unlock()
	return nil
}
