// Package engine implements the realtime MIDI looper: the capture
// pipeline, the four-slot loop controller and state machine, the
// master/slave loop players, the sync barrier, and the idle autosave
// poller. It depends only on the abstract Driver/Exporter/MessageSink
// capability interfaces defined in interfaces.go -- never on a concrete
// MIDI or file-writing library.
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/barmassimo/midi-notebook/internal/event"
	"github.com/barmassimo/midi-notebook/internal/loop"
)

// Engine is the process-wide shared handle: it owns the loop slots, the
// notebook log, and the sync barrier, and is passed by pointer to every
// driver callback, player goroutine, and the autosave poller.
type Engine struct {
	cfg     Config
	cfgMu   sync.RWMutex
	clock   event.Clock
	logger  *zap.SugaredLogger
	driver  Driver
	export  Exporter
	sink    MessageSink

	// logMu guards the notebook log and last-event timestamp -- the
	// "dedicated capture-log lock" design notes call for.
	logMu     sync.Mutex
	notebook  []event.Message
	lastEvent time.Time

	// portMu guards the open input ports and the output port.
	portMu          sync.Mutex
	inputPorts      []InputPort
	inputPortIndex  *int
	outputPort      OutputPort
	outputPortIndex *int

	loops          [loop.NumLoops]*loop.Loop
	toggleMu       sync.Mutex
	lastToggleTime [loop.NumLoops]time.Time

	barrier *syncBarrier

	playerMu sync.Mutex
	players  [loop.NumLoops]*loopPlayer

	stopAutosave chan struct{}
}

// New builds an Engine ready to have StartRecording/PortSummary/etc.
// called on it. driver, export, and sink may be nil; nil sink discards
// monitor output, nil export makes Save a no-op (useful in tests that
// only exercise capture/controller logic).
func New(cfg Config, driver Driver, export Exporter, sink MessageSink, logger *zap.SugaredLogger) *Engine {
	if sink == nil {
		sink = nopSink{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	e := &Engine{
		cfg:          cfg,
		clock:        event.SystemClock{},
		logger:       logger,
		driver:       driver,
		export:       export,
		sink:         sink,
		barrier:      newSyncBarrier(),
		stopAutosave: make(chan struct{}),
	}
	for n := range e.loops {
		e.loops[n] = loop.New()
	}
	return e
}

// config returns a copy of the current configuration (thread-safe read).
func (e *Engine) config() Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

// SetToggleSignature changes the CC signature that triggers slot n's
// toggle, e.g. from a loaded persisted configuration.
func (e *Engine) SetToggleSignature(n int, sig ToggleSignature) error {
	if n < 0 || n >= loop.NumLoops {
		return fmt.Errorf("engine: slot %d out of range", n)
	}
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	e.cfg.ToggleSignatures[n] = sig
	return nil
}

// Loop returns the nth loop slot for read-only inspection (status line,
// tests). n must be in 0..loop.NumLoops-1.
func (e *Engine) Loop(n int) *loop.Loop {
	return e.loops[n]
}

// LoopStatus renders slot n's short status string ("recording",
// "play - N.Nsec", "stop - N.Nsec", or "" when clean), for a console
// status line.
func (e *Engine) LoopStatus(n int) string {
	return e.loops[n].Status()
}

// Toggle drives slot n's single-tap/double-tap state machine directly,
// the same transition Capture applies when it recognizes slot n's CC
// signature. It is exposed for a console that wants to trigger a loop
// without a physical MIDI controller in reach.
func (e *Engine) Toggle(n int) error {
	if n < 0 || n >= loop.NumLoops {
		return fmt.Errorf("engine: slot %d out of range", n)
	}
	e.toggle(n)
	return nil
}

// IsSyncActive reports whether the master loop has ticked since the last
// time it was cleaned.
func (e *Engine) IsSyncActive() bool {
	return e.barrier.isActive()
}

// Reset cleans every slot, force-exits every running player, clears the
// double-tap timers and sync state, and clears the notebook log. It does
// not close open ports.
func (e *Engine) Reset() {
	e.logMu.Lock()
	e.notebook = nil
	e.lastEvent = e.clock.Now()
	e.logMu.Unlock()

	e.playerMu.Lock()
	for n := range e.loops {
		e.loops[n].Clean()
		if e.players[n] != nil {
			e.players[n].forceExit()
			e.players[n] = nil
		}
	}
	e.playerMu.Unlock()

	e.toggleMu.Lock()
	for n := range e.lastToggleTime {
		e.lastToggleTime[n] = time.Time{}
	}
	e.toggleMu.Unlock()

	e.barrier.reset()
}

// Close releases every open input port and the output port, aggregating
// any close errors.
func (e *Engine) Close() error {
	close(e.stopAutosave)

	e.portMu.Lock()
	defer e.portMu.Unlock()

	var err error
	for _, p := range e.inputPorts {
		err = multierr.Append(err, p.Close())
	}
	e.inputPorts = nil
	if e.outputPort != nil {
		err = multierr.Append(err, e.outputPort.Close())
		e.outputPort = nil
	}
	return err
}
