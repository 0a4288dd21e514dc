package engine

import "github.com/barmassimo/midi-notebook/internal/event"

// InputPort is the capability the engine needs from an open MIDI input:
// register a callback for every inbound message, and close when done.
// The concrete implementation (package midi) adapts gitlab.com/gomidi/midi/v2.
type InputPort interface {
	// Listen registers fn to be called for every inbound message, as
	// (raw wire bytes, driver-reported delta in seconds since the port's
	// previous message). Listen must not block; it returns immediately
	// after arranging delivery, and the driver calls fn from its own
	// goroutine.
	Listen(fn func(raw []byte, driverDeltaSeconds float64)) error
	Name() string
	Close() error
}

// OutputPort is the capability the engine needs from an open MIDI output.
type OutputPort interface {
	Send(raw []byte) error
	Close() error
}

// Driver enumerates and opens MIDI ports. The concrete implementation
// (package midi) adapts gitlab.com/gomidi/midi/v2.
type Driver interface {
	InputPortNames() ([]string, error)
	OutputPortNames() ([]string, error)
	OpenInput(index int) (InputPort, error)
	OpenOutput(index int) (OutputPort, error)
}

// Exporter lowers the notebook log into a MIDI file. The concrete
// implementation (package internal/export) adapts
// gitlab.com/gomidi/midi/v2/smf.
type Exporter interface {
	Export(messages []event.Message, bpm int, path string) error
}

// MessageSink is the write-message capability the host shell provides for
// human-readable monitor output.
type MessageSink interface {
	WriteMessage(line string)
}

// nopSink discards everything; used when no sink is configured.
type nopSink struct{}

func (nopSink) WriteMessage(string) {}
