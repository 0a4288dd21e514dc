package engine

import "time"

// ToggleSignature is the (controller number, value) ControlChange pair
// that triggers a slot's toggle.
type ToggleSignature struct {
	CCNumber byte
	Value    byte
}

// Config carries the engine's runtime-tunable options.
type Config struct {
	// LongPause is the idle threshold for autosave; nil disables it.
	LongPause *time.Duration

	// MIDIFileName is the filename template; "{0}" is replaced with the
	// YYYYMMDD-HHMMSS timestamp at export time.
	MIDIFileName string

	// BPM is the tempo written to the SMF and used for sec->beat
	// conversion.
	BPM int

	// Monitor, when true, emits every captured message through the
	// configured MessageSink.
	Monitor bool

	// ToggleSignatures has exactly loop.NumLoops entries.
	ToggleSignatures [4]ToggleSignature
}

// DefaultConfig returns the engine's out-of-the-box options: no autosave,
// 120 BPM, monitor on, and the four CC signatures 21..24/127.
func DefaultConfig() Config {
	return Config{
		LongPause:    nil,
		MIDIFileName: "midi_notebook_{0}.mid",
		BPM:          120,
		Monitor:      true,
		ToggleSignatures: [4]ToggleSignature{
			{CCNumber: 21, Value: 127},
			{CCNumber: 22, Value: 127},
			{CCNumber: 23, Value: 127},
			{CCNumber: 24, Value: 127},
		},
	}
}
