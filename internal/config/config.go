// Package config persists the port selection and loop-trigger signatures
// to an INI-style file between runs using gopkg.in/ini.v1.
package config

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/barmassimo/midi-notebook/internal/engine"
)

const (
	sectionPorts    = "MIDI_PORTS"
	sectionTriggers = "LOOP_MIDI_TRIGGERS"

	keyInput  = "input"
	keyOutput = "output"
)

// Persisted mirrors what the file stores: port indices are nil when
// absent or malformed, never zero-valued.
type Persisted struct {
	InputPort  *int
	OutputPort *int
	Triggers   [4]engine.ToggleSignature
}

// Load reads path, tolerating a missing file (returns defaults) and
// malformed integers (the affected field is left unset rather than
// erroring the whole load).
func Load(path string, defaults [4]engine.ToggleSignature) (Persisted, error) {
	p := Persisted{Triggers: defaults}

	cfg, err := ini.Load(path)
	if err != nil {
		// A missing or unreadable file just means "nothing persisted yet".
		return p, nil
	}

	ports := cfg.Section(sectionPorts)
	if v, err := ports.Key(keyInput).Int(); err == nil {
		p.InputPort = &v
	}
	if v, err := ports.Key(keyOutput).Int(); err == nil {
		p.OutputPort = &v
	}

	triggers := cfg.Section(sectionTriggers)
	for n := 0; n < 4; n++ {
		ccKey := fmt.Sprintf("loop_%d_ccn", n)
		valKey := fmt.Sprintf("loop_%d_value", n)

		if cc, err := triggers.Key(ccKey).Int(); err == nil {
			p.Triggers[n].CCNumber = byte(cc)
		}
		if val, err := triggers.Key(valKey).Int(); err == nil {
			p.Triggers[n].Value = byte(val)
		}
	}

	return p, nil
}

// Save serializes every current value verbatim, creating path if needed.
func Save(path string, p Persisted) error {
	cfg := ini.Empty()

	ports := cfg.Section(sectionPorts)
	if p.InputPort != nil {
		ports.Key(keyInput).SetValue(fmt.Sprintf("%d", *p.InputPort))
	}
	if p.OutputPort != nil {
		ports.Key(keyOutput).SetValue(fmt.Sprintf("%d", *p.OutputPort))
	}

	triggers := cfg.Section(sectionTriggers)
	for n, sig := range p.Triggers {
		triggers.Key(fmt.Sprintf("loop_%d_ccn", n)).SetValue(fmt.Sprintf("%d", sig.CCNumber))
		triggers.Key(fmt.Sprintf("loop_%d_value", n)).SetValue(fmt.Sprintf("%d", sig.Value))
	}

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	return nil
}
