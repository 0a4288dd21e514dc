// Package midi adapts gitlab.com/gomidi/midi/v2 (with the rtmididrv
// backend) to the engine.Driver/InputPort/OutputPort capability
// interfaces. It is the concrete realtime MIDI I/O layer: the engine core
// never imports this package's dependencies directly, only the
// interfaces it satisfies.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // auto-register RtMIDI driver

	"github.com/barmassimo/midi-notebook/internal/engine"
)

// Driver enumerates and opens the system's MIDI ports through RtMIDI.
// It implements internal/engine.Driver.
type Driver struct{}

// NewDriver returns a Driver ready to list and open ports.
func NewDriver() *Driver {
	return &Driver{}
}

// InputPortNames returns every available input port's name, in driver
// enumeration order -- the indices the engine's -inN flag and config file
// address.
func (Driver) InputPortNames() ([]string, error) {
	ports := gomidi.GetInPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names, nil
}

// OutputPortNames returns every available output port's name.
func (Driver) OutputPortNames() ([]string, error) {
	ports := gomidi.GetOutPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names, nil
}

// OpenInput opens the input port at index for listening.
func (Driver) OpenInput(index int) (engine.InputPort, error) {
	ports := gomidi.GetInPorts()
	if index < 0 || index >= len(ports) {
		return nil, fmt.Errorf("midi: input port %d out of range (%d available)", index, len(ports))
	}
	return &inputPort{port: ports[index]}, nil
}

// OpenOutput opens the output port at index for sending.
func (Driver) OpenOutput(index int) (engine.OutputPort, error) {
	ports := gomidi.GetOutPorts()
	if index < 0 || index >= len(ports) {
		return nil, fmt.Errorf("midi: output port %d out of range (%d available)", index, len(ports))
	}
	port := ports[index]
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("midi: open output port %d: %w", index, err)
	}
	return &outputPort{port: port, send: send}, nil
}

// inputPort wraps a drivers.In, deferring the actual gomidi.ListenTo
// subscription until Listen is called -- the engine opens the port before
// it has a callback ready.
type inputPort struct {
	port drivers.In
	stop func()
}

// Listen registers fn as the driver callback. gomidi.ListenTo delivers
// each message on its own goroutine with a millisecond timestamp relative
// to when listening started; fn receives the difference from the previous
// message's timestamp. The engine computes its own wall-clock delta from
// its clock and does not use this value, so the conversion here only needs
// to be monotonic, not exact.
func (p *inputPort) Listen(fn func(raw []byte, driverDeltaSeconds float64)) error {
	var lastMS int32
	stop, err := gomidi.ListenTo(p.port, func(msg gomidi.Message, timestampms int32) {
		deltaSeconds := float64(timestampms-lastMS) / 1000.0
		lastMS = timestampms
		if deltaSeconds < 0 {
			deltaSeconds = 0
		}
		fn([]byte(msg), deltaSeconds)
	})
	if err != nil {
		return fmt.Errorf("midi: listen on %s: %w", p.port.String(), err)
	}
	p.stop = stop
	return nil
}

func (p *inputPort) Name() string {
	return p.port.String()
}

func (p *inputPort) Close() error {
	if p.stop != nil {
		p.stop()
	}
	return p.port.Close()
}

// outputPort wraps a drivers.Out and the gomidi.SendTo sender function
// bound to it.
type outputPort struct {
	port drivers.Out
	send func(msg gomidi.Message) error
}

func (p *outputPort) Send(raw []byte) error {
	return p.send(gomidi.Message(raw))
}

func (p *outputPort) Close() error {
	return p.port.Close()
}
