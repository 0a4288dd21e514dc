package engine

import "fmt"

// SetInputPort selects a single input port index to record from. Passing
// nil (the default) means "record from all input ports" -- the fallback
// used for an unset or invalid index.
func (e *Engine) SetInputPort(index *int) {
	e.portMu.Lock()
	defer e.portMu.Unlock()
	e.inputPortIndex = index
}

// SetOutputPort selects the output port index a player will lazily open on
// first use. It does not open the port immediately.
func (e *Engine) SetOutputPort(index *int) {
	e.portMu.Lock()
	defer e.portMu.Unlock()
	e.outputPortIndex = index
}

// StartRecording opens the configured input port(s) and registers Capture
// as their driver callback. If no input port was selected, or the
// selected index is invalid, every available input port is opened
// instead.
func (e *Engine) StartRecording() error {
	if e.driver == nil {
		return fmt.Errorf("engine: no MIDI driver configured")
	}

	names, err := e.driver.InputPortNames()
	if err != nil {
		return fmt.Errorf("engine: list input ports: %w", err)
	}

	e.portMu.Lock()
	index := e.inputPortIndex
	e.portMu.Unlock()

	if index != nil && (*index < 0 || *index >= len(names)) {
		e.sink.WriteMessage(fmt.Sprintf("Invalid input port index %d; recording from all input ports.", *index))
		index = nil
	}

	if index != nil {
		return e.openInputPort(*index)
	}
	for n := range names {
		if err := e.openInputPort(n); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) openInputPort(index int) error {
	port, err := e.driver.OpenInput(index)
	if err != nil {
		return fmt.Errorf("engine: open input port %d: %w", index, err)
	}
	if err := port.Listen(func(raw []byte, driverDelta float64) {
		e.Capture(raw, driverDelta, false, -1)
	}); err != nil {
		return fmt.Errorf("engine: listen on input port %d: %w", index, err)
	}

	e.portMu.Lock()
	e.inputPorts = append(e.inputPorts, port)
	e.portMu.Unlock()
	return nil
}

// ensureOutputOpen lazily opens the configured output port on first use by
// a Loop Player.
func (e *Engine) ensureOutputOpen() error {
	e.portMu.Lock()
	defer e.portMu.Unlock()

	if e.outputPort != nil {
		return nil
	}
	if e.outputPortIndex == nil {
		return fmt.Errorf("engine: no output port selected")
	}
	if e.driver == nil {
		return fmt.Errorf("engine: no MIDI driver configured")
	}

	port, err := e.driver.OpenOutput(*e.outputPortIndex)
	if err != nil {
		return fmt.Errorf("engine: open output port %d: %w", *e.outputPortIndex, err)
	}
	e.outputPort = port
	return nil
}

func (e *Engine) sendOutput(raw []byte) error {
	e.portMu.Lock()
	port := e.outputPort
	e.portMu.Unlock()
	if port == nil {
		return fmt.Errorf("engine: output port not open")
	}
	return port.Send(raw)
}

// PortSummary renders every input port with the selected one (if any)
// marked [SELECTED], every output port the same way, and -- when no
// input port is explicitly selected -- the CLI usage hint.
func (e *Engine) PortSummary(progName string) ([]string, error) {
	if e.driver == nil {
		return nil, fmt.Errorf("engine: no MIDI driver configured")
	}

	var lines []string

	inNames, err := e.driver.InputPortNames()
	if err != nil {
		return nil, fmt.Errorf("engine: list input ports: %w", err)
	}
	e.portMu.Lock()
	inIndex := e.inputPortIndex
	outIndex := e.outputPortIndex
	e.portMu.Unlock()

	lines = append(lines, "MIDI IN PORTS:")
	for n, name := range inNames {
		selected := ""
		if inIndex != nil && *inIndex == n {
			selected = " [SELECTED] "
		}
		lines = append(lines, fmt.Sprintf("(%d) %s%s", n, name, selected))
	}
	lines = append(lines, "")

	outNames, err := e.driver.OutputPortNames()
	if err != nil {
		return nil, fmt.Errorf("engine: list output ports: %w", err)
	}
	lines = append(lines, "MIDI OUT PORTS:")
	for n, name := range outNames {
		selected := ""
		if outIndex != nil && *outIndex == n {
			selected = " [SELECTED] "
		}
		lines = append(lines, fmt.Sprintf("(%d) %s%s", n, name, selected))
	}
	lines = append(lines, "")

	if inIndex == nil {
		lines = append(lines, fmt.Sprintf("Usage: %s [-inPORT] [-outPORT]", progName))
		lines = append(lines, "Recording from ALL MIDI ports.")
		lines = append(lines, "If you want to record from only one port, you can provide a -inPORT number.")
		lines = append(lines, "If you want to use playback (loop), use -outPORT number.")
	}
	lines = append(lines, "")

	return lines, nil
}
