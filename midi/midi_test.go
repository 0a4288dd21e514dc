package midi

import "testing"

// TestInputPortNames checks that the driver enumerates without error.
// We can't assert specific ports since it depends on the system's MIDI
// backend.
func TestInputPortNames(t *testing.T) {
	d := NewDriver()
	names, err := d.InputPortNames()
	if err != nil {
		t.Errorf("InputPortNames() unexpected error: %v", err)
	}
	if names == nil {
		t.Error("InputPortNames() returned nil instead of empty slice")
	}
}

// TestOutputPortNames mirrors TestInputPortNames for the output side.
func TestOutputPortNames(t *testing.T) {
	d := NewDriver()
	names, err := d.OutputPortNames()
	if err != nil {
		t.Errorf("OutputPortNames() unexpected error: %v", err)
	}
	if names == nil {
		t.Error("OutputPortNames() returned nil instead of empty slice")
	}
}

// TestOpenInvalidInputPort exercises the adapter's out-of-range bounds
// check on input.
func TestOpenInvalidInputPort(t *testing.T) {
	d := NewDriver()
	if _, err := d.OpenInput(9999); err == nil {
		t.Error("OpenInput(9999) should return error for invalid port index")
	}
}

// TestOpenInvalidOutputPort exercises the same bounds check on output.
func TestOpenInvalidOutputPort(t *testing.T) {
	d := NewDriver()
	if _, err := d.OpenOutput(9999); err == nil {
		t.Error("OpenOutput(9999) should return error for invalid port index")
	}
}
