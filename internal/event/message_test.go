package event

import "testing"

func TestFromBytes(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		delta   float64
		want    Message
		wantErr bool
	}{
		{"note on", []byte{0x90, 60, 100}, 0.5, Message{0x90, 60, 100, 0.5}, false},
		{"note off", []byte{0x80, 60, 0}, 0.25, Message{0x80, 60, 0, 0.25}, false},
		{"control change", []byte{0xB0, 64, 127}, 0, Message{0xB0, 64, 127, 0}, false},
		{"too short", []byte{0x90}, 0, Message{}, true},
		{"empty", []byte{}, 0, Message{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromBytes(tt.raw, tt.delta)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromBytes(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("FromBytes(%v) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMessageTypeAndChannel(t *testing.T) {
	tests := []struct {
		name    string
		status  byte
		want    EventType
		channel uint8
	}{
		{"note on channel 0", 0x90, NoteOn, 0},
		{"note on channel 15", 0x9F, NoteOn, 15},
		{"note off channel 3", 0x83, NoteOff, 3},
		{"control change channel 9", 0xB9, ControlChange, 9},
		{"program change is other", 0xC0, Other, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{Status: tt.status}
			if got := m.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
			if got := m.Channel(); got != tt.channel {
				t.Errorf("Channel() = %d, want %d", got, tt.channel)
			}
		})
	}
}

func TestMatchesControlChange(t *testing.T) {
	m := Message{Status: 0xB2, Data1: 22, Data2: 127}
	if !m.MatchesControlChange(22, 127) {
		t.Error("expected signature match")
	}
	if m.MatchesControlChange(22, 126) {
		t.Error("expected signature mismatch on value")
	}
	noteOn := Message{Status: 0x90, Data1: 22, Data2: 127}
	if noteOn.MatchesControlChange(22, 127) {
		t.Error("note-on should never match a CC signature")
	}
}

func TestWithDelta(t *testing.T) {
	m := Message{Status: 0x90, Data1: 60, Data2: 100, DeltaSeconds: 1.0}
	clone := m.WithDelta(0)
	if clone.DeltaSeconds != 0 {
		t.Errorf("WithDelta(0).DeltaSeconds = %v, want 0", clone.DeltaSeconds)
	}
	if m.DeltaSeconds != 1.0 {
		t.Error("WithDelta must not mutate the receiver")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	m := Message{Status: 0x90, Data1: 60, Data2: 100}
	got := m.Bytes()
	want := []byte{0x90, 60, 100}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}
