// Package export lowers a captured notebook log into a two-track Standard
// MIDI File: a tempo track and a song track holding the paired notes and
// passed-through controller changes, quantized from wall-clock seconds to
// tempo-relative beats.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/barmassimo/midi-notebook/internal/event"
)

// sustainFallbackSeconds is the duration given to a NoteOn with no
// matching NoteOff by the time the notebook is saved.
const sustainFallbackSeconds = 15.0

// MessageSink is the write-message capability the exporter reports
// skipped/malformed entries through -- the same capability
// internal/engine.MessageSink exposes, redeclared here so this package
// doesn't need to import engine.
type MessageSink interface {
	WriteMessage(line string)
}

type nopSink struct{}

func (nopSink) WriteMessage(string) {}

// SMFExporter writes the notebook log with gitlab.com/gomidi/midi/v2/smf.
type SMFExporter struct {
	// Now returns the current time, used only to stamp the "{0}"
	// placeholder in a file name template; overridable in tests.
	Now func() time.Time

	// Sink reports "unknown message: skipping" lines for log entries
	// export can't classify. Nil discards them.
	Sink MessageSink
}

// NewSMFExporter returns an exporter using the real wall clock, reporting
// skipped entries through sink (which may be nil to discard them).
func NewSMFExporter(sink MessageSink) *SMFExporter {
	if sink == nil {
		sink = nopSink{}
	}
	return &SMFExporter{Now: time.Now, Sink: sink}
}

type pendingNote struct {
	channel  uint8
	note     uint8
	velocity uint8
	start    float64 // beats
	used     bool
}

// Export converts messages into beats at bpm and writes a two-track SMF
// to the path produced by resolving "{0}" in pathTemplate against the
// current timestamp. An empty messages slice is a no-op: no file is
// created.
func (x *SMFExporter) Export(messages []event.Message, bpm int, pathTemplate string) error {
	if len(messages) == 0 {
		return nil
	}

	path := resolvePath(pathTemplate, x.now())

	file := smf.NewSMF1()
	file.TimeFormat = smf.MetricTicks(960)

	file.Add(tempoTrack(bpm))

	sink := x.Sink
	if sink == nil {
		sink = nopSink{}
	}
	track, err := songTrack(messages, bpm, sink)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	file.Add(track)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer out.Close()

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func (x *SMFExporter) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}
	return time.Now()
}

func resolvePath(template string, now time.Time) string {
	stamp := now.Format("20060102-150405")
	return strings.Replace(template, "{0}", stamp, 1)
}

func tempoTrack(bpm int) smf.Track {
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("Tempo"))})
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTempo(float64(bpm)))})
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

// songTrack pairs NoteOn/NoteOff events and passes ControlChange events
// through, all placed at their beat-quantized absolute time and written
// with delta-time encoding sorted by time.
func songTrack(messages []event.Message, bpm int, sink MessageSink) (smf.Track, error) {
	type noteEvent struct {
		atBeats  float64
		durBeats float64
		channel  uint8
		note     uint8
		velocity uint8
	}
	type ccEvent struct {
		atBeats float64
		channel uint8
		cc      uint8
		value   uint8
	}

	var notes []noteEvent
	var ccs []ccEvent
	var pending []*pendingNote

	totalSeconds := 0.0
	for i, msg := range messages {
		// The first logged message always starts at beat 0.
		if i > 0 {
			totalSeconds += msg.DeltaSeconds
		}
		atBeats := totalSeconds * float64(bpm) / 60.0

		switch msg.Type() {
		case event.NoteOn:
			pending = append(pending, &pendingNote{
				channel:  msg.Channel(),
				note:     msg.Data1,
				velocity: msg.Data2,
				start:    atBeats,
			})
		case event.NoteOff:
			matched := false
			for _, p := range pending {
				if p.used || p.channel != msg.Channel() || p.note != msg.Data1 || atBeats <= p.start {
					continue
				}
				notes = append(notes, noteEvent{
					atBeats:  p.start,
					durBeats: atBeats - p.start,
					channel:  p.channel,
					note:     p.note,
					velocity: p.velocity,
				})
				p.used = true
				matched = true
				break
			}
			if !matched {
				// An isolated NoteOff with nothing open; nothing to pair.
				continue
			}
		case event.ControlChange:
			ccs = append(ccs, ccEvent{atBeats: atBeats, channel: msg.Channel(), cc: msg.Data1, value: msg.Data2})
		default:
			sink.WriteMessage(fmt.Sprintf("unknown message: skipping (status 0x%02X)", msg.Status))
		}
	}

	sustainBeats := sustainFallbackSeconds * float64(bpm) / 60.0
	for _, p := range pending {
		if p.used {
			continue
		}
		notes = append(notes, noteEvent{
			atBeats:  p.start,
			durBeats: sustainBeats,
			channel:  p.channel,
			note:     p.note,
			velocity: p.velocity,
		})
	}

	type absEvent struct {
		atTicks uint32
		onFirst bool
		msg     smf.Message
	}
	var events []absEvent
	ticksPerBeat := uint32(960)
	toTicks := func(beats float64) uint32 {
		if beats < 0 {
			beats = 0
		}
		return uint32(beats * float64(ticksPerBeat))
	}

	for _, n := range notes {
		events = append(events, absEvent{
			atTicks: toTicks(n.atBeats),
			onFirst: true,
			msg:     smf.Message(gomidi.NoteOn(n.channel, n.note, n.velocity)),
		})
		events = append(events, absEvent{
			atTicks: toTicks(n.atBeats + n.durBeats),
			onFirst: false,
			msg:     smf.Message(gomidi.NoteOff(n.channel, n.note)),
		})
	}
	for _, c := range ccs {
		events = append(events, absEvent{
			atTicks: toTicks(c.atBeats),
			msg:     smf.Message(gomidi.ControlChange(c.channel, c.cc, c.value)),
		})
	}

	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j-1].atTicks > events[j].atTicks; j-- {
			events[j-1], events[j] = events[j], events[j-1]
		}
	}

	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("Notebook"))})

	var last uint32
	for _, ev := range events {
		delta := ev.atTicks - last
		track = append(track, smf.Event{Delta: delta, Message: ev.msg})
		last = ev.atTicks
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})

	return track, nil
}
