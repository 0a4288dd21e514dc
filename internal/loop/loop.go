// Package loop holds the per-slot state container and the handful of
// derived invariants (clean/playable/recording-vs-playback) that the loop
// controller and loop player both read. There are exactly NumLoops slots;
// slot 0 is the master, slots 1..NumLoops-1 are slaves.
package loop

import (
	"fmt"
	"sync"
	"time"

	"github.com/barmassimo/midi-notebook/internal/event"
)

// NumLoops is the fixed number of loop slots the engine maintains.
const NumLoops = 4

// MasterIndex is the slot index treated as the phase reference.
const MasterIndex = 0

// Loop is one slot's state. All mutation goes through the methods below,
// which hold the embedded mutex -- readers (the Loop Player) must use
// Snapshot rather than reaching into the fields directly.
type Loop struct {
	mu sync.Mutex

	isRecording    bool
	isPlayback     bool
	waitingForSync bool

	messages []event.Message

	startRecordingTime *time.Time
	duration           *float64
	syncDelay          *float64
}

// New returns a freshly cleaned loop slot.
func New() *Loop {
	l := &Loop{}
	l.Clean()
	return l
}

// Clean resets the slot to empty, as if newly created. It does not touch
// any player goroutine -- callers that need to stop a running player must
// force-exit it themselves before (or after) cleaning.
func (l *Loop) Clean() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isRecording = false
	l.isPlayback = false
	l.waitingForSync = false
	l.messages = nil
	l.startRecordingTime = nil
	l.duration = nil
	l.syncDelay = nil
}

// IsRecording reports whether this slot is currently recording.
func (l *Loop) IsRecording() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isRecording
}

// IsPlayback reports whether this slot is currently playing.
func (l *Loop) IsPlayback() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isPlayback
}

// IsClean reports whether the slot has never completed a recording.
func (l *Loop) IsClean() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.duration == nil
}

// IsPlayable reports whether the slot's body has enough messages to play.
func (l *Loop) IsPlayable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages) >= 2
}

// Duration returns the loop's recorded duration and whether it is set.
func (l *Loop) Duration() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.duration == nil {
		return 0, false
	}
	return *l.duration, true
}

// SetWaitingForSync marks whether the player is currently blocked on the
// sync barrier; readable through WaitingForSync (Status does not show it).
func (l *Loop) SetWaitingForSync(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waitingForSync = v
}

// WaitingForSync reports the value last set by SetWaitingForSync.
func (l *Loop) WaitingForSync() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waitingForSync
}

// StartRecording transitions the slot into recording. start_recording_time
// is left unset -- the first qualifying NoteOn anchors the loop start.
func (l *Loop) StartRecording() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isPlayback = false
	l.isRecording = true
	l.startRecordingTime = nil
	l.messages = nil
	l.duration = nil
	l.syncDelay = nil
}

// StopRecording ends recording and fixes the loop's duration to the wall
// time elapsed since the anchoring NoteOn. If the trigger never fired
// (start_recording_time is still unset), duration stays unset too.
func (l *Loop) StopRecording(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isRecording {
		return
	}
	l.isRecording = false
	l.duration = nil
	if l.startRecordingTime != nil {
		d := now.Sub(*l.startRecordingTime).Seconds()
		l.duration = &d
	}
}

// SetPlayback sets or clears the playback flag. Used by the controller to
// start/stop/mute a slot without touching its recorded body.
func (l *Loop) SetPlayback(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isPlayback = v
}

// Append appends a message to the loop's recorded body, and -- on the
// triggering NoteOn -- anchors start_recording_time and, when sync is
// active and this is a slave, records sync_delay.
func (l *Loop) Append(msg event.Message, now time.Time, isSyncActive bool, lastLoopSync time.Time, isMaster bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.startRecordingTime == nil {
		if msg.Type() != event.NoteOn {
			return // NoteOn is the trigger that anchors the loop start.
		}
		t := now
		l.startRecordingTime = &t
		if isSyncActive && !isMaster {
			d := now.Sub(lastLoopSync).Seconds()
			l.syncDelay = &d
		}
	}

	l.messages = append(l.messages, msg)
}

// Snapshot copies out the body, duration, and sync_delay so a Loop Player
// can run an in-flight pass without racing a concurrent re-record.
type Snapshot struct {
	Messages  []event.Message
	Duration  float64
	SyncDelay *float64
}

func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]event.Message, len(l.messages))
	copy(msgs, l.messages)

	var duration float64
	if l.duration != nil {
		duration = *l.duration
	}

	var syncDelay *float64
	if l.syncDelay != nil {
		d := *l.syncDelay
		syncDelay = &d
	}

	return Snapshot{Messages: msgs, Duration: duration, SyncDelay: syncDelay}
}

// Status renders a short human-readable state line: "recording",
// "play - N.Nsec", "stop - N.Nsec", or "" when clean.
func (l *Loop) Status() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.isRecording:
		return "recording"
	case l.isPlayback && l.duration != nil:
		return fmt.Sprintf("play - %.1fsec", *l.duration)
	case l.duration != nil:
		return fmt.Sprintf("stop - %.1fsec", *l.duration)
	default:
		return ""
	}
}
