package loop

import (
	"testing"
	"time"

	"github.com/barmassimo/midi-notebook/internal/event"
)

func TestCleanInvariants(t *testing.T) {
	l := New()
	if !l.IsClean() {
		t.Error("new loop should be clean")
	}
	if l.IsRecording() || l.IsPlayback() {
		t.Error("new loop should be neither recording nor playing")
	}
	if l.IsPlayable() {
		t.Error("new loop should not be playable")
	}
}

func TestStartStopRecordingSetsDuration(t *testing.T) {
	l := New()
	l.StartRecording()
	if !l.IsRecording() {
		t.Fatal("expected IsRecording after StartRecording")
	}

	start := time.Now()
	l.Append(event.Message{Status: 0x90, Data1: 60, Data2: 100}, start, false, time.Time{}, true)

	end := start.Add(2 * time.Second)
	l.StopRecording(end)

	if l.IsRecording() {
		t.Error("expected IsRecording false after StopRecording")
	}
	d, ok := l.Duration()
	if !ok {
		t.Fatal("expected duration to be set")
	}
	if d < 1.99 || d > 2.01 {
		t.Errorf("Duration() = %v, want ~2.0", d)
	}
}

func TestStopRecordingWithoutTriggerLeavesDurationUnset(t *testing.T) {
	l := New()
	l.StartRecording()
	l.StopRecording(time.Now())
	if _, ok := l.Duration(); ok {
		t.Error("expected duration unset when the anchoring NoteOn never arrived")
	}
}

func TestAppendIgnoresNonNoteOnBeforeTrigger(t *testing.T) {
	l := New()
	l.StartRecording()
	now := time.Now()
	l.Append(event.Message{Status: 0xB0, Data1: 64, Data2: 10}, now, false, time.Time{}, true)
	l.Append(event.Message{Status: 0x90, Data1: 60, Data2: 100}, now, false, time.Time{}, true)
	l.Append(event.Message{Status: 0x80, Data1: 60, Data2: 0}, now.Add(time.Second), false, time.Time{}, true)

	snap := l.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("expected 2 messages (CC before trigger dropped), got %d", len(snap.Messages))
	}
	if snap.Messages[0].Type() != event.NoteOn {
		t.Errorf("first retained message should be the triggering NoteOn, got %v", snap.Messages[0].Type())
	}
}

func TestAppendSetsSyncDelayOnlyForSlaveWhenSyncActive(t *testing.T) {
	master := New()
	master.StartRecording()
	now := time.Now()
	master.Append(event.Message{Status: 0x90, Data1: 60, Data2: 100}, now, true, now.Add(-500*time.Millisecond), true)
	if snap := master.Snapshot(); snap.SyncDelay != nil {
		t.Error("master loop should never set sync_delay")
	}

	slave := New()
	slave.StartRecording()
	lastSync := now.Add(-300 * time.Millisecond)
	slave.Append(event.Message{Status: 0x90, Data1: 62, Data2: 100}, now, true, lastSync, false)
	snap := slave.Snapshot()
	if snap.SyncDelay == nil {
		t.Fatal("expected slave sync_delay to be set when sync is active")
	}
	if *snap.SyncDelay < 0.29 || *snap.SyncDelay > 0.31 {
		t.Errorf("sync_delay = %v, want ~0.3", *snap.SyncDelay)
	}
}

func TestAppendNoSyncDelayWhenSyncInactive(t *testing.T) {
	slave := New()
	slave.StartRecording()
	slave.Append(event.Message{Status: 0x90, Data1: 62, Data2: 100}, time.Now(), false, time.Time{}, false)
	if snap := slave.Snapshot(); snap.SyncDelay != nil {
		t.Error("sync_delay should stay unset when sync is inactive")
	}
}

func TestIsPlayable(t *testing.T) {
	l := New()
	l.StartRecording()
	now := time.Now()
	l.Append(event.Message{Status: 0x90, Data1: 60, Data2: 100}, now, false, time.Time{}, true)
	if l.IsPlayable() {
		t.Error("one message should not be playable")
	}
	l.Append(event.Message{Status: 0x80, Data1: 60, Data2: 0}, now.Add(time.Second), false, time.Time{}, true)
	if !l.IsPlayable() {
		t.Error("two messages should be playable")
	}
}

func TestSnapshotIsolatesFromConcurrentRerecord(t *testing.T) {
	l := New()
	l.StartRecording()
	now := time.Now()
	l.Append(event.Message{Status: 0x90, Data1: 60, Data2: 100}, now, false, time.Time{}, true)
	l.Append(event.Message{Status: 0x80, Data1: 60, Data2: 0}, now.Add(time.Second), false, time.Time{}, true)
	l.StopRecording(now.Add(time.Second))

	snap := l.Snapshot()

	// A fresh record-over must not mutate the already-taken snapshot.
	l.StartRecording()
	l.Append(event.Message{Status: 0x90, Data1: 64, Data2: 100}, now, false, time.Time{}, true)

	if len(snap.Messages) != 2 {
		t.Fatalf("snapshot mutated by concurrent re-record: len = %d, want 2", len(snap.Messages))
	}
}

func TestStatusStrings(t *testing.T) {
	l := New()
	if got := l.Status(); got != "" {
		t.Errorf("clean loop Status() = %q, want empty", got)
	}

	l.StartRecording()
	if got := l.Status(); got != "recording" {
		t.Errorf("Status() = %q, want recording", got)
	}

	now := time.Now()
	l.Append(event.Message{Status: 0x90, Data1: 60, Data2: 100}, now, false, time.Time{}, true)
	l.StopRecording(now.Add(2 * time.Second))
	if got := l.Status(); got != "stop - 2.0sec" {
		t.Errorf("Status() = %q, want %q", got, "stop - 2.0sec")
	}

	l.SetPlayback(true)
	if got := l.Status(); got != "play - 2.0sec" {
		t.Errorf("Status() = %q, want %q", got, "play - 2.0sec")
	}
}
