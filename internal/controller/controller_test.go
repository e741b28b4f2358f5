package controller

import (
	"sync"
	"testing"

	"github.com/agalue/voxctl/internal/config"
	"github.com/agalue/voxctl/internal/events"
	"github.com/agalue/voxctl/internal/fsm"
)

// recordingSink collects every emitted event for assertions; safe for
// concurrent use since the processing goroutine may emit alongside the
// host thread in a running controller.
type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Emit(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) last() events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return events.Event{}
	}
	return s.events[len(s.events)-1]
}

func newTestController() (*Controller, *recordingSink) {
	sink := &recordingSink{}
	cfg := config.DefaultConfig()
	return New(*cfg, sink), sink
}

func TestManualTriggerMovesToListening(t *testing.T) {
	c, sink := newTestController()

	c.ManualTrigger()

	if got := c.State(); got != fsm.Listening {
		t.Fatalf("State() = %v, want Listening", got)
	}
	if last := sink.last(); last.Name != events.VoiceStateChanged || last.State != "listening" {
		t.Fatalf("last event = %+v, want voice-state-changed/listening", last)
	}
}

func TestCancelReturnsToIdle(t *testing.T) {
	c, _ := newTestController()

	c.ManualTrigger()
	c.Cancel()

	if got := c.State(); got != fsm.Idle {
		t.Fatalf("State() = %v, want Idle", got)
	}
}

func TestFullCommandFlow(t *testing.T) {
	c, sink := newTestController()

	c.ManualTrigger()
	if c.State() != fsm.Listening {
		t.Fatalf("expected Listening after ManualTrigger")
	}

	// Simulate VadSpeechEnd via the internal transition helper, since
	// TestFullCommandFlow exercises the host command surface only.
	c.transition(fsm.Event{Kind: fsm.VadSpeechEnd})
	if c.State() != fsm.Transcribing {
		t.Fatalf("expected Transcribing after VadSpeechEnd")
	}

	c.TranscriptionComplete("turn on the lights")
	if c.State() != fsm.Processing {
		t.Fatalf("expected Processing after TranscriptionComplete")
	}

	c.ResponseReady("turning on the lights")
	if c.State() != fsm.Speaking {
		t.Fatalf("expected Speaking after ResponseReady")
	}

	c.SpeechComplete()
	if c.State() != fsm.Idle {
		t.Fatalf("expected Idle after SpeechComplete")
	}

	if last := sink.last(); last.Name != events.VoiceStateChanged || last.State != "idle" {
		t.Fatalf("last event = %+v, want voice-state-changed/idle", last)
	}
}

func TestReportErrorResetsFromAnyState(t *testing.T) {
	c, sink := newTestController()

	c.ManualTrigger()
	c.ReportError("device disconnected")

	if got := c.State(); got != fsm.Idle {
		t.Fatalf("State() = %v, want Idle", got)
	}

	found := false
	sink.mu.Lock()
	for _, ev := range sink.events {
		if ev.Name == events.VoiceError && ev.Message == "device disconnected" {
			found = true
		}
	}
	sink.mu.Unlock()
	if !found {
		t.Fatal("expected a voice-error event carrying the message")
	}
}

func TestSetWakeWordSensitivityClamps(t *testing.T) {
	c, _ := newTestController()

	c.SetWakeWordSensitivity(10.0)
	c.mu.RLock()
	got := c.state.voiceCore.Sensitivity
	c.mu.RUnlock()

	if got != 3.0 {
		t.Fatalf("Sensitivity = %v, want clamped to 3.0", got)
	}
}

func TestDeviceSelection(t *testing.T) {
	c, _ := newTestController()

	c.SetInputDevice("USB Mic")
	c.SetOutputDevice("Speakers")

	if got := c.GetInputDevice(); got != "USB Mic" {
		t.Fatalf("GetInputDevice() = %q", got)
	}
	if got := c.GetOutputDevice(); got != "Speakers" {
		t.Fatalf("GetOutputDevice() = %q", got)
	}
}

func TestCheckWakeWordAvailableAlwaysTrue(t *testing.T) {
	c, _ := newTestController()
	if !c.CheckWakeWordAvailable() {
		t.Fatal("CheckWakeWordAvailable() = false, want true")
	}
}

func TestNotRunningInitially(t *testing.T) {
	c, _ := newTestController()
	if c.IsRunning() {
		t.Fatal("IsRunning() = true before Start")
	}
}
