// Package events defines the external command and outbound-event
// contract a host binds against (spec.md §6). It has no dependency on
// the controller so a UI-host binding can import it without pulling in
// the audio/inference stack.
package events

// EventName identifies an outbound event. These names are normative for
// event-bus consumers — do not rename.
type EventName string

const (
	VoiceStateChanged  EventName = "voice-state-changed"
	VoiceWakeWord      EventName = "voice-wake-word"
	VoiceAudioCaptured EventName = "voice-audio-captured"
	VoiceAudioLevel    EventName = "voice-audio-level"
	VoiceError         EventName = "voice-error"
	DebugLog           EventName = "debug-log"
)

// Event is a typed outbound envelope. Which payload fields are populated
// for each Name is noted beside each field below: DebugLog carries
// LogLevel and Message, every other event carries a single field.
type Event struct {
	Name EventName

	State   string    // VoiceStateChanged: "idle"|"listening"|"transcribing"|"processing"|"speaking"
	Score   float32   // VoiceWakeWord
	Audio   []float32 // VoiceAudioCaptured: flat 16kHz mono samples
	Level   float32   // VoiceAudioLevel: RMS of the most recent chunk
	Message string    // VoiceError, DebugLog
	LogLevel string   // DebugLog: "info"|"debug"|"error"

	// SessionID correlates every event emitted during one wake->speak
	// cycle, useful for host-side log correlation. Not part of the
	// spec's normative payload; a Go-native addition layered on top.
	SessionID string
}

// Sink receives outbound events. A host binding implements this to
// forward events to its own IPC/event-bus mechanism (e.g. Tauri's
// AppHandle.Emit in the original frontend); NoopSink is a safe zero
// value for headless use.
type Sink interface {
	Emit(Event)
}

// NoopSink discards every event. Useful as a Controller's default sink
// before a host attaches a real one.
type NoopSink struct{}

func (NoopSink) Emit(Event) {}

// DeviceInfo describes one enumerated audio device (spec.md §6's
// get_input_devices/get_output_devices; the {name, is_default} element
// shape follows original_source's AudioDeviceInfo).
type DeviceInfo struct {
	Name      string
	IsDefault bool
}
