// Package controller orchestrates wake-word detection, voice-activity
// detection, audio capture, and the interaction FSM behind the single
// command/event surface spec.md §6 specifies. Exactly three actors
// touch it: the host (calling the exported methods below), the audio
// capture callback (never blocks, never allocates unboundedly), and
// one processing goroutine that is the sole consumer of captured audio
// and the sole caller of fsm.Machine's Transition/AddAudio outside the
// host's own command path.
package controller

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/agalue/voxctl/internal/audio"
	"github.com/agalue/voxctl/internal/config"
	"github.com/agalue/voxctl/internal/events"
	"github.com/agalue/voxctl/internal/fsm"
	"github.com/agalue/voxctl/internal/ring"
	"github.com/agalue/voxctl/internal/vad"
	"github.com/agalue/voxctl/internal/wakeword"
)

// sharedState is everything the host thread and the processing
// goroutine both touch, guarded by Controller.mu. Critical sections
// stay short: inference (wake-word, VAD) always runs outside the lock.
type sharedState struct {
	fsm             *fsm.Machine
	voiceCore       config.VoiceCoreConfig
	isRunning       bool
	wakeWordEnabled bool
	inputDevice     string
	outputDevice    string
}

// Controller is the voice-interaction control plane's single entry
// point: one per process, constructed once and Start/Stop across its
// lifetime.
type Controller struct {
	mu    sync.RWMutex
	state sharedState

	modelsDir string
	sink      events.Sink

	audioQueue *audioQueue
	wg         sync.WaitGroup

	// capturer is set by Start and cleared by Stop; read by
	// PauseCapture/ResumeCapture from the host's own goroutine, so every
	// access goes through mu like the rest of sharedState.
	capturer *audio.Capturer

	// wakeEngine is the live cascade the processing goroutine built in
	// Start; set/cleared under mu so SetWakeWordSensitivity can push a
	// changed threshold into the running engine, not just the state
	// snapshot.
	wakeEngine *wakeword.Engine

	sessionMu sync.Mutex
	sessionID string
}

// New creates a Controller in the Idle state. cfg.ModelsDir may be empty,
// in which case Start discovers it via config.DiscoverModelsDir.
func New(cfg config.Config, sink events.Sink) *Controller {
	if sink == nil {
		sink = events.NoopSink{}
	}
	return &Controller{
		state: sharedState{
			fsm:             fsm.New(),
			voiceCore:       cfg.VoiceCore,
			wakeWordEnabled: cfg.WakeWordEnabled,
			inputDevice:     cfg.InputDevice,
			outputDevice:    cfg.OutputDevice,
		},
		modelsDir: cfg.ModelsDir,
		sink:      sink,
	}
}

// Start resolves the models directory, spawns the processing goroutine,
// and begins audio capture. Idempotent: calling Start while already
// running is a no-op.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state.isRunning {
		c.mu.Unlock()
		return nil
	}

	modelsDir := c.modelsDir
	if modelsDir == "" {
		modelsDir = config.DiscoverModelsDir()
	}
	voiceCore := c.state.voiceCore
	inputDevice := c.state.inputDevice
	c.mu.Unlock()

	c.emitDebugLog("info", "starting voice controller, models: "+modelsDir)

	// Advisory only: a missing model leaves wake-word detection disabled
	// in the processing goroutine but does not stop Start.
	for _, name := range config.ModelFileNames {
		path := filepath.Join(modelsDir, name)
		if _, err := os.Stat(path); err != nil {
			c.emitDebugLog("error", "model file not found: "+path)
		} else {
			c.emitDebugLog("info", "model file found: "+path)
		}
	}

	c.mu.Lock()
	c.state.isRunning = true
	c.mu.Unlock()

	c.audioQueue = newAudioQueue()

	c.wg.Add(1)
	go c.processingLoop(modelsDir, voiceCore)

	capturer, err := audio.NewCapturer(voiceCore.SampleRate, inputDevice, c.onCaptured)
	if err != nil {
		c.mu.Lock()
		c.state.isRunning = false
		c.mu.Unlock()
		c.audioQueue.Close()
		c.wg.Wait()
		return err
	}
	if err := capturer.Start(); err != nil {
		c.mu.Lock()
		c.state.isRunning = false
		c.mu.Unlock()
		c.audioQueue.Close()
		c.wg.Wait()
		return err
	}
	c.mu.Lock()
	c.capturer = capturer
	c.mu.Unlock()

	log.Println("🎙️  voice controller started")
	return nil
}

// onCaptured is the audio callback's sink. audioQueue is unbounded, so
// this never drops a chunk; it only ever waits briefly on the queue's
// mutex, never on a slow consumer (spec.md §2).
func (c *Controller) onCaptured(samples []float32) {
	c.audioQueue.Push(samples)
}

// Stop halts capture and winds down the processing goroutine; idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.state.isRunning {
		c.mu.Unlock()
		return
	}
	c.state.isRunning = false
	c.mu.Unlock()

	c.mu.Lock()
	capturer := c.capturer
	c.capturer = nil
	c.mu.Unlock()
	if capturer != nil {
		capturer.Close()
	}

	c.audioQueue.Close()
	c.wg.Wait()

	log.Println("🛑 voice controller stopped")
}

// processingLoop is the sole processing-thread actor: it owns the
// wake-word engine and VAD detector, consumes the audio queue, and is
// the only caller of fsm.Machine.AddAudio/Transition besides the host's
// own command methods below.
func (c *Controller) processingLoop(modelsDir string, voiceCore config.VoiceCoreConfig) {
	defer c.wg.Done()

	c.emitDebugLog("info", "audio processing thread started")

	wakeEngine, err := wakeword.New(modelsDir, voiceCore)
	if err != nil {
		c.emitDebugLog("error", "wake word init failed: "+err.Error())
		c.emit(events.Event{Name: events.VoiceError, Message: "wake word init failed: " + err.Error()})
		wakeEngine = nil
	}
	c.mu.Lock()
	c.wakeEngine = wakeEngine
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.wakeEngine = nil
		c.mu.Unlock()
		if wakeEngine != nil {
			wakeEngine.Close()
		}
	}()

	vadCfg := vad.DefaultConfig()
	vadCfg.SilenceThreshold = voiceCore.SilenceThreshold
	vadCfg.SilenceFramesThreshold = voiceCore.SilenceFramesThreshold
	vadDetector := vad.New(vadCfg)

	// Rolling window of recently captured raw samples, sized the way
	// original_source's processing loop sizes its own audio_buffer.
	recentSamples := ring.NewSampleBuffer(voiceCore.ChunkSize * 2)

	var chunkCount uint64
	for {
		samples, ok := c.audioQueue.Pop()
		if !ok {
			c.emitDebugLog("info", "audio processing thread exiting")
			return
		}
		chunkCount++
		if chunkCount == 1 {
			c.emitDebugLog("info", "first audio chunk received")
		}

		c.mu.RLock()
		currentState := c.state.fsm.State()
		wakeWordEnabled := c.state.wakeWordEnabled
		c.mu.RUnlock()

		recentSamples.PushSamples(samples)
		c.emit(events.Event{Name: events.VoiceAudioLevel, Level: rms(samples)})

		switch currentState {
		case fsm.Idle:
			c.processIdle(wakeWordEnabled, samples, wakeEngine, vadDetector)
		case fsm.Listening:
			c.processListening(samples, wakeEngine, vadDetector)
		}
	}
}

func (c *Controller) processIdle(wakeWordEnabled bool, samples []float32, wakeEngine *wakeword.Engine, vadDetector *vad.Detector) {
	if !wakeWordEnabled || wakeEngine == nil {
		return
	}

	score, ready, err := wakeEngine.Process(samples)
	if err != nil {
		c.emitDebugLog("error", "wake word error: "+err.Error())
		return
	}
	if !ready || !wakeEngine.IsDetected(score) {
		return
	}

	c.newSession()
	c.emitDebugLog("info", "wake word detected")
	action, newState := c.transition(fsm.Event{Kind: fsm.WakeWordDetected})
	_ = action // StartCapture: audio capture is already running continuously

	c.emit(events.Event{Name: events.VoiceWakeWord, Score: score})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})

	vadDetector.Reset()
	wakeEngine.Reset()
}

func (c *Controller) processListening(samples []float32, wakeEngine *wakeword.Engine, vadDetector *vad.Detector) {
	c.mu.Lock()
	c.state.fsm.AddAudio(samples)
	c.mu.Unlock()

	result := vadDetector.Process(samples)
	if result != vad.SpeechEnd {
		return
	}

	c.emitDebugLog("info", "speech end detected")
	action, newState := c.transition(fsm.Event{Kind: fsm.VadSpeechEnd})

	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
	if action.Kind == fsm.SendToStt {
		c.emit(events.Event{Name: events.VoiceAudioCaptured, Audio: action.Audio})
	}

	vadDetector.Reset()
	if wakeEngine != nil {
		wakeEngine.Reset()
	}
}

// transition applies event under the shared-state lock and returns the
// resulting action alongside the new state, for the caller to emit
// outside the critical section.
func (c *Controller) transition(event fsm.Event) (fsm.Action, fsm.State) {
	c.mu.Lock()
	action := c.state.fsm.Transition(event)
	newState := c.state.fsm.State()
	c.mu.Unlock()
	return action, newState
}

// ManualTrigger starts listening without a wake word (push-to-talk).
func (c *Controller) ManualTrigger() {
	c.newSession()
	_, newState := c.transition(fsm.Event{Kind: fsm.ManualTrigger})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// Cancel aborts the current operation and returns to Idle.
func (c *Controller) Cancel() {
	_, newState := c.transition(fsm.Event{Kind: fsm.Cancel})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// TranscriptionComplete reports STT output for the current utterance.
func (c *Controller) TranscriptionComplete(text string) {
	_, newState := c.transition(fsm.Event{Kind: fsm.TranscriptionComplete, Text: text})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// ResponseReady reports the LLM's finished response text.
func (c *Controller) ResponseReady(text string) {
	_, newState := c.transition(fsm.Event{Kind: fsm.ResponseReady, Text: text})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// SpeechComplete reports that TTS playback has finished.
func (c *Controller) SpeechComplete() {
	_, newState := c.transition(fsm.Event{Kind: fsm.SpeechComplete})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// BargeIn reports that the user started speaking during playback.
func (c *Controller) BargeIn() {
	c.newSession()
	_, newState := c.transition(fsm.Event{Kind: fsm.BargeIn})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// ReportError forces a reset to Idle, overriding the no-op rule for the
// state the FSM happened to be in (spec.md §4.1).
func (c *Controller) ReportError(message string) {
	_, newState := c.transition(fsm.Event{Kind: fsm.Error, Text: message})
	c.emit(events.Event{Name: events.VoiceError, Message: message})
	c.emit(events.Event{Name: events.VoiceStateChanged, State: newState.String()})
}

// SetWakeWordSensitivity clamps and applies a new sensitivity. It
// updates both the controller's own snapshot and, if the processing
// goroutine has a live wake-word engine running, that engine's
// threshold directly — spec.md §3 requires the change to take effect at
// the next read, and the engine's own cfg copy is what IsDetected
// actually reads.
func (c *Controller) SetWakeWordSensitivity(sensitivity float32) {
	clamped := config.ClampSensitivity(sensitivity)

	c.mu.Lock()
	c.state.voiceCore.Sensitivity = clamped
	engine := c.wakeEngine
	c.mu.Unlock()

	if engine != nil {
		engine.SetSensitivity(clamped)
	}
}

// SetWakeWordEnabled toggles wake-word dispatch in Idle.
func (c *Controller) SetWakeWordEnabled(enabled bool) {
	c.mu.Lock()
	c.state.wakeWordEnabled = enabled
	c.mu.Unlock()
}

// CheckWakeWordAvailable always reports true (spec.md §6): wake-word
// support is compiled in, independent of whether model files are
// present at a given moment.
func (c *Controller) CheckWakeWordAvailable() bool { return true }

// State returns the current FSM state.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.fsm.State()
}

// IsRunning reports whether the controller is currently capturing audio.
func (c *Controller) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.isRunning
}

// SetInputDevice selects an input device by name for the next Start;
// empty selects the system default.
func (c *Controller) SetInputDevice(name string) {
	c.mu.Lock()
	c.state.inputDevice = name
	c.mu.Unlock()
}

// SetOutputDevice selects an output device by name; empty selects the
// system default.
func (c *Controller) SetOutputDevice(name string) {
	c.mu.Lock()
	c.state.outputDevice = name
	c.mu.Unlock()
}

// GetInputDevice returns the currently configured input device name.
func (c *Controller) GetInputDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.inputDevice
}

// GetOutputDevice returns the currently configured output device name.
func (c *Controller) GetOutputDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.outputDevice
}

// GetInputDevices enumerates every capture device the host exposes.
func (c *Controller) GetInputDevices() ([]events.DeviceInfo, error) {
	return audio.EnumerateInputDevices()
}

// GetOutputDevices enumerates every playback device the host exposes.
func (c *Controller) GetOutputDevices() ([]events.DeviceInfo, error) {
	return audio.EnumerateOutputDevices()
}

// PauseCapture mutes the microphone without stopping the capture
// device, used by InterruptWait mode while the host plays back TTS
// audio. A no-op if capture isn't running.
func (c *Controller) PauseCapture() {
	c.mu.RLock()
	capturer := c.capturer
	c.mu.RUnlock()
	if capturer != nil {
		capturer.Pause()
	}
}

// ResumeCapture undoes PauseCapture.
func (c *Controller) ResumeCapture() {
	c.mu.RLock()
	capturer := c.capturer
	c.mu.RUnlock()
	if capturer != nil {
		capturer.Resume()
	}
}

// newSession mints a fresh correlation ID for the next wake->speak cycle.
func (c *Controller) newSession() {
	c.sessionMu.Lock()
	c.sessionID = uuid.NewString()
	c.sessionMu.Unlock()
}

func (c *Controller) currentSession() string {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.sessionID
}

func (c *Controller) emit(ev events.Event) {
	ev.SessionID = c.currentSession()
	c.sink.Emit(ev)
}

func (c *Controller) emitDebugLog(level, message string) {
	log.Printf("[%s] %s", level, message)
	c.emit(events.Event{Name: events.DebugLog, LogLevel: level, Message: message})
}

// rms computes sqrt(mean(chunk^2)) for the voice-audio-level event.
func rms(chunk []float32) float32 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		sum += float64(s) * float64(s)
	}
	mean := sum / float64(len(chunk))
	return float32(math.Sqrt(mean))
}
