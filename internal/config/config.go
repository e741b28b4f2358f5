// Package config provides configuration and CLI argument parsing for the
// voice control plane.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// InterruptMode defines how playback interruption is handled.
type InterruptMode int

const (
	// InterruptAlways allows barge-in during playback (best for headsets).
	InterruptAlways InterruptMode = iota
	// InterruptWait pauses the microphone during playback (best for open speakers).
	InterruptWait
)

// String returns the string representation of the interrupt mode.
func (m InterruptMode) String() string {
	switch m {
	case InterruptAlways:
		return "always"
	case InterruptWait:
		return "wait"
	default:
		return "unknown"
	}
}

// ParseInterruptMode converts a string to InterruptMode.
func ParseInterruptMode(s string) (InterruptMode, error) {
	switch s {
	case "always":
		return InterruptAlways, nil
	case "wait":
		return InterruptWait, nil
	default:
		return InterruptWait, fmt.Errorf("invalid interrupt mode: %s (must be 'always' or 'wait')", s)
	}
}

// VoiceCoreConfig holds the immutable tunables of the voice-interaction
// core (spec.md §3, C2). Every field has a fixed default baked into the
// external contract; EffectiveThreshold is a pure function, never cached.
type VoiceCoreConfig struct {
	SampleRate            int     // canonical sample rate, Hz
	ChunkSize             int     // canonical chunk size, samples (80ms at 16kHz)
	MelFrameCount         int     // sliding mel-window capacity
	MelBands              int     // mel frame width
	WakeWordThreshold     float32 // base detection threshold
	Sensitivity           float32 // clamped to [0.1, 3.0]
	SilenceThreshold      float32 // RMS below which a frame is silent
	SilenceFramesThreshold int    // consecutive silent frames to end an utterance
}

// DefaultVoiceCoreConfig returns the constants from spec.md §6.
func DefaultVoiceCoreConfig() VoiceCoreConfig {
	return VoiceCoreConfig{
		SampleRate:             16000,
		ChunkSize:              1280,
		MelFrameCount:          76,
		MelBands:               32,
		WakeWordThreshold:      0.5,
		Sensitivity:            1.0,
		SilenceThreshold:       0.01,
		SilenceFramesThreshold: 16,
	}
}

// EffectiveThreshold computes wake_word_threshold / sensitivity. It is
// never cached: callers must call it fresh whenever sensitivity may have
// changed.
func (c VoiceCoreConfig) EffectiveThreshold() float32 {
	return c.WakeWordThreshold / c.Sensitivity
}

// ClampSensitivity clamps s to the legal [0.1, 3.0] domain.
func ClampSensitivity(s float32) float32 {
	if s < 0.1 {
		return 0.1
	}
	if s > 3.0 {
		return 3.0
	}
	return s
}

// Config holds all configuration for the voice control plane process:
// the voice-core tunables plus settings for the external collaborators
// (LLM, STT, TTS) driven by the controller's outbound events.
type Config struct {
	VoiceCore VoiceCoreConfig

	// ModelsDir is the base directory expected to contain melspectrogram.onnx,
	// embedding_model.onnx, and hey_jarvis.onnx (spec.md §6).
	ModelsDir string

	// WakeWordEnabled controls whether the processing thread attempts wake
	// detection on Idle chunks.
	WakeWordEnabled bool

	// InputDevice/OutputDevice select a specific audio device by name; empty
	// selects the system default. Input device changes apply at next start.
	InputDevice  string
	OutputDevice string

	// AudioBufferMs is the playback buffer size in milliseconds
	// (0 = default 100ms, Bluetooth-friendly). Capture uses its own fixed
	// period and does not read it.
	AudioBufferMs uint32

	// LLM collaborator settings (Ollama).
	OllamaURL    string
	OllamaModel  string
	SystemPrompt string
	MaxHistory   int
	Temperature  float32

	// TTS collaborator settings.
	TTSVoice     string
	TTSSpeakerID int
	TTSSpeed     float32

	// STT collaborator settings.
	STTLanguage string

	// InterruptMode: InterruptAlways (headsets) or InterruptWait (open speakers).
	InterruptMode       InterruptMode
	PostPlaybackDelayMs int

	Verbose bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		VoiceCore:       DefaultVoiceCoreConfig(),
		ModelsDir:       defaultModelsDir(),
		WakeWordEnabled: true,

		OllamaURL:    "http://localhost:11434",
		OllamaModel:  "gemma3:1b",
		SystemPrompt: "You are a helpful voice assistant. Keep responses brief and concise, maximum 2-3 short sentences. Be conversational and natural for speech output.",
		MaxHistory:   10,
		Temperature:  0.7,

		TTSVoice:     "af_bella",
		TTSSpeakerID: 2,
		TTSSpeed:     0.93,

		STTLanguage: "en",

		InterruptMode:       InterruptWait,
		PostPlaybackDelayMs: 300,
	}
}

// defaultModelsDir returns the first candidate from DiscoverModelsDir's
// order, without requiring the directory to exist yet (used only to seed
// the --models-dir flag's displayed default).
func defaultModelsDir() string {
	if dirs := candidateModelsDirs(); len(dirs) > 0 {
		return dirs[0]
	}
	return "resources/models"
}

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	listVoices := flag.Bool("list-voices", false, "List all available TTS voices and exit")
	voiceInfo := flag.String("voice-info", "", "Show detailed information about a specific voice and exit")

	flag.StringVar(&cfg.ModelsDir, "models-dir", cfg.ModelsDir, "Directory containing melspectrogram.onnx, embedding_model.onnx, hey_jarvis.onnx")
	flag.BoolVar(&cfg.WakeWordEnabled, "wake-word-enabled", cfg.WakeWordEnabled, "Enable wake-word detection on start")

	flag.IntVar(&cfg.VoiceCore.SampleRate, "sample-rate", cfg.VoiceCore.SampleRate, "Canonical sample rate in Hz")
	threshold := float64(cfg.VoiceCore.WakeWordThreshold)
	flag.Float64Var(&threshold, "wake-word-threshold", threshold, "Base wake-word detection threshold")
	sensitivity := float64(cfg.VoiceCore.Sensitivity)
	flag.Float64Var(&sensitivity, "sensitivity", sensitivity, "Wake-word sensitivity (0.1-3.0)")
	silenceThreshold := float64(cfg.VoiceCore.SilenceThreshold)
	flag.Float64Var(&silenceThreshold, "silence-threshold", silenceThreshold, "VAD silence RMS threshold")
	flag.IntVar(&cfg.VoiceCore.SilenceFramesThreshold, "silence-frames-threshold", cfg.VoiceCore.SilenceFramesThreshold, "Consecutive silent frames before SpeechEnd")

	flag.StringVar(&cfg.InputDevice, "input-device", cfg.InputDevice, "Input device name (empty = system default)")
	flag.StringVar(&cfg.OutputDevice, "output-device", cfg.OutputDevice, "Output device name (empty = system default)")
	audioBufferMs := flag.Uint("audio-buffer-ms", uint(cfg.AudioBufferMs), "Audio buffer size in ms (0=auto)")

	flag.StringVar(&cfg.OllamaURL, "ollama-url", cfg.OllamaURL, "Ollama API URL")
	flag.StringVar(&cfg.OllamaModel, "ollama-model", cfg.OllamaModel, "Ollama model name")
	flag.StringVar(&cfg.SystemPrompt, "system-prompt", cfg.SystemPrompt, "System prompt for the LLM collaborator")
	flag.IntVar(&cfg.MaxHistory, "max-history", cfg.MaxHistory, "Maximum conversation history length")
	temperature := float64(cfg.Temperature)
	flag.Float64Var(&temperature, "temperature", temperature, "LLM temperature (0.0-2.0)")

	ttsSpeed := float64(cfg.TTSSpeed)
	flag.Float64Var(&ttsSpeed, "tts-speed", ttsSpeed, "TTS speed multiplier")
	flag.StringVar(&cfg.TTSVoice, "tts-voice", cfg.TTSVoice, "TTS voice name")
	flag.IntVar(&cfg.TTSSpeakerID, "tts-speaker-id", cfg.TTSSpeakerID, "TTS speaker ID")

	flag.StringVar(&cfg.STTLanguage, "stt-language", cfg.STTLanguage, "STT language code (e.g. 'en', 'auto')")

	var interruptModeStr string
	flag.StringVar(&interruptModeStr, "interrupt-mode", cfg.InterruptMode.String(), "Interrupt mode: 'always' or 'wait'")
	flag.IntVar(&cfg.PostPlaybackDelayMs, "post-playback-delay-ms", cfg.PostPlaybackDelayMs, "Delay in ms before resuming mic after playback ('wait' mode only)")

	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")

	flag.Parse()

	if *listVoices {
		PrintVoices()
		os.Exit(0)
	}
	if *voiceInfo != "" {
		if err := PrintVoiceInfo(*voiceInfo); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg.TTSSpeed = float32(ttsSpeed)
	cfg.VoiceCore.WakeWordThreshold = float32(threshold)
	cfg.VoiceCore.Sensitivity = ClampSensitivity(float32(sensitivity))
	cfg.VoiceCore.SilenceThreshold = float32(silenceThreshold)
	cfg.AudioBufferMs = uint32(*audioBufferMs)
	cfg.Temperature = float32(temperature)

	mode, err := ParseInterruptMode(interruptModeStr)
	if err != nil {
		return nil, err
	}
	cfg.InterruptMode = mode

	return cfg, nil
}

// ModelFileNames are the three files the models directory must contain
// (spec.md §6, names are part of the external contract).
var ModelFileNames = [3]string{"melspectrogram.onnx", "embedding_model.onnx", "hey_jarvis.onnx"}

// candidateModelsDirs returns the four-tier discovery order from spec.md
// §6: (a) resource dir + /models, (b) executable great-grandparent +
// /resources/models, (c) cwd + /src-tauri/resources/models, (d) fallback
// /resources/models. Mirrors original_source's mod.rs discovery chain.
func candidateModelsDirs() []string {
	var dirs []string

	if resourceDir := os.Getenv("VOXCTL_RESOURCE_DIR"); resourceDir != "" {
		dirs = append(dirs, filepath.Join(resourceDir, "models"))
	}

	if exe, err := os.Executable(); err == nil {
		// Go up three levels from the executable, mirroring the original's
		// "target/debug -> src-tauri/resources/models" layout.
		ggp := filepath.Dir(filepath.Dir(filepath.Dir(exe)))
		dirs = append(dirs, filepath.Join(ggp, "resources", "models"))
	}

	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(cwd, "src-tauri", "resources", "models"))
	}

	dirs = append(dirs, filepath.Join("resources", "models"))
	return dirs
}

// DiscoverModelsDir returns the first directory in the discovery order
// whose melspectrogram model is readable. Returns an empty string if none
// qualify.
func DiscoverModelsDir() string {
	for _, dir := range candidateModelsDirs() {
		if _, err := os.Stat(filepath.Join(dir, ModelFileNames[0])); err == nil {
			return dir
		}
	}
	return ""
}
