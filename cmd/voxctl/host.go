package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/agalue/voxctl/internal/audio"
	"github.com/agalue/voxctl/internal/config"
	"github.com/agalue/voxctl/internal/controller"
	"github.com/agalue/voxctl/internal/events"
	"github.com/agalue/voxctl/internal/llm"
	"github.com/agalue/voxctl/internal/stt"
	"github.com/agalue/voxctl/internal/tts"
)

// host implements events.Sink: it is the external collaborator that the
// original Tauri frontend used to be, now driving STT/LLM/TTS off the
// controller's outbound events and feeding results back through its
// command surface (TranscriptionComplete/ResponseReady/SpeechComplete).
type host struct {
	cfg    *config.Config
	ctrl   *controller.Controller
	llm    *llm.Client
	stt    stt.Provider
	tts    tts.Provider
	player *audio.Player
	ctx    context.Context

	wg sync.WaitGroup
}

// Emit handles one outbound controller event. It must not block the
// processing goroutine, so anything beyond logging runs on its own
// tracked goroutine.
func (h *host) Emit(ev events.Event) {
	switch ev.Name {
	case events.DebugLog:
		if h.cfg.Verbose || ev.LogLevel == "error" {
			log.Printf("[%s][%s] %s", ev.SessionID, ev.LogLevel, ev.Message)
		}
	case events.VoiceError:
		log.Printf("❌ [%s] %s", ev.SessionID, ev.Message)
	case events.VoiceStateChanged:
		log.Printf("🔁 [%s] state -> %s", ev.SessionID, ev.State)
	case events.VoiceWakeWord:
		log.Printf("👂 [%s] wake word detected, score=%.3f", ev.SessionID, ev.Score)
	case events.VoiceAudioLevel:
		// High-frequency; left to a UI meter in a real host, not logged here.
	case events.VoiceAudioCaptured:
		h.wg.Add(1)
		go h.handleCapturedAudio(ev.SessionID, ev.Audio)
	}
}

// handleCapturedAudio drives the STT -> LLM -> TTS chain for one
// captured utterance and reports each stage back to the controller.
func (h *host) handleCapturedAudio(sessionID string, samples []float32) {
	defer h.wg.Done()

	text, err := h.stt.Transcribe(h.ctx, samples, h.cfg.VoiceCore.SampleRate, h.cfg.STTLanguage)
	if err != nil {
		log.Printf("⚠️  [%s] STT error: %v", sessionID, err)
		h.ctrl.ReportError(fmt.Sprintf("transcription failed: %v", err))
		return
	}
	if text == "" {
		h.ctrl.ReportError("empty transcription")
		return
	}

	log.Printf("🧠 [%s] transcribed: %q", sessionID, text)
	h.ctrl.TranscriptionComplete(text)

	response, err := h.llm.Chat(h.ctx, text)
	if err != nil {
		log.Printf("❌ [%s] LLM error: %v", sessionID, err)
		response = "I'm sorry, I encountered an error."
	}
	log.Printf("🤖 [%s] response: %s", sessionID, response)
	h.ctrl.ResponseReady(response)

	h.speak(sessionID, response)
	h.ctrl.SpeechComplete()
}

// speak synthesizes and plays each sentence of response in turn, pausing
// capture first in InterruptWait mode so the microphone can't hear its
// own playback.
func (h *host) speak(sessionID, response string) {
	if h.cfg.InterruptMode == config.InterruptWait {
		h.ctrl.PauseCapture()
		defer func() {
			time.Sleep(time.Duration(h.cfg.PostPlaybackDelayMs) * time.Millisecond)
			h.ctrl.ResumeCapture()
		}()
	}

	for _, sentence := range tts.SplitSentences(response) {
		if sentence == "" {
			continue
		}
		chunk, err := h.tts.Synthesize(h.ctx, sentence, h.cfg.TTSVoice, h.cfg.TTSSpeakerID, h.cfg.TTSSpeed)
		if err != nil {
			log.Printf("⚠️  [%s] TTS error for sentence %q: %v", sessionID, sentence, err)
			continue
		}
		if err := h.player.Play(audio.AudioBuffer{Samples: chunk.Samples, SampleRate: chunk.SampleRate}); err != nil {
			log.Printf("❌ [%s] playback error: %v", sessionID, err)
			return
		}
	}
}
