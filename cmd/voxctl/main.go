// voxctl runs the voice-interaction control plane standalone: wake-word
// detection, VAD, and the interaction FSM drive a command-line host that
// plugs in an LLM collaborator (Ollama) and pluggable STT/TTS providers
// the same way the original Tauri frontend drove the Rust core over IPC.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agalue/voxctl/internal/audio"
	"github.com/agalue/voxctl/internal/config"
	"github.com/agalue/voxctl/internal/controller"
	"github.com/agalue/voxctl/internal/llm"
	"github.com/agalue/voxctl/internal/stt"
	"github.com/agalue/voxctl/internal/tts"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	log.Println("🎤 voxctl starting...")
	log.Printf("🧩 models dir: %s", cfg.ModelsDir)
	if !config.VoiceExists(cfg.TTSVoice) {
		log.Printf("⚠️  unknown TTS voice %q; run with -list-voices to see valid names", cfg.TTSVoice)
	}
	log.Printf("🔊 TTS voice: %s (speaker %d)", cfg.TTSVoice, cfg.TTSSpeakerID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	llmClient, err := llm.NewClient(&llm.Config{
		Host:         cfg.OllamaURL,
		Model:        cfg.OllamaModel,
		SystemPrompt: cfg.SystemPrompt,
		Verbose:      cfg.Verbose,
		MaxHistory:   cfg.MaxHistory,
		Temperature:  cfg.Temperature,
	})
	if err != nil {
		log.Fatalf("failed to create LLM client: %v", err)
	}

	log.Printf("🔗 checking Ollama connection at %s...", cfg.OllamaURL)
	if err := llmClient.HealthCheck(ctx); err != nil {
		log.Printf("⚠️  Ollama connection failed: %v (responses will error until it's reachable)", err)
	} else {
		log.Printf("✅ Ollama connected (model: %s)", cfg.OllamaModel)
	}

	player, err := audio.NewPlayer(tts.NullProvider{}.SampleRate(), cfg.AudioBufferMs, nil)
	if err != nil {
		log.Fatalf("failed to create audio player: %v", err)
	}
	defer player.Close()

	app := &host{
		cfg:      cfg,
		llm:      llmClient,
		stt:      stt.NullProvider{},
		tts:      tts.NullProvider{},
		player:   player,
		ctx:      ctx,
	}

	ctrl := controller.New(*cfg, app)
	app.ctrl = ctrl

	if err := ctrl.Start(); err != nil {
		log.Fatalf("failed to start voice controller: %v", err)
	}

	if cfg.WakeWordEnabled {
		log.Println("🎙️  listening for the wake word (Ctrl+C to quit)")
	} else {
		log.Println("🎙️  wake word disabled; trigger manually via the command surface (Ctrl+C to quit)")
	}

	<-sigChan
	log.Println("🛑 shutting down...")

	ctrl.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("✅ shutdown complete")
	case <-time.After(5 * time.Second):
		log.Println("⚠️  shutdown timeout, forcing exit")
	}
}

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}
