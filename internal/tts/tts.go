// Package tts defines the text-to-speech boundary the voice controller
// speaks through. Speech synthesis itself is out of scope: the host
// hands finished response text to whatever Provider it wires in and
// plays back whatever audio comes out, the same way
// the original frontend synthesized speech outside the Rust core.
package tts

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by NullProvider, the default Provider
// until the host wires in a real one.
var ErrNotConfigured = errors.New("tts: no provider configured")

// AudioOutput is one synthesized chunk of speech audio.
type AudioOutput struct {
	Samples    []float32
	SampleRate int
}

// Provider synthesizes text into audio. Implementations may call out
// to a local model, a cloud API, or (as in NullProvider) nothing.
type Provider interface {
	Synthesize(ctx context.Context, text string, voice string, speakerID int, speed float32) (AudioOutput, error)
	SampleRate() int
	Name() string
}

// NullProvider rejects every synthesis request. It lets a voxctl
// deployment run the full control loop up to PlayTts without a
// configured TTS backend.
type NullProvider struct{}

func (NullProvider) Synthesize(ctx context.Context, text string, voice string, speakerID int, speed float32) (AudioOutput, error) {
	return AudioOutput{}, ErrNotConfigured
}

func (NullProvider) SampleRate() int { return 24000 }

func (NullProvider) Name() string { return "null" }

// SplitSentences splits text into sentences so each one can be
// synthesized and played in turn.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, c := range text {
		current.WriteRune(c)
		if c == '.' || c == '!' || c == '?' || c == '\n' {
			trimmed := strings.TrimSpace(current.String())
			if trimmed != "" {
				sentences = append(sentences, trimmed)
			}
			current.Reset()
		}
	}

	if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
		sentences = append(sentences, trimmed)
	}
	return sentences
}
