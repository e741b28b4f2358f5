// Package stt defines the speech-to-text boundary the voice controller
// speaks through. Transcription itself is out of scope: the controller
// emits a captured utterance as an event, and the host hands it to
// whatever Provider it wires in,
// the same way the original frontend transcribed audio outside the
// Rust core and reported back with voice_transcription_complete.
package stt

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by NullProvider, the default Provider
// until the host wires in a real one.
var ErrNotConfigured = errors.New("stt: no provider configured")

// Provider transcribes a captured utterance. Implementations may call
// out to a local model, a cloud API, or (as in NullProvider) nothing
// at all.
type Provider interface {
	Transcribe(ctx context.Context, audio []float32, sampleRate int, language string) (string, error)
	Name() string
}

// NullProvider rejects every transcription request. It lets a voxctl
// deployment run wake-word and VAD without a configured STT backend,
// mirroring the lokutor pattern of a no-op default collaborator.
type NullProvider struct{}

func (NullProvider) Transcribe(ctx context.Context, audio []float32, sampleRate int, language string) (string, error) {
	return "", ErrNotConfigured
}

func (NullProvider) Name() string { return "null" }
