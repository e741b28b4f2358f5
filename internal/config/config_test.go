package config

import "testing"

func TestEffectiveThreshold(t *testing.T) {
	tests := []struct {
		sensitivity float32
		want        float32
	}{
		{0.1, 5.0},
		{1.0, 0.5},
		{3.0, 0.5 / 3.0},
	}

	for _, tt := range tests {
		cfg := DefaultVoiceCoreConfig()
		cfg.Sensitivity = tt.sensitivity
		got := cfg.EffectiveThreshold()
		diff := got - tt.want
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-4 {
			t.Errorf("sensitivity=%v: EffectiveThreshold() = %v, want %v", tt.sensitivity, got, tt.want)
		}
	}
}

func TestEffectiveThresholdNotCached(t *testing.T) {
	cfg := DefaultVoiceCoreConfig()
	first := cfg.EffectiveThreshold()
	cfg.Sensitivity = 2.0
	second := cfg.EffectiveThreshold()
	if first == second {
		t.Fatal("EffectiveThreshold should reflect the current sensitivity, not a cached value")
	}
}

func TestClampSensitivity(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0.0, 0.1},
		{0.05, 0.1},
		{1.5, 1.5},
		{3.0, 3.0},
		{10.0, 3.0},
	}
	for _, tt := range tests {
		if got := ClampSensitivity(tt.in); got != tt.want {
			t.Errorf("ClampSensitivity(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseInterruptMode(t *testing.T) {
	if mode, err := ParseInterruptMode("always"); err != nil || mode != InterruptAlways {
		t.Errorf("ParseInterruptMode(\"always\") = %v, %v", mode, err)
	}
	if mode, err := ParseInterruptMode("wait"); err != nil || mode != InterruptWait {
		t.Errorf("ParseInterruptMode(\"wait\") = %v, %v", mode, err)
	}
	if _, err := ParseInterruptMode("bogus"); err == nil {
		t.Error("expected error for invalid interrupt mode")
	}
}

func TestDefaultConstants(t *testing.T) {
	cfg := DefaultVoiceCoreConfig()
	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.SampleRate)
	}
	if cfg.ChunkSize != 1280 {
		t.Errorf("ChunkSize = %d, want 1280", cfg.ChunkSize)
	}
	if cfg.MelFrameCount != 76 {
		t.Errorf("MelFrameCount = %d, want 76", cfg.MelFrameCount)
	}
	if cfg.MelBands != 32 {
		t.Errorf("MelBands = %d, want 32", cfg.MelBands)
	}
	if cfg.SilenceFramesThreshold != 16 {
		t.Errorf("SilenceFramesThreshold = %d, want 16", cfg.SilenceFramesThreshold)
	}
}
