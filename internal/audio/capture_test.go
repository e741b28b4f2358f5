package audio

import "testing"

// TestEnumerateInputDevices is a construction-only smoke test: CI and
// sandboxed environments often have no audio backend at all, in which
// case enumeration legitimately errors and the test is skipped rather
// than failed, matching the teacher's own pattern of skipping
// hardware-dependent paths.
func TestEnumerateInputDevices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping audio device enumeration in short mode")
	}

	devices, err := EnumerateInputDevices()
	if err != nil {
		t.Skipf("no audio backend available: %v", err)
	}
	for _, d := range devices {
		if d.Name == "" {
			t.Error("device returned with empty name")
		}
	}
}

func TestNewCapturerRequiresAudioBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping audio backend check in short mode")
	}

	c, err := NewCapturer(16000, "", func([]float32) {})
	if err != nil {
		t.Skipf("no audio backend available: %v", err)
	}
	c.Close()
}
