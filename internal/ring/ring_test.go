package ring

import "testing"

func TestSampleBufferDropOldest(t *testing.T) {
	b := NewSampleBuffer(4)
	b.PushSamples([]float32{1, 2, 3})
	b.PushSamples([]float32{4, 5})

	if got := b.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
	if !b.IsFull() {
		t.Fatal("expected buffer to be full")
	}

	want := []float32{2, 3, 4, 5}
	got := b.GetAll()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetAll() = %v, want %v", got, want)
		}
	}
}

func TestSampleBufferGetLastN(t *testing.T) {
	b := NewSampleBuffer(10)
	b.PushSamples([]float32{1, 2, 3, 4, 5})

	got := b.GetLastN(2)
	want := []float32{4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetLastN(2) = %v, want %v", got, want)
		}
	}

	if got := b.GetLastN(100); len(got) != 5 {
		t.Fatalf("GetLastN(100) returned %d samples, want 5", len(got))
	}
}

func TestSampleBufferClear(t *testing.T) {
	b := NewSampleBuffer(4)
	b.PushSamples([]float32{1, 2, 3})
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", b.Len())
	}
	if b.IsFull() {
		t.Fatal("buffer should not be full after Clear()")
	}
}

func TestMelBufferReadiness(t *testing.T) {
	b := NewMelBuffer(3, 32)
	if b.IsReady() {
		t.Fatal("empty buffer should not be ready")
	}

	for i := 0; i < 3; i++ {
		frame := make([]float32, 32)
		for j := range frame {
			frame[j] = float32(i)
		}
		b.PushFrame(frame)
	}

	if !b.IsReady() {
		t.Fatal("expected buffer to be ready after capacity pushes")
	}

	flat := b.GetFlattened()
	if len(flat) != 96 {
		t.Fatalf("GetFlattened() length = %d, want 96", len(flat))
	}
	// Oldest-first: first 32 elements should be frame 0 (all zeros).
	for i := 0; i < 32; i++ {
		if flat[i] != 0 {
			t.Fatalf("flat[%d] = %v, want 0 (oldest frame first)", i, flat[i])
		}
	}
}

func TestMelBufferDropOldest(t *testing.T) {
	b := NewMelBuffer(2, 4)
	b.PushFrame([]float32{1, 1, 1, 1})
	b.PushFrame([]float32{2, 2, 2, 2})
	b.PushFrame([]float32{3, 3, 3, 3})

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}

	flat := b.GetFlattened()
	want := []float32{2, 2, 2, 2, 3, 3, 3, 3}
	for i := range want {
		if flat[i] != want[i] {
			t.Fatalf("GetFlattened() = %v, want %v", flat, want)
		}
	}
}

func TestMelBufferClear(t *testing.T) {
	b := NewMelBuffer(2, 4)
	b.PushFrame([]float32{1, 1, 1, 1})
	b.Clear()
	if b.Len() != 0 || b.IsReady() {
		t.Fatal("expected empty, not-ready buffer after Clear()")
	}
}
