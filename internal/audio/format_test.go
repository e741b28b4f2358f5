package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func f32Bytes(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func s16Bytes(v int16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func u16Bytes(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func TestCanonicalFloatPassesThroughUnchanged(t *testing.T) {
	var data []byte
	want := []float32{0.5, -0.25, 1.0, -1.0}
	for _, v := range want {
		data = append(data, f32Bytes(v)...)
	}

	got := framesToMono(data, FormatF32, 1)
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStereoToMonoDownmix(t *testing.T) {
	// Frames are [L, R, L, R, ...]; output is [(L+R)/2, ...] of half length.
	pairs := [][2]float32{{1.0, -1.0}, {0.5, 0.5}, {0.2, 0.8}}
	var data []byte
	for _, p := range pairs {
		data = append(data, f32Bytes(p[0])...)
		data = append(data, f32Bytes(p[1])...)
	}

	got := framesToMono(data, FormatF32, 2)
	if len(got) != len(pairs) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(pairs))
	}
	for i, p := range pairs {
		want := (p[0] + p[1]) / 2
		if diff := got[i] - want; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestS16Conversion(t *testing.T) {
	data := append(s16Bytes(32767), s16Bytes(-32768)...)
	got := framesToMono(data, FormatS16, 1)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if diff := got[0] - 0.99997; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("got[0] = %v, want ~1.0", got[0])
	}
	if got[1] != -1.0 {
		t.Fatalf("got[1] = %v, want -1.0", got[1])
	}
}

func TestU16Conversion(t *testing.T) {
	data := append(u16Bytes(65535), u16Bytes(0)...)
	got := framesToMono(data, FormatU16, 1)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if diff := got[0] - 0.99997; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("got[0] = %v, want ~1.0", got[0])
	}
	if got[1] != -1.0 {
		t.Fatalf("got[1] = %v, want -1.0", got[1])
	}
}

func TestFramesToMonoEmpty(t *testing.T) {
	if got := framesToMono(nil, FormatF32, 1); len(got) != 0 {
		t.Fatalf("framesToMono(nil) = %v, want empty", got)
	}
}
