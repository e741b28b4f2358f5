package audio

import (
	"encoding/binary"
	"math"
)

// SampleFormat enumerates the device-native sample formats spec.md §4.5
// requires support for: unsigned 16-bit, signed 16-bit, and 32-bit float.
// Kept distinct from malgo.FormatType since miniaudio (malgo's backend)
// has no native unsigned-16-bit format — U16 exists here purely as part
// of the abstract capture contract, exercised directly by tests, while
// the live malgo device path only ever requests F32.
type SampleFormat int

const (
	FormatU16 SampleFormat = iota
	FormatS16
	FormatF32
)

// BytesPerSample returns the native width of one channel sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU16, FormatS16:
		return 2
	default:
		return 4
	}
}

// sampleToFloat32 converts one native-format sample to float32 in
// [-1, 1] using the sample-format-appropriate linear mapping.
func sampleToFloat32(b []byte, format SampleFormat) float32 {
	switch format {
	case FormatU16:
		v := binary.LittleEndian.Uint16(b)
		return (float32(v) - 32768) / 32768
	case FormatS16:
		v := int16(binary.LittleEndian.Uint16(b))
		return float32(v) / 32768
	default: // FormatF32
		bits := binary.LittleEndian.Uint32(b)
		return math.Float32frombits(bits)
	}
}

// framesToMono converts a raw device-native byte buffer to float32 mono
// samples in [-1, 1], downmixing by arithmetic mean across channels when
// channels > 1 (spec.md §4.5).
func framesToMono(data []byte, format SampleFormat, channels uint32) []float32 {
	if channels == 0 {
		channels = 1
	}

	bytesPerSample := format.BytesPerSample()
	frameSize := bytesPerSample * int(channels)
	if frameSize == 0 {
		return nil
	}
	numFrames := len(data) / frameSize
	out := make([]float32, numFrames)

	for i := 0; i < numFrames; i++ {
		var sum float32
		base := i * frameSize
		for ch := 0; ch < int(channels); ch++ {
			off := base + ch*bytesPerSample
			sum += sampleToFloat32(data[off:off+bytesPerSample], format)
		}
		out[i] = sum / float32(channels)
	}
	return out
}
