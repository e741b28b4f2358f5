package audio

import (
	resampler "github.com/tphakala/go-audio-resampler"
)

// fftChunkSize and fftSubChunks are the fixed-input parameters spec.md
// §4.5 mandates for the capture-path resampler: internal chunk 1024,
// sub-chunks 2, mono. Grounded on original_source's
// rubato::FftFixedIn::new(source_rate, 16000, 1024, 2, 1).
const (
	fftChunkSize = 1024
	fftSubChunks = 2
)

// FFTResampler wraps go-audio-resampler's FFT-based fixed-input resampler
// for the mono capture path. Call Process with exactly fftChunkSize
// samples at a time; the accumulator in capture.go guarantees this.
type FFTResampler struct {
	r *resampler.FftFixedIn
}

// NewFFTResampler builds a resampler converting fromRate -> toRate.
func NewFFTResampler(fromRate, toRate int) (*FFTResampler, error) {
	r, err := resampler.NewFftFixedIn(fromRate, toRate, fftChunkSize, fftSubChunks, 1)
	if err != nil {
		return nil, errResampler("failed to construct FFT resampler", err)
	}
	return &FFTResampler{r: r}, nil
}

// Process resamples one fftChunkSize-length mono chunk.
func (f *FFTResampler) Process(chunk []float32) ([]float32, error) {
	out, err := f.r.Process([][]float32{chunk})
	if err != nil {
		return nil, errResampler("resample failed", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Close releases resampler resources, if any.
func (f *FFTResampler) Close() {
	if closer, ok := any(f.r).(interface{ Close() }); ok {
		closer.Close()
	}
}
