// Package audio provides the capture (C5) and playback pipelines: device
// enumeration, sample-format conversion, stereo-to-mono downmix, and
// resampling to/from the canonical 16kHz mono stream.
package audio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/agalue/voxctl/internal/events"
)

// Ring buffer configuration for the capture callback's lock-free handoff
// to the processing goroutine.
const (
	ringBufferSize     = 128
	maxSamplesPerChunk = 2048

	// drainSize is the accumulator threshold spec.md §4.5 mandates: while
	// the accumulator holds >= drainSize samples, drain drainSize at a
	// time into the resampler (or pass through untouched at 16kHz).
	drainSize = 1024
)

type audioChunk struct {
	samples []float32
	len     int
}

// ringBuffer is a lock-free single-producer single-consumer ring buffer
// carrying raw device-native-format-converted samples out of the audio
// callback.
type ringBuffer struct {
	chunks    [ringBufferSize]audioChunk
	head      atomic.Uint64
	tail      atomic.Uint64
	dropCount atomic.Uint64
}

func newRingBuffer() *ringBuffer {
	rb := &ringBuffer{}
	for i := range rb.chunks {
		rb.chunks[i].samples = make([]float32, maxSamplesPerChunk)
	}
	return rb
}

func (rb *ringBuffer) push(samples []float32) bool {
	head := rb.head.Load()
	tail := rb.tail.Load()
	if head-tail >= ringBufferSize {
		count := rb.dropCount.Add(1)
		if count%100 == 0 {
			log.Printf("⚠️  audio ring buffer full, dropped %d chunks", count)
		}
		return false
	}
	slot := &rb.chunks[head%ringBufferSize]
	n := copy(slot.samples, samples)
	slot.len = n
	rb.head.Add(1)
	return true
}

func (rb *ringBuffer) pop() []float32 {
	head := rb.head.Load()
	tail := rb.tail.Load()
	if head == tail {
		return nil
	}
	slot := &rb.chunks[tail%ringBufferSize]
	samples := slot.samples[:slot.len]
	rb.tail.Add(1)
	return samples
}

// Capturer owns one audio input device and converts its native-format
// stream into canonical 16kHz mono float32 chunks delivered to a sink.
// The audio callback itself never blocks or allocates unboundedly: it
// only converts format/channels and pushes into a lock-free ring buffer;
// a dedicated goroutine drains it, accumulates, and resamples.
type Capturer struct {
	ctx              *malgo.AllocatedContext
	device           *malgo.Device
	targetSampleRate uint32
	deviceSampleRate uint32
	deviceChannels   uint32
	deviceFormat     SampleFormat
	deviceName       string

	sink func(samples []float32)

	running  atomic.Bool
	paused   atomic.Bool
	ringBuf  *ringBuffer
	stopChan chan struct{}
	wg       sync.WaitGroup

	fftResampler *FFTResampler
	accumulator  []float32
}

// EnumerateInputDevices returns every capture device the host exposes.
func EnumerateInputDevices() ([]events.DeviceInfo, error) {
	return enumerateDevices(malgo.Capture)
}

// EnumerateOutputDevices returns every playback device the host exposes.
func EnumerateOutputDevices() ([]events.DeviceInfo, error) {
	return enumerateDevices(malgo.Playback)
}

func enumerateDevices(deviceType malgo.DeviceType) ([]events.DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errConfig("failed to initialize audio context", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(deviceType)
	if err != nil {
		return nil, errConfig("failed to enumerate devices", err)
	}

	out := make([]events.DeviceInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, events.DeviceInfo{
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
		})
	}
	return out, nil
}

// NewCapturer creates a capturer targeting sampleRate (the canonical rate,
// 16000 per spec.md §3). deviceName selects a specific input device by
// name; empty selects the system default.
func NewCapturer(sampleRate int, deviceName string, sink func(samples []float32)) (*Capturer, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errConfig("failed to initialize audio context", err)
	}

	return &Capturer{
		ctx:              ctx,
		targetSampleRate: uint32(sampleRate),
		deviceName:       deviceName,
		sink:             sink,
		ringBuf:          newRingBuffer(),
		stopChan:         make(chan struct{}),
		accumulator:      make([]float32, 0, drainSize*2),
	}, nil
}

// Start begins streaming. If the device's native rate differs from the
// canonical rate, every 1024-sample drain is routed through an FFT-based
// fixed-input resampler (spec.md §4.5); at 16kHz samples pass straight
// through.
func (c *Capturer) Start() error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 0 // 0 = device's native channel count
	deviceConfig.SampleRate = c.targetSampleRate
	deviceConfig.PeriodSizeInMilliseconds = 32

	deviceID, err := c.resolveDeviceID()
	if err != nil {
		return err
	}
	if deviceID != nil {
		deviceConfig.Capture.DeviceID = deviceID
	}

	tempDevice, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{})
	if err != nil {
		return errStream("failed to query capture device", err)
	}
	c.deviceSampleRate = tempDevice.SampleRate()
	c.deviceChannels = uint32(tempDevice.CaptureChannels())
	c.deviceFormat = FormatF32
	tempDevice.Uninit()

	if c.deviceChannels == 0 {
		c.deviceChannels = 1
	}

	if c.deviceSampleRate != c.targetSampleRate {
		resampler, err := NewFFTResampler(int(c.deviceSampleRate), int(c.targetSampleRate))
		if err != nil {
			return err
		}
		c.fftResampler = resampler
		log.Printf("🔄 capture resampling: %d Hz -> %d Hz (FFT fixed-input)", c.deviceSampleRate, c.targetSampleRate)
	}

	onRecvFrames := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		if !c.running.Load() || c.paused.Load() {
			return
		}
		mono := framesToMono(pInputSamples, c.deviceFormat, c.deviceChannels)
		if len(mono) > 0 {
			c.ringBuf.push(mono)
		}
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecvFrames})
	if err != nil {
		return errStream("failed to initialize capture device", err)
	}

	c.device = device
	c.running.Store(true)

	c.wg.Add(1)
	go c.processLoop()

	if err := device.Start(); err != nil {
		return errStream("failed to start capture device", err)
	}
	return nil
}

// resolveDeviceID looks up c.deviceName among the enumerated capture
// devices. Returns nil (system default) if deviceName is empty.
func (c *Capturer) resolveDeviceID() (*malgo.DeviceID, error) {
	if c.deviceName == "" {
		return nil, nil
	}
	infos, err := c.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errConfig("failed to enumerate capture devices", err)
	}
	for i := range infos {
		if infos[i].Name() == c.deviceName {
			return &infos[i].ID, nil
		}
	}
	return nil, errDeviceNotFound(c.deviceName)
}

// processLoop drains the ring buffer, accumulates samples, and delivers
// fixed-size drains to the resampler (or straight through) before calling
// the sink. Runs on its own goroutine, never on the audio callback.
func (c *Capturer) processLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		samples := c.ringBuf.pop()
		if samples == nil {
			select {
			case <-c.stopChan:
				return
			case <-time.After(100 * time.Microsecond):
			}
			continue
		}

		c.accumulator = append(c.accumulator, samples...)
		for len(c.accumulator) >= drainSize {
			drain := make([]float32, drainSize)
			copy(drain, c.accumulator[:drainSize])
			c.accumulator = c.accumulator[drainSize:]

			if c.fftResampler == nil {
				c.deliver(drain)
				continue
			}
			resampled, err := c.fftResampler.Process(drain)
			if err != nil {
				log.Printf("⚠️  resample error: %v (chunk dropped)", err)
				continue
			}
			c.deliver(resampled)
		}
	}
}

func (c *Capturer) deliver(samples []float32) {
	if c.sink != nil && len(samples) > 0 {
		c.sink(samples)
	}
}

// Pause stops delivering captured audio to the sink without tearing down
// the device, used by InterruptWait mode to mute the microphone while
// TTS plays back so it cannot hear its own output.
func (c *Capturer) Pause() {
	c.paused.Store(true)
}

// Resume undoes Pause.
func (c *Capturer) Resume() {
	c.paused.Store(false)
}

// Stop halts capture; idempotent.
func (c *Capturer) Stop() {
	if !c.running.Swap(false) {
		return
	}
	select {
	case <-c.stopChan:
	default:
		close(c.stopChan)
	}
	c.wg.Wait()

	if c.device != nil {
		c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
}

// Close releases all resources; implies Stop.
func (c *Capturer) Close() {
	c.Stop()
	if c.ctx != nil {
		_ = c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}
}

