// Package wakeword implements the three-stage neural wake-word cascade:
// mel spectrogram -> embedding -> classifier, with a sliding mel-frame
// window, a fixed pre-inference value transform, and sensitivity-scaled
// thresholding (spec.md §4.4).
package wakeword

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/agalue/voxctl/internal/config"
	"github.com/agalue/voxctl/internal/ring"
)

// onnxSession wraps one ONNX Runtime session; the Engine holds three of
// them (mel, embedding, classifier). Each call to run allocates fresh input/output
// tensors sized for that call and destroys them before returning, which
// is simple and more than fast enough at one call per 80ms chunk.
type onnxSession struct {
	session *ort.DynamicAdvancedSession
}

func newOnnxSession(path string, inputNames, outputNames []string) (*onnxSession, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errModelNotFound(path)
	}
	sess, err := ort.NewDynamicAdvancedSession(path, inputNames, outputNames, nil)
	if err != nil {
		return nil, errModelLoad(fmt.Sprintf("failed to load %s", filepath.Base(path)), err)
	}
	return &onnxSession{session: sess}, nil
}

// run feeds a single float32 input tensor of the given shape and returns
// the flattened float32 output of the first output tensor.
func (s *onnxSession) run(shape []int64, data []float32) ([]float32, error) {
	inputTensor, err := ort.NewTensor(ort.NewShape(shape...), data)
	if err != nil {
		return nil, errInference("failed to build input tensor", err)
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, errInference("session run failed", err)
	}
	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errInference("unexpected output tensor type", nil)
	}
	defer outTensor.Destroy()

	out := make([]float32, len(outTensor.GetData()))
	copy(out, outTensor.GetData())
	return out, nil
}

func (s *onnxSession) close() {
	if s.session != nil {
		s.session.Destroy()
	}
}

// Engine is the three-stage wake-word cascade. Created once at startup;
// reset (mel buffer cleared) on every wake detection and every VAD
// speech-end (spec.md §4.4's "Data Model" contract for C4).
type Engine struct {
	mel       *onnxSession
	embedding *onnxSession
	classify  *onnxSession

	melWindow *ring.MelBuffer

	mu          sync.Mutex
	cfg         config.VoiceCoreConfig
}

// sharedLibOnce guards the process-wide onnxruntime environment init,
// which must happen exactly once regardless of how many Engines a host
// constructs across its lifetime (spec.md owns exactly one live session,
// but tests may construct more than one Engine).
var sharedLibOnce sync.Once
var sharedLibErr error

func ensureEnvironment() error {
	sharedLibOnce.Do(func() {
		if path := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); path != "" {
			ort.SetSharedLibraryPath(path)
		}
		sharedLibErr = ort.InitializeEnvironment()
	})
	return sharedLibErr
}

// New loads the three ONNX models from modelsDir and constructs the
// cascade. A missing model file, failed session initialization, or
// environment init failure surfaces as a *Error with a distinct kind;
// per spec.md §4.4/§4.7 the caller (the controller) is expected to treat
// construction failure as recoverable and run in degraded mode.
func New(modelsDir string, cfg config.VoiceCoreConfig) (*Engine, error) {
	melPath := filepath.Join(modelsDir, config.ModelFileNames[0])
	embPath := filepath.Join(modelsDir, config.ModelFileNames[1])
	clsPath := filepath.Join(modelsDir, config.ModelFileNames[2])

	for _, p := range []string{melPath, embPath, clsPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, errModelNotFound(p)
		}
	}

	if err := ensureEnvironment(); err != nil {
		return nil, errModelLoad("failed to initialize onnxruntime environment", err)
	}

	mel, err := newOnnxSession(melPath, []string{"input"}, []string{"output"})
	if err != nil {
		return nil, err
	}
	embedding, err := newOnnxSession(embPath, []string{"input"}, []string{"output"})
	if err != nil {
		mel.close()
		return nil, err
	}
	classify, err := newOnnxSession(clsPath, []string{"input"}, []string{"output"})
	if err != nil {
		mel.close()
		embedding.close()
		return nil, err
	}

	return &Engine{
		mel:       mel,
		embedding: embedding,
		classify:  classify,
		melWindow: ring.NewMelBuffer(cfg.MelFrameCount, cfg.MelBands),
		cfg:       cfg,
	}, nil
}

// Process runs one canonical chunk through the cascade. Returns
// (score, true, nil) once the mel window has filled and a classifier
// score is available; (0, false, nil) while still filling the window;
// a non-nil error on an inference failure, which the caller should log
// and treat as non-fatal, skipping the chunk (spec.md §4.4).
func (e *Engine) Process(chunk []float32) (float32, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	melOut, err := e.mel.run([]int64{1, int64(len(chunk))}, chunk)
	if err != nil {
		return 0, false, err
	}

	frame := make([]float32, e.cfg.MelBands)
	for i := range frame {
		if i < len(melOut) {
			frame[i] = melOut[i]/10 + 2
		}
		// else left as the zero-pad the spec calls for.
	}
	e.melWindow.PushFrame(frame)

	if !e.melWindow.IsReady() {
		return 0, false, nil
	}

	flat := e.melWindow.GetFlattened()
	embOut, err := e.embedding.run([]int64{1, int64(e.cfg.MelFrameCount), int64(e.cfg.MelBands)}, flat)
	if err != nil {
		return 0, false, err
	}

	clsOut, err := e.classify.run([]int64{1, int64(len(embOut))}, embOut)
	if err != nil {
		return 0, false, err
	}
	if len(clsOut) == 0 {
		return 0, false, errInference("classifier returned no output", nil)
	}

	return clsOut[0], true, nil
}

// IsDetected reports whether score crosses the current effective
// threshold (wake_word_threshold / sensitivity).
func (e *Engine) IsDetected(score float32) bool {
	return score > e.cfg.EffectiveThreshold()
}

// SetSensitivity mutates only the threshold used by IsDetected, never the
// model inputs. Clamped to [0.1, 3.0].
func (e *Engine) SetSensitivity(s float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.Sensitivity = config.ClampSensitivity(s)
}

// Reset clears the sliding mel window, e.g. after a positive detection
// or a VAD speech-end.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.melWindow.Clear()
}

// Close releases the three ONNX sessions.
func (e *Engine) Close() {
	e.mel.close()
	e.embedding.close()
	e.classify.close()
}
