package wakeword

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agalue/voxctl/internal/config"
)

func TestNewMissingModelsDirFails(t *testing.T) {
	dir := t.TempDir()
	_, err := New(dir, config.DefaultVoiceCoreConfig())
	if err == nil {
		t.Fatal("expected an error when no model files are present")
	}
	var wwErr *Error
	if !asError(err, &wwErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if wwErr.Kind != ModelNotFound {
		t.Fatalf("Kind = %v, want ModelNotFound", wwErr.Kind)
	}
}

// asError is a tiny errors.As shim kept local to avoid importing errors
// just for this one assertion in a package with no other use of it.
func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestNew_RequiresAllThreeModels(t *testing.T) {
	dir := t.TempDir()
	// Only the first of the three required files is present.
	if err := os.WriteFile(filepath.Join(dir, config.ModelFileNames[0]), []byte("not a real onnx model"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := New(dir, config.DefaultVoiceCoreConfig())
	if err == nil {
		t.Fatal("expected an error: the fixture file is not a valid ONNX model and the other two are missing")
	}
}
