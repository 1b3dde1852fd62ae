package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var env struct {
	mu   sync.Mutex
	refs int
}

// acquireEnvironment initializes ONNX Runtime on first use.
func acquireEnvironment(libraryPath string) error {
	env.mu.Lock()
	defer env.mu.Unlock()

	if env.refs == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("onnx: initialize runtime: %w", err)
		}
	}
	env.refs++
	return nil
}

// releaseEnvironment tears ONNX Runtime down after the last release.
func releaseEnvironment() {
	env.mu.Lock()
	defer env.mu.Unlock()

	if env.refs == 0 {
		return
	}
	env.refs--
	if env.refs == 0 {
		ort.DestroyEnvironment()
	}
}
