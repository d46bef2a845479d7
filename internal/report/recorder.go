// Package report persists run output for later analysis. The engine treats
// it as an opaque sink.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"quantlab-go/internal/backtest"
)

// JSONLRecorder appends backtest results as JSON lines.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{file: file, enc: json.NewEncoder(file)}, nil
}

// Record writes one results line.
func (r *JSONLRecorder) Record(res *backtest.Results) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(res)
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
