package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"listforge/internal/pathplan"
)

// Result reports a completed write. Warning is set when the write succeeded
// but the temp file could not be removed.
type Result struct {
	Path    string
	Warning string
}

// Write persists data as filename inside dir using the temp-then-promote
// protocol. The returned error carries the failing stage in its message; a
// non-empty Result.Warning accompanies a successful write whose temp file
// was left behind.
func Write(dir, filename string, data []byte) (Result, error) {
	name := pathplan.SanitizeFileName(filename)
	if name == "" {
		return Result{}, fmt.Errorf("filename is empty after sanitization")
	}

	tmpPath := filepath.Join(dir, name+".tmp")
	finalPath := filepath.Join(dir, name)

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("Temp file write failed: %w", err)
	}

	if err := os.WriteFile(finalPath, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("Final file write failed: %w", err)
	}

	result := Result{Path: finalPath}
	if err := os.Remove(tmpPath); err != nil {
		result.Warning = fmt.Sprintf("temp file %s not removed: %v", name+".tmp", err)
	}
	return result, nil
}
