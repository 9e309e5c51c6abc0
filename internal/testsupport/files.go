package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// BinaryPayload returns size bytes cycling through every byte value,
// starting with zero, so payloads always contain embedded NULs.
func BinaryPayload(size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(i % 256)
	}
	return out
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
