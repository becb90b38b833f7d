package fsutils

import (
	"errors"
	"io/fs"
	"os"
)

// ReadFileOr returns the content of path, or fallback when the file does not
// exist. Other read errors are returned.
func ReadFileOr(path string, fallback []byte) ([]byte, error) {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	return bytes, err
}
