package os

import (
	"errors"
	"fmt"
	"os"
)

// EnsureDir checks if the specified directory exists.
// If the directory does not exist, it attempts to create it with 0755 permissions.
func EnsureDir(dir string) (bool, error) {
	finfo, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}

	if !finfo.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}
	return false, nil
}
