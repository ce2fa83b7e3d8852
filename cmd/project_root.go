package cmd

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ProjectMarker identifies the project directory for --find-root
const ProjectMarker = "CMakeLists.txt"

// findProjectRoot returns the first directory, starting at dir and walking up, that contains marker.
func findProjectRoot(dir, marker string) (string, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", dir)
	}

	for {
		candidate := filepath.Join(path, marker)
		_, err := os.Stat(candidate)
		if err == nil {
			return path, nil
		}

		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", candidate)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.Errorf("no %s found in %s or any parent directory", marker, dir)
		}

		path = parent
	}
}
